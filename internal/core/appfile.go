package core

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

const AppEntrypoint = "app.py"

var DefaultExcludeDirs = []string{"__pycache__"}

func IsExcludedDir(name string, excluded []string) bool {
	return slices.Contains(excluded, name)
}

func IsHiddenFile(name string) bool {
	return strings.HasPrefix(name, ".")
}

// OrderFileNames drops hidden files, sorts the rest and moves app.py to the
// front. The input slice is not modified.
func OrderFileNames(names []string) []string {
	files := lo.Reject(names, func(name string, _ int) bool {
		return IsHiddenFile(name)
	})
	slices.Sort(files)

	if idx := slices.Index(files, AppEntrypoint); idx > 0 {
		files = slices.Delete(files, idx, idx+1)
		files = slices.Insert(files, 0, AppEntrypoint)
	}

	return files
}

func DecodeContent(name string, data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	offset := 0
	for offset < len(data) {
		r, size := utf8.DecodeRune(data[offset:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		offset += size
	}

	return "", &EncodingError{Name: name, Offset: offset}
}
