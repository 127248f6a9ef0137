package core

import (
	"bytes"
	"encoding/json"
)

const ManifestFileName = "app.json"

// AppFile mirrors the FileContent type read by the browser runtime.
type AppFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func EncodeManifest(files []AppFile) ([]byte, error) {
	if files == nil {
		files = []AppFile{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(files); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func ParseManifest(data []byte) ([]AppFile, error) {
	var files []AppFile
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, err
	}
	return files, nil
}
