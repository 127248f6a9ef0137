package core

import (
	"strings"
)

// RelPathToken is reserved in the HTML templates: every occurrence is
// replaced, including ones that were not meant as a placeholder.
const RelPathToken = "{{REL_PATH}}"

func SubstituteRelPath(content []byte, relPrefix string) []byte {
	return []byte(strings.ReplaceAll(string(content), RelPathToken, relPrefix))
}
