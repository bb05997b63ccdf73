package extractor

import (
	"github.com/tidwall/gjson"
)

// JSONPath extracts a value from JSON output using gjson syntax, accepting a
// leading "$." as well.
type JSONPath struct {
	path string
}

func NewJSONPath(path string) *JSONPath {
	if len(path) > 0 && path[0] == '$' {
		if len(path) > 1 && path[1] == '.' {
			path = path[2:]
		} else if len(path) == 1 {
			path = "@this"
		}
	}
	return &JSONPath{path: path}
}

func (j *JSONPath) Extract(output []byte) (string, bool) {
	if !gjson.ValidBytes(output) {
		return "", false
	}
	result := gjson.GetBytes(output, j.path)
	if !result.Exists() {
		return "", false
	}
	return result.String(), true
}

func (j *JSONPath) Describe() string {
	return "json path " + j.path
}
