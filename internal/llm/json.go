// internal/llm/json.go
package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\n?(.*?)```")

// ExtractJSON pulls the JSON payload out of model text: a fenced block if
// present, otherwise the outermost object or array span.
func ExtractJSON(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	start := strings.IndexAny(text, "{[")
	if start >= 0 {
		closer := "}"
		if text[start] == '[' {
			closer = "]"
		}
		if end := strings.LastIndex(text, closer); end > start {
			return text[start : end+1]
		}
	}
	return strings.TrimSpace(text)
}

// Decode extracts and unmarshals JSON from model text into v.
func Decode(text string, v interface{}) error {
	payload := ExtractJSON(text)
	if payload == "" {
		return &ParseError{Reason: "empty output"}
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return &ParseError{Reason: "decode output", Err: err}
	}
	return nil
}
