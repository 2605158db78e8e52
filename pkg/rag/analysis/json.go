package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// decodeJSON unmarshals a model reply, tolerating fenced blocks and prose
// around the first JSON value.
func decodeJSON(reply string, v interface{}) error {
	body := stripCodeBlock(reply)
	if err := json.Unmarshal([]byte(body), v); err == nil {
		return nil
	}

	start := strings.IndexAny(body, "{[")
	if start < 0 {
		return fmt.Errorf("no json value in reply")
	}
	closer := byte('}')
	if body[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(body, closer)
	if end <= start {
		return fmt.Errorf("unterminated json value in reply")
	}
	if err := json.Unmarshal([]byte(body[start:end+1]), v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}
