package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON parses content into result, tolerating markdown fences and
// chatter around the payload.
func decodeJSON(content string, result any) error {
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, truncate(content, 200))
	}
	return nil
}

// extractJSON pulls the JSON payload out of a model response that may wrap
// it in a fenced block or surround it with prose.
func extractJSON(s string) string {
	for _, fence := range []string{"```json", "```"} {
		idx := strings.Index(s, fence)
		if idx == -1 {
			continue
		}
		rest := strings.TrimLeft(s[idx+len(fence):], "\r\n")
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimRight(rest[:end], "\r\n")
		}
	}

	// Raw object or array: take the first balanced run.
	for i := 0; i < len(s); i++ {
		if s[i] != '{' && s[i] != '[' {
			continue
		}
		depth := 0
		for j := i; j < len(s); j++ {
			switch s[j] {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
				if depth == 0 {
					return s[i : j+1]
				}
			}
		}
	}

	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
