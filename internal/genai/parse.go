package genai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON parses model output into v, tolerating the common failure modes
// of "respond as JSON" instructions. Tries direct parse, then the span from
// first { to last }, then the contents of a code fence.
func ParseJSON(text string, v any) error {
	text = strings.TrimSpace(text)

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			if err := json.Unmarshal([]byte(text[start:end+1]), v); err == nil {
				return nil
			}
		}
	}

	for _, fence := range []string{"```json", "```"} {
		idx := strings.Index(text, fence)
		if idx < 0 {
			continue
		}
		after := text[idx+len(fence):]
		end := strings.Index(after, "```")
		if end < 0 {
			continue
		}
		if err := json.Unmarshal([]byte(strings.TrimSpace(after[:end])), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("response is not valid JSON: %.200s", text)
}
