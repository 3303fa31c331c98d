package llm

import (
	"fmt"
	"strconv"
	"strings"
)

// textFormatSuffix is appended to the prompt for the text-mode retry.
const textFormatSuffix = `

Respond with your decision in this exact format:
ACTION: [FOLD/CHECK/CALL/RAISE]
AMOUNT: [number if raising, otherwise null]
REASONING: [brief explanation]
CONFIDENCE: [0.0 to 1.0]`

// ParseTextDecision extracts a decision from line-oriented text output.
// An ACTION line with one of the four tokens is mandatory; the other
// lines default sensibly when absent or malformed.
func ParseTextDecision(content string) (Decision, error) {
	d := Decision{
		Confidence: 0.5,
	}
	found := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ACTION:"):
			token := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "ACTION:")))
			if !validActions[token] {
				return Decision{}, fmt.Errorf("unknown action token %q", token)
			}
			d.Action = token
			found = true

		case strings.HasPrefix(line, "AMOUNT:"):
			v := strings.TrimSpace(strings.TrimPrefix(line, "AMOUNT:"))
			if v != "" && !strings.EqualFold(v, "null") && !strings.EqualFold(v, "none") {
				if n, err := strconv.Atoi(v); err == nil && n >= 0 {
					d.Amount = n
				}
			}

		case strings.HasPrefix(line, "REASONING:"):
			d.Reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))

		case strings.HasPrefix(line, "CONFIDENCE:"):
			v := strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:"))
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				if f < 0 {
					f = 0
				}
				if f > 1 {
					f = 1
				}
				d.Confidence = f
			}
		}
	}

	if !found {
		return Decision{}, fmt.Errorf("no ACTION line in response")
	}
	return d, nil
}

// extractJSONObject returns the first balanced top-level JSON object in
// content, for models that wrap their JSON in prose or code fences.
func extractJSONObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], true
			}
		}
	}
	return "", false
}
