// repair.go - Markdown fence stripping and truncated-JSON repair

package scanner

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// errUnexpectedShape marks a response that parsed as JSON but was neither an
// object nor an array of receipts.
var errUnexpectedShape = errors.New("unexpected model response format")

var fenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// stripFences removes a markdown code fence wrapper if present. The model is
// instructed not to emit fences, but this is enforced defensively.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	// An unterminated fence can survive truncation; drop the opening marker.
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		return strings.TrimSpace(text)
	}
	return text
}

// decodeReceipts parses the text as either a receipt array or a single
// receipt object, normalizing the latter to a one-element slice.
func decodeReceipts(text string) ([]ReceiptExtraction, error) {
	s := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(s, "["):
		var receipts []ReceiptExtraction
		if err := json.Unmarshal([]byte(s), &receipts); err != nil {
			return nil, err
		}
		return receipts, nil
	case strings.HasPrefix(s, "{"):
		var receipt ReceiptExtraction
		if err := json.Unmarshal([]byte(s), &receipt); err != nil {
			return nil, err
		}
		return []ReceiptExtraction{receipt}, nil
	default:
		return nil, errUnexpectedShape
	}
}

// repairTruncated closes the open braces and brackets of a truncated JSON
// document. Delimiters are tracked on a stack, skipping string contents, so
// closers come out in correct nesting order. A trailing comma or an
// unterminated string is trimmed off first.
func repairTruncated(raw string) string {
	fixed := strings.TrimRight(raw, " \t\r\n")
	if strings.HasSuffix(fixed, "]") {
		return fixed
	}

	var stack []byte
	inString := false
	escaped := false
	stringStart := -1

	for i := 0; i < len(fixed); i++ {
		c := fixed[i]
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
			stringStart = i
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	// A string cut off mid-value cannot be completed meaningfully; drop it,
	// along with its key if it was an object value.
	if inString && stringStart >= 0 {
		fixed = strings.TrimRight(fixed[:stringStart], " \t\r\n")
		if strings.HasSuffix(fixed, ":") {
			fixed = strings.TrimRight(strings.TrimSuffix(fixed, ":"), " \t\r\n")
			if strings.HasSuffix(fixed, `"`) {
				if idx := strings.LastIndex(fixed[:len(fixed)-1], `"`); idx >= 0 {
					fixed = fixed[:idx]
				}
			}
		}
	}

	fixed = strings.TrimRight(fixed, " \t\r\n")
	fixed = strings.TrimSuffix(fixed, ",")

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			fixed += "}"
		} else {
			fixed += "]"
		}
	}

	return fixed
}
