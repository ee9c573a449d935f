package callvu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`@#([^@#]+)@#`)

// ResolvePlaceholders substitutes @#name@# tokens in authored text with
// collected answers. Lookup goes through formData by token name first, then
// through the field whose integrationID matches the token.
//
// Resolution is all-or-nothing: if the text contains tokens and any one of
// them has no value yet, the whole text resolves to "" so raw placeholder
// syntax never reaches the end user. Token-free text is returned unchanged.
func ResolvePlaceholders(text string, formData map[string]any, fields []Field) string {
	if text == "" || !strings.Contains(text, "@#") {
		return text
	}

	allResolved := true
	result := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := formData[name]; ok {
			return Stringify(value)
		}
		for i := range fields {
			if fields[i].IntegrationID == name {
				if value, ok := formData[fields[i].ID]; ok {
					return Stringify(value)
				}
				break
			}
		}
		allResolved = false
		return match
	})

	if !allResolved {
		return ""
	}
	return result
}

// Stringify renders an answer value the way it reads in chat: floats drop a
// trailing ".0" so JSON-decoded whole numbers don't echo as "3.000000".
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
