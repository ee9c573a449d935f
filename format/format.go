// Package format turns raw answer values into what the user sees. Storage and
// display are deliberately decoupled: answers are stored exactly as captured
// (numbers from text inputs stay strings) and all coercion happens here at
// read time.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	callvu "github.com/doronro/call-vu-management-studio"
)

// ErrRequired is returned when a required field receives no value. Its text
// is shown to the user verbatim.
var ErrRequired = errors.New("This field is required")

// Validate checks a raw value against the field's constraints before it is
// recorded. Only required-ness blocks advancement; type mismatches degrade to
// display-time fallbacks instead.
func Validate(field callvu.Field, value any) error {
	if !field.Required {
		return nil
	}
	if value == nil {
		return ErrRequired
	}
	if s, ok := value.(string); ok && s == "" {
		return ErrRequired
	}
	return nil
}

// Display formats an answer for the chat echo right after it is submitted.
func Display(field callvu.Field, value any) string {
	switch {
	case field.Type.HasOptions():
		return optionLabel(field, value)
	case field.Type == callvu.FieldCheckboxInput:
		if value == true {
			return "Yes"
		}
		return "No"
	case field.Type == callvu.FieldRatingInput:
		return fmt.Sprintf("%s stars", callvu.Stringify(value))
	case field.Type.Signature():
		return "Signature provided"
	}
	return callvu.Stringify(value)
}

// SummaryValue formats an answer for the final summary table. Unlike the chat
// echo, signatures embed the captured image and missing answers read
// "Not provided".
func SummaryValue(field callvu.Field, value any) string {
	// A checkbox is never "Not provided": unanswered means unchecked, so the
	// summary reads "No".
	if field.Type == callvu.FieldCheckboxInput {
		if value == true {
			return "Yes"
		}
		return "No"
	}
	if value == nil {
		return "Not provided"
	}
	switch {
	case field.Type.HasOptions():
		return optionLabel(field, value)
	case field.Type == callvu.FieldDateInput:
		return FormatDate(callvu.Stringify(value))
	case field.Type.Signature():
		return fmt.Sprintf(`<img src="%s" alt="Signature" style="max-width: 200px; height: auto;" />`, callvu.Stringify(value))
	case field.Type == callvu.FieldRatingInput:
		return fmt.Sprintf("%s stars", callvu.Stringify(value))
	case field.Type == callvu.FieldCurrencyInput:
		return FormatCurrency(value)
	}
	return callvu.Stringify(value)
}

// FormatCurrency renders a stored currency value as "$12.50". Values arrive
// as the raw strings the input captured, so parsing happens here; anything
// unparseable echoes back unchanged.
func FormatCurrency(value any) string {
	var amount float64
	switch v := value.(type) {
	case float64:
		amount = v
	case float32:
		amount = float64(v)
	case int:
		amount = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return v
		}
		amount = parsed
	default:
		return callvu.Stringify(value)
	}
	return fmt.Sprintf("$%.2f", amount)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// FormatDate renders a stored date as a long locale date ("January 2, 2006").
// Unparseable input echoes back unchanged.
func FormatDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return raw
}

func optionLabel(field callvu.Field, value any) string {
	for _, opt := range field.Options() {
		if callvu.Stringify(opt.Value) == callvu.Stringify(value) {
			return opt.Label
		}
	}
	return callvu.Stringify(value)
}
