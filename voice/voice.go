// Package voice turns raw speech-recognition transcripts into field answers.
// Recognition itself is a browser/platform service; only the text
// interpretation lives here, so voice answers enter the stepper through the
// same path as typed ones.
package voice

import (
	"regexp"
	"strconv"
	"strings"

	callvu "github.com/doronro/call-vu-management-studio"
)

var (
	ordinalPattern = regexp.MustCompile(`(?i)(?:number|option|choice)?\s*(\d+|one|two|three|four|five|first|second|third|fourth|fifth)`)
	amountPattern  = regexp.MustCompile(`\$?(\d+\.?\d*)`)
	numberPattern  = regexp.MustCompile(`(\d+\.?\d*|\d*\.\d+)`)
)

var ordinalWords = map[string]int{
	"first": 0, "one": 0, "1": 0,
	"second": 1, "two": 1, "2": 1,
	"third": 2, "three": 2, "3": 2,
	"fourth": 3, "four": 3, "4": 3,
	"fifth": 4, "five": 4, "5": 4,
}

// Interpret extracts an answer value for the field from a transcript.
// It reports false when nothing usable was heard, in which case the caller
// should re-prompt rather than record anything.
func Interpret(field callvu.Field, transcript string) (any, bool) {
	text := strings.TrimSpace(transcript)
	if text == "" {
		return nil, false
	}
	normalized := strings.ToLower(text)

	switch field.Type {
	case callvu.FieldRadioInput, callvu.FieldDropdownInput:
		return interpretSelection(field.Options(), normalized)
	case callvu.FieldNumberInput, callvu.FieldCurrencyInput:
		if m := numberPattern.FindStringSubmatch(normalized); m != nil {
			return m[1], true
		}
		return nil, false
	case callvu.FieldCheckboxInput:
		return interpretYesNo(normalized)
	case callvu.FieldRatingInput:
		if m := numberPattern.FindStringSubmatch(normalized); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
		return nil, false
	default:
		return text, true
	}
}

// interpretSelection tries, in order: ordinal position ("the second one",
// "option 3"), a dollar amount appearing in an option label, a distinctive
// word from a label, and finally whole-label substring matching.
func interpretSelection(options []callvu.Option, normalized string) (any, bool) {
	if len(options) == 0 {
		return nil, false
	}

	if m := ordinalPattern.FindStringSubmatch(normalized); m != nil {
		word := strings.ToLower(m[1])
		index, ok := ordinalWords[word]
		if !ok {
			if n, err := strconv.Atoi(word); err == nil {
				index = n - 1
				ok = true
			}
		}
		if ok && index >= 0 && index < len(options) {
			return options[index].Value, true
		}
	}

	if m := amountPattern.FindStringSubmatch(normalized); m != nil {
		amount := m[1]
		for _, opt := range options {
			if strings.Contains(strings.ToLower(opt.Label), amount) {
				return opt.Value, true
			}
		}
	}

	for _, opt := range options {
		label := strings.ToLower(opt.Label)
		parts := strings.Fields(label)
		if len(parts) > 1 {
			for _, part := range parts[1 : len(parts)-1] {
				if len(part) > 3 && strings.Contains(normalized, part) {
					return opt.Value, true
				}
			}
		}
		if strings.Contains(normalized, label) || strings.Contains(label, normalized) {
			return opt.Value, true
		}
	}

	return nil, false
}

func interpretYesNo(normalized string) (any, bool) {
	switch {
	case strings.Contains(normalized, "yes"), strings.Contains(normalized, "correct"),
		strings.Contains(normalized, "sure"), strings.Contains(normalized, "agree"):
		return true, true
	case strings.Contains(normalized, "no"), strings.Contains(normalized, "nope"),
		strings.Contains(normalized, "don't"), strings.Contains(normalized, "disagree"):
		return false, true
	}
	return nil, false
}
