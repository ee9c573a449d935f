package voice

import (
	"testing"

	callvu "github.com/doronro/call-vu-management-studio"
)

func selectionField() callvu.Field {
	return callvu.Field{
		ID:   "plan",
		Type: callvu.FieldRadioInput,
		Properties: map[string]any{
			"items": []any{
				map[string]any{"value": "basic", "label": "Basic $10"},
				map[string]any{"value": "premium", "label": "Premium streaming tier $25"},
				map[string]any{"value": "family", "label": "Family bundle pack $40"},
			},
		},
	}
}

func TestInterpretSelection(t *testing.T) {
	t.Parallel()
	field := selectionField()

	tests := []struct {
		name       string
		transcript string
		want       any
		matched    bool
	}{
		{"ordinal word", "the second one please", "premium", true},
		{"ordinal digit", "option 3", "family", true},
		{"ordinal first", "first", "basic", true},
		{"dollar amount", "the twenty five dollar one, $25", "premium", true},
		{"distinctive label word", "the streaming tier please", "premium", true},
		{"whole label substring", "family bundle pack $40", "family", true},
		{"nothing usable", "hmm let me think", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, matched := Interpret(field, tc.transcript)
			if matched != tc.matched {
				t.Fatalf("expected matched=%v, got %v (value %v)", tc.matched, matched, got)
			}
			if matched && got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestInterpretNumbers(t *testing.T) {
	t.Parallel()

	number := callvu.Field{ID: "qty", Type: callvu.FieldNumberInput}
	if got, ok := Interpret(number, "about 12 units"); !ok || got != "12" {
		t.Errorf("expected 12, got %v (matched=%v)", got, ok)
	}

	currency := callvu.Field{ID: "amount", Type: callvu.FieldCurrencyInput}
	if got, ok := Interpret(currency, "$49.99 total"); !ok || got != "49.99" {
		t.Errorf("expected 49.99, got %v (matched=%v)", got, ok)
	}
	if _, ok := Interpret(currency, "a lot of money"); ok {
		t.Error("expected no match without digits")
	}
}

func TestInterpretYesNo(t *testing.T) {
	t.Parallel()
	field := callvu.Field{ID: "terms", Type: callvu.FieldCheckboxInput}

	tests := []struct {
		transcript string
		want       any
		matched    bool
	}{
		{"yes please", true, true},
		{"that's correct", true, true},
		{"nope", false, true},
		{"I don't think so", false, true},
		{"maybe later", nil, false},
	}
	for _, tc := range tests {
		got, matched := Interpret(field, tc.transcript)
		if matched != tc.matched || (matched && got != tc.want) {
			t.Errorf("Interpret(%q): expected (%v, %v), got (%v, %v)", tc.transcript, tc.want, tc.matched, got, matched)
		}
	}
}

func TestInterpretRating(t *testing.T) {
	t.Parallel()
	field := callvu.Field{ID: "stars", Type: callvu.FieldRatingInput}

	if got, ok := Interpret(field, "I'd say 4 stars"); !ok || got != 4 {
		t.Errorf("expected 4, got %v (matched=%v)", got, ok)
	}
	if _, ok := Interpret(field, "pretty good"); ok {
		t.Error("expected no match without a number")
	}
}

func TestInterpretFreeTextPassthrough(t *testing.T) {
	t.Parallel()
	field := callvu.Field{ID: "name", Type: callvu.FieldTextInput}

	got, ok := Interpret(field, "  Dana Levy  ")
	if !ok || got != "Dana Levy" {
		t.Errorf("expected trimmed passthrough, got %v (matched=%v)", got, ok)
	}
	if _, ok := Interpret(field, "   "); ok {
		t.Error("expected no match for blank transcript")
	}
}
