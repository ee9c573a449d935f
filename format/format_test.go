package format

import (
	"errors"
	"strings"
	"testing"

	callvu "github.com/doronro/call-vu-management-studio"
)

func optionField(t callvu.FieldType) callvu.Field {
	return callvu.Field{
		ID:   "choice",
		Type: t,
		Properties: map[string]any{
			"items": []any{
				map[string]any{"value": "email", "label": "Email"},
				map[string]any{"value": "phone", "label": "Phone"},
			},
		},
	}
}

func TestValidateRequired(t *testing.T) {
	t.Parallel()

	required := callvu.Field{ID: "name", Type: callvu.FieldTextInput, Required: true}
	optional := callvu.Field{ID: "nick", Type: callvu.FieldTextInput}

	if err := Validate(required, nil); !errors.Is(err, ErrRequired) {
		t.Errorf("expected ErrRequired for nil, got %v", err)
	}
	if err := Validate(required, ""); !errors.Is(err, ErrRequired) {
		t.Errorf("expected ErrRequired for empty string, got %v", err)
	}
	if err := Validate(required, "Dana"); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := Validate(optional, nil); err != nil {
		t.Errorf("optional field must accept nil, got %v", err)
	}
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field callvu.Field
		value any
		want  string
	}{
		{"text passthrough", callvu.Field{Type: callvu.FieldTextInput}, "hello", "hello"},
		{"option value maps to label", optionField(callvu.FieldRadioInput), "phone", "Phone"},
		{"unknown option echoes value", optionField(callvu.FieldDropdownInput), "fax", "fax"},
		{"checkbox true", callvu.Field{Type: callvu.FieldCheckboxInput}, true, "Yes"},
		{"checkbox false", callvu.Field{Type: callvu.FieldCheckboxInput}, false, "No"},
		{"rating", callvu.Field{Type: callvu.FieldRatingInput}, 4, "4 stars"},
		{"signature", callvu.Field{Type: callvu.FieldSignaturePad}, "data:image/png;base64,aaa", "Signature provided"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Display(tc.field, tc.value); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSummaryValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field callvu.Field
		value any
		want  string
	}{
		{"missing answer", callvu.Field{Type: callvu.FieldTextInput}, nil, "Not provided"},
		{"checkbox checked", callvu.Field{Type: callvu.FieldCheckboxInput}, true, "Yes"},
		{"checkbox unchecked", callvu.Field{Type: callvu.FieldCheckboxInput}, false, "No"},
		{"checkbox unanswered", callvu.Field{Type: callvu.FieldCheckboxInput}, nil, "No"},
		{"currency string", callvu.Field{Type: callvu.FieldCurrencyInput}, "12.5", "$12.50"},
		{"currency number", callvu.Field{Type: callvu.FieldCurrencyInput}, float64(7), "$7.00"},
		{"currency garbage echoes", callvu.Field{Type: callvu.FieldCurrencyInput}, "a lot", "a lot"},
		{"date long form", callvu.Field{Type: callvu.FieldDateInput}, "2026-03-15", "March 15, 2026"},
		{"date fallback", callvu.Field{Type: callvu.FieldDateInput}, "soon", "soon"},
		{"option label", optionField(callvu.FieldRadioInput), "email", "Email"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SummaryValue(tc.field, tc.value); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSummaryValueSignatureEmbedsImage(t *testing.T) {
	t.Parallel()
	field := callvu.Field{Type: callvu.FieldSignatureInput}
	got := SummaryValue(field, "data:image/png;base64,abc")
	if !strings.Contains(got, `<img src="data:image/png;base64,abc"`) {
		t.Errorf("expected embedded image, got %q", got)
	}
	if !strings.Contains(got, `alt="Signature"`) {
		t.Errorf("expected alt text, got %q", got)
	}
}

func TestFormatDateLayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"2026-03-15T10:30:00Z", "March 15, 2026"},
		{"2026-03-15T10:30:00", "March 15, 2026"},
		{"2026-03-15", "March 15, 2026"},
		{"03/15/2026", "March 15, 2026"},
		{"", ""},
		{"not a date", "not a date"},
	}
	for _, tc := range tests {
		if got := FormatDate(tc.in); got != tc.want {
			t.Errorf("FormatDate(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
