package callvu

import "strings"

// FieldType is the normalized (lower-cased) CVUF field type. The set below is
// closed; anything else passes through unchanged and renders as an
// unsupported-field notice rather than failing extraction.
type FieldType string

const (
	FieldTextInput      FieldType = "textinput"
	FieldTextArea       FieldType = "textarea"
	FieldNumberInput    FieldType = "numberinput"
	FieldCurrencyInput  FieldType = "currencyinput"
	FieldRadioInput     FieldType = "radioinput"
	FieldCheckboxInput  FieldType = "checkboxinput"
	FieldDropdownInput  FieldType = "dropdowninput"
	FieldDateInput      FieldType = "dateinput"
	FieldRatingInput    FieldType = "ratinginput"
	FieldSignatureInput FieldType = "signatureinput"
	FieldSignaturePad   FieldType = "signaturepad"
	FieldSignature      FieldType = "signature"
	FieldParagraph      FieldType = "paragraph"
	FieldSmartButton    FieldType = "smartbutton"
	FieldSeparator      FieldType = "separator"
	FieldDivider        FieldType = "divider"
)

var knownFieldTypes = map[FieldType]bool{
	FieldTextInput:      true,
	FieldTextArea:       true,
	FieldNumberInput:    true,
	FieldCurrencyInput:  true,
	FieldRadioInput:     true,
	FieldCheckboxInput:  true,
	FieldDropdownInput:  true,
	FieldDateInput:      true,
	FieldRatingInput:    true,
	FieldSignatureInput: true,
	FieldSignaturePad:   true,
	FieldSignature:      true,
	FieldParagraph:      true,
	FieldSmartButton:    true,
	FieldSeparator:      true,
	FieldDivider:        true,
}

// NormalizeFieldType lower-cases a raw authoring type. Unknown types are kept
// as-is so the presentation layer can surface them without crashing the parse.
func NormalizeFieldType(raw string) FieldType {
	return FieldType(strings.ToLower(strings.TrimSpace(raw)))
}

func (t FieldType) Known() bool {
	return knownFieldTypes[t]
}

// Signature reports whether the type is one of the signature variants that
// authoring tools emit interchangeably.
func (t FieldType) Signature() bool {
	return t == FieldSignatureInput || t == FieldSignaturePad || t == FieldSignature
}

// HasOptions reports whether the field carries an items list the user picks
// from.
func (t FieldType) HasOptions() bool {
	return t == FieldRadioInput || t == FieldDropdownInput
}

// Input reports whether the field ever receives a user answer. Narration and
// layout types never do; unknown types are treated as inputs so required-ness
// rules still apply to them.
func (t FieldType) Input() bool {
	switch t {
	case FieldParagraph, FieldSmartButton, FieldSeparator, FieldDivider:
		return false
	}
	return true
}

// Option is a single selectable item of a radio or dropdown field.
type Option struct {
	Value any
	Label string
}

// Field is the normalized working unit the conversation walks over. It is
// flattened out of the nested step/block/row structure; slice order is
// document order and IS the question order.
type Field struct {
	ID             string
	Label          string
	Type           FieldType
	Required       bool
	Section        string
	StepIdentifier string
	IntegrationID  string
	BlockID        string
	BlockName      string
	Hidden         bool
	Properties     map[string]any
}

// Options extracts the items list from the property bag. Items without a
// label fall back to their value text.
func (f *Field) Options() []Option {
	items, ok := f.Properties["items"].([]any)
	if !ok {
		return nil
	}
	opts := make([]Option, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok || item == nil {
			continue
		}
		opt := Option{Value: item["value"]}
		if label, ok := item["label"].(string); ok && label != "" {
			opt.Label = label
		} else {
			opt.Label = Stringify(item["value"])
		}
		opts = append(opts, opt)
	}
	return opts
}

// ParagraphText returns the narration text of a paragraph field, preferring
// the edited copy over the original.
func (f *Field) ParagraphText() string {
	if edited, ok := f.Properties["editedParagraph"].(string); ok && edited != "" {
		return edited
	}
	if text, ok := f.Properties["text"].(string); ok {
		return text
	}
	return ""
}

// SmartButtonTarget returns the step identifier a smart button jumps to.
func (f *Field) SmartButtonTarget() string {
	selected, ok := f.Properties["selectedStep"].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := selected["identifier"].(string)
	return id
}

// Section is one schema step in form order. Next is the id of the following
// section, or empty for the last one.
type Section struct {
	ID         string
	Identifier string
	Next       string
}
