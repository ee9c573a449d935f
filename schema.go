package callvu

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Document is the root of a CVUF (Call-VU Universal Form) schema file.
// Authoring tools emit loosely structured JSON, so anything below the row
// level is kept as raw maps and interpreted lazily.
type Document struct {
	Form *Form `json:"form"`
}

type Form struct {
	FormName        string            `json:"formName"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Direction       string            `json:"direction"`
	Steps           []*Step           `json:"steps"`
	NewRules        []*Rule           `json:"newRules"`
	GlobalVariables []*GlobalVariable `json:"globalVariables"`
}

// Name returns the display title of the form, preferring formName over title.
func (f *Form) Name() string {
	if f == nil {
		return ""
	}
	if f.FormName != "" {
		return f.FormName
	}
	if f.Title != "" {
		return f.Title
	}
	return "Form"
}

type Step struct {
	Identifier string   `json:"identifier"`
	StepName   string   `json:"stepName"`
	Blocks     []*Block `json:"blocks"`
}

type Block struct {
	Identifier        string `json:"identifier"`
	BlockName         string `json:"blockName"`
	Hidden            bool   `json:"hidden"`
	IsHiddenInRuntime bool   `json:"isHiddenInRuntime"`
	Rows              []*Row `json:"rows"`
}

// HiddenAtStart reports whether the block is statically hidden by authoring.
func (b *Block) HiddenAtStart() bool {
	return b.Hidden || b.IsHiddenInRuntime
}

// Row fields are raw objects: authoring tools attach arbitrary per-type
// configuration next to the recognized keys, and all of it must survive as
// the field's property bag.
type Row struct {
	Fields []map[string]any `json:"fields"`
}

// Rule is a condition/action pair attached to the form. Type is either
// "visibility" (show/hide blocks and fields) or "updating" (mutate a field's
// property bag).
type Rule struct {
	Type      string     `json:"type"`
	Condition *Condition `json:"condition"`
	Actions   []*Action  `json:"actions"`
}

// Condition is satisfied when the answer recorded for When equals Is, or is
// a member of Is when Is is an array. No other operators exist in CVUF.
type Condition struct {
	When string `json:"when"`
	Is   any    `json:"is"`
}

type Action struct {
	ElementIdentifier string         `json:"elementIdentifier"`
	Action            string         `json:"action"`
	Properties        map[string]any `json:"properties,omitempty"`
}

type GlobalVariable struct {
	IntegrationID string `json:"integrationID"`
	Value         string `json:"value"`
}

// ParseSchema decodes a raw CVUF document. A decode failure is the only hard
// error; structural defects inside the form degrade during extraction instead.
func ParseSchema(data []byte) (*Document, error) {
	var doc Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse CVUF schema: %w", err)
	}
	return &doc, nil
}
