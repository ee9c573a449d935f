package callvu

import (
	"fmt"
	"log/slog"
)

// Extraction is the flat model the conversation engine runs on, produced once
// per loaded schema and never mutated afterwards (the stepper copies what it
// needs).
type Extraction struct {
	Fields          []Field
	Sections        []Section
	VisibilityRules []*Rule
	UpdatingRules   []*Rule
	GlobalVariables map[string]string

	// Visibility seeds from static hidden flags. Block visibility dominates:
	// a field inside a hidden block starts hidden regardless of its own flag.
	BlockVisibility map[string]bool
	FieldVisibility map[string]bool
}

// Empty reports whether the extraction holds nothing to run. Callers must
// treat this as "no form content", not as a fault.
func (e *Extraction) Empty() bool {
	return len(e.Fields) == 0 || len(e.Sections) == 0
}

// Extract flattens a CVUF document into ordered fields and sections plus the
// rule lists and visibility seeds. Malformed pieces are logged and skipped;
// authoring tools produce broken steps often enough that aborting the whole
// parse is not an option.
func Extract(doc *Document) *Extraction {
	out := &Extraction{
		GlobalVariables: map[string]string{},
		BlockVisibility: map[string]bool{},
		FieldVisibility: map[string]bool{},
	}
	if doc == nil || doc.Form == nil {
		slog.Warn("cvuf: document has no form object")
		return out
	}
	form := doc.Form
	if form.Steps == nil {
		slog.Warn("cvuf: form has no steps array")
		return out
	}

	for _, variable := range form.GlobalVariables {
		if variable != nil && variable.IntegrationID != "" {
			out.GlobalVariables[variable.IntegrationID] = variable.Value
		}
	}

	for _, rule := range form.NewRules {
		if rule == nil {
			continue
		}
		switch rule.Type {
		case "visibility":
			out.VisibilityRules = append(out.VisibilityRules, rule)
		case "updating":
			out.UpdatingRules = append(out.UpdatingRules, rule)
		}
	}

	for stepIndex, step := range form.Steps {
		if step == nil {
			continue
		}
		extractStep(out, step, stepIndex, form.Steps)
	}

	return out
}

func extractStep(out *Extraction, step *Step, stepIndex int, steps []*Step) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("cvuf: step extraction failed, skipping", "step", step.Identifier, "err", r)
		}
	}()

	sectionName := step.StepName
	if sectionName == "" {
		sectionName = fmt.Sprintf("Section %d", stepIndex+1)
	}
	next := ""
	if stepIndex < len(steps)-1 && steps[stepIndex+1] != nil {
		next = steps[stepIndex+1].StepName
	}
	out.Sections = append(out.Sections, Section{
		ID:         sectionName,
		Identifier: step.Identifier,
		Next:       next,
	})

	for _, block := range step.Blocks {
		if block == nil {
			continue
		}
		extractBlock(out, block, step, sectionName)
	}
}

func extractBlock(out *Extraction, block *Block, step *Step, sectionName string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("cvuf: block extraction failed, skipping", "block", block.Identifier, "err", r)
		}
	}()

	hidden := block.HiddenAtStart()
	out.BlockVisibility[block.Identifier] = !hidden

	// Named visible blocks introduce themselves: a synthetic paragraph field
	// carries the block name into the conversation before the block's own
	// fields.
	if block.BlockName != "" && !hidden {
		out.Fields = append(out.Fields, Field{
			ID:             block.Identifier + "_title",
			Label:          block.BlockName,
			Type:           FieldParagraph,
			Section:        sectionName,
			StepIdentifier: step.Identifier,
			IntegrationID:  block.Identifier + "_title",
			BlockID:        block.Identifier,
			BlockName:      block.BlockName,
			Hidden:         hidden,
			Properties: map[string]any{
				"text":            block.BlockName,
				"editedParagraph": block.BlockName,
			},
		})
	}

	for _, row := range block.Rows {
		if row == nil {
			continue
		}
		for _, raw := range row.Fields {
			extractField(out, raw, block, step, sectionName, hidden)
		}
	}
}

func extractField(out *Extraction, raw map[string]any, block *Block, step *Step, sectionName string, blockHidden bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("cvuf: field extraction failed, skipping", "block", block.Identifier, "err", r)
		}
	}()

	if raw == nil {
		return
	}
	identifier, _ := raw["identifier"].(string)
	rawType, _ := raw["type"].(string)
	if identifier == "" || rawType == "" {
		return
	}

	label, _ := raw["label"].(string)
	required, _ := raw["required"].(bool)
	hiddenInRuntime, _ := raw["isHiddenInRuntime"].(bool)
	integrationID, _ := raw["integrationID"].(string)
	if integrationID == "" {
		integrationID = identifier
	}

	out.Fields = append(out.Fields, Field{
		ID:             identifier,
		Label:          label,
		Type:           NormalizeFieldType(rawType),
		Required:       required,
		Section:        sectionName,
		StepIdentifier: step.Identifier,
		IntegrationID:  integrationID,
		BlockID:        block.Identifier,
		BlockName:      block.BlockName,
		Hidden:         blockHidden || hiddenInRuntime,
		Properties:     raw,
	})
	out.FieldVisibility[identifier] = !blockHidden && !hiddenInRuntime
}
