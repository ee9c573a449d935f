package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	callvu "github.com/doronro/call-vu-management-studio"
	"github.com/doronro/call-vu-management-studio/format"
	"github.com/doronro/call-vu-management-studio/rules"
)

// Stepper walks the flattened field list turn by turn: it asks the next
// visible unanswered field, records answers, re-runs the rule engine after
// every one, advances across sections, and emits the final summary.
//
// All state transitions happen inside the exported entry points (Start,
// SubmitAnswer, Skip, ActivateSmartButton) and run to completion before the
// call returns. The stepper is not safe for concurrent use; it expects a
// single event loop, with voice and manual input feeding the same entry
// point.
type Stepper struct {
	formName        string
	fields          []callvu.Field
	sections        []callvu.Section
	visibilityRules []*callvu.Rule
	updatingRules   []*callvu.Rule

	formData        map[string]any
	answered        map[string]bool
	blockVisibility map[string]bool
	fieldVisibility map[string]bool

	currentSection string
	currentIndex   int
	awaiting       bool
	started        bool
	completed      bool

	transcript []Message
	summary    []format.SummaryRow

	sink SessionSink
}

type stepperOptions struct {
	formName string
	sink     SessionSink
}

type Option func(*stepperOptions)

// WithFormName sets the title named in the welcome message. Unnamed forms
// are welcomed generically.
func WithFormName(name string) Option {
	return func(o *stepperOptions) {
		o.formName = name
	}
}

// WithSessionSink wires the persistence collaborator the stepper reports
// answers and completion to.
func WithSessionSink(sink SessionSink) Option {
	return func(o *stepperOptions) {
		o.sink = sink
	}
}

// NewStepper builds a stepper over an extraction. The extraction itself is
// not retained: fields, rules, and visibility seeds are copied so re-entrant
// rule evaluation stays confined to stepper-owned state.
func NewStepper(extraction *callvu.Extraction, opts ...Option) *Stepper {
	options := stepperOptions{sink: NopSink{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	s := &Stepper{
		formName:        options.formName,
		sections:        append([]callvu.Section(nil), extraction.Sections...),
		fields:          append([]callvu.Field(nil), extraction.Fields...),
		visibilityRules: extraction.VisibilityRules,
		updatingRules:   extraction.UpdatingRules,
		formData:        map[string]any{},
		answered:        map[string]bool{},
		blockVisibility: map[string]bool{},
		fieldVisibility: map[string]bool{},
		currentIndex:    -1,
		sink:            options.sink,
	}
	for k, v := range extraction.BlockVisibility {
		s.blockVisibility[k] = v
	}
	for k, v := range extraction.FieldVisibility {
		s.fieldVisibility[k] = v
	}
	// Global variables resolve placeholders before any field is answered.
	for name, value := range extraction.GlobalVariables {
		if value != "" {
			s.formData[name] = value
		}
	}
	return s
}

// Start opens the conversation: welcome copy, the first section's intro
// paragraphs, and the first question. Starting an empty extraction produces
// the "no form content" notice instead of an error.
func (s *Stepper) Start(ctx context.Context) {
	if s.started {
		return
	}
	s.started = true

	if len(s.sections) == 0 || len(s.fields) == 0 {
		s.addBotMessage("No form content found. Please upload a valid form schema.")
		return
	}

	first := s.sections[0].ID
	s.currentSection = first
	formRef := "this form"
	if s.formName != "" {
		formRef = fmt.Sprintf("the %s form", s.formName)
	}
	s.addBotMessage(fmt.Sprintf("Welcome! I'll help you complete %s. Let's start with the %s section.", formRef, first))
	s.emitSectionIntro(first)
	s.askFirstFieldOf(ctx, first)
}

// SubmitAnswer records a value for the currently awaited field, echoes it,
// re-runs the rule engine, and advances. A validation failure leaves all
// state untouched and is surfaced to the caller.
func (s *Stepper) SubmitAnswer(ctx context.Context, value any, source Source) error {
	if !s.awaiting || s.currentIndex < 0 || s.currentIndex >= len(s.fields) {
		return ErrNoQuestion
	}
	field := s.fields[s.currentIndex]

	if err := format.Validate(field, value); err != nil {
		return err
	}
	slog.Debug("conversation: recording answer", "field", field.ID, "source", source)

	s.formData[field.ID] = value
	if field.IntegrationID != "" && field.IntegrationID != field.ID {
		s.formData[field.IntegrationID] = value
	}
	s.answered[field.ID] = true
	s.awaiting = false

	display := format.Display(field, value)
	if display != "" {
		s.addUserMessage(display)
	}

	question := field.Label
	if question == "" {
		question = field.ID
	}
	if err := s.sink.RecordAnswer(ctx, question, display); err != nil {
		slog.Warn("conversation: answer tracking failed", "field", field.ID, "err", err)
	}

	s.reapplyRules()
	s.advanceFrom(ctx, s.currentIndex)
	return nil
}

// Skip marks the awaited field answered with no value. It is refused for
// required fields with no effect on state.
func (s *Stepper) Skip(ctx context.Context) error {
	if !s.awaiting || s.currentIndex < 0 || s.currentIndex >= len(s.fields) {
		return ErrNoQuestion
	}
	field := s.fields[s.currentIndex]
	if field.Required {
		return ErrSkipRequired
	}

	s.answered[field.ID] = true
	s.awaiting = false
	s.addUserMessage("Skipped")
	s.advanceFrom(ctx, s.currentIndex)
	return nil
}

// SmartButtons lists the smart buttons currently offered as navigation
// shortcuts: visible and not yet used.
func (s *Stepper) SmartButtons() []callvu.Field {
	var buttons []callvu.Field
	for i := range s.fields {
		f := s.fields[i]
		if f.Type == callvu.FieldSmartButton && s.visible(f) && !s.answered[f.ID] {
			buttons = append(buttons, f)
		}
	}
	return buttons
}

// ActivateSmartButton jumps the conversation to the section the button's
// configured step points at, outside the normal linear advance.
func (s *Stepper) ActivateSmartButton(ctx context.Context, fieldID string) error {
	var button *callvu.Field
	for i := range s.fields {
		if s.fields[i].ID == fieldID && s.fields[i].Type == callvu.FieldSmartButton {
			button = &s.fields[i]
			break
		}
	}
	if button == nil || !s.visible(*button) || s.answered[button.ID] {
		return ErrUnknownTarget
	}
	target := button.SmartButtonTarget()
	if target == "" {
		return ErrUnknownTarget
	}
	for _, section := range s.sections {
		if section.Identifier == target {
			s.answered[button.ID] = true
			s.navigateToSection(ctx, section.ID)
			return nil
		}
	}
	return ErrUnknownTarget
}

// Messages returns the transcript so far.
func (s *Stepper) Messages() []Message {
	return s.transcript
}

// FormData returns a copy of the collected answers.
func (s *Stepper) FormData() map[string]any {
	out := make(map[string]any, len(s.formData))
	for k, v := range s.formData {
		out[k] = v
	}
	return out
}

// Summary returns the computed summary rows; empty until the form completes.
func (s *Stepper) Summary() []format.SummaryRow {
	return s.summary
}

func (s *Stepper) Started() bool   { return s.started }
func (s *Stepper) Completed() bool { return s.completed }

// AwaitingAnswer reports whether a question is currently awaiting a response.
func (s *Stepper) AwaitingAnswer() bool { return s.awaiting }

// CurrentSection returns the id of the section the conversation is in.
func (s *Stepper) CurrentSection() string { return s.currentSection }

// CurrentField returns the field awaiting an answer, if any.
func (s *Stepper) CurrentField() (callvu.Field, bool) {
	if !s.awaiting || s.currentIndex < 0 || s.currentIndex >= len(s.fields) {
		return callvu.Field{}, false
	}
	return s.fields[s.currentIndex], true
}

// FieldVisible reports the effective visibility of a field by id.
func (s *Stepper) FieldVisible(id string) bool {
	for i := range s.fields {
		if s.fields[i].ID == id {
			return s.visible(s.fields[i])
		}
	}
	return false
}

// visible applies the block-dominance invariant: a field whose owning block
// is hidden is never visible regardless of its own entry. Absent map entries
// mean visible.
func (s *Stepper) visible(f callvu.Field) bool {
	if f.BlockID != "" {
		if shown, ok := s.blockVisibility[f.BlockID]; ok && !shown {
			return false
		}
	}
	if shown, ok := s.fieldVisibility[f.ID]; ok && !shown {
		return false
	}
	return true
}

func (s *Stepper) reapplyRules() {
	s.blockVisibility, s.fieldVisibility = rules.Apply(
		s.visibilityRules, s.formData, s.blockVisibility, s.fieldVisibility, s.fields)
	s.fields = rules.ApplyUpdating(s.updatingRules, s.formData, s.fields)
}

// askQuestion emits the question for the field at index and starts awaiting.
// Paragraphs are narration: their resolved text is emitted and the stepper
// immediately advances past them.
func (s *Stepper) askQuestion(ctx context.Context, index int) {
	if index < 0 || index >= len(s.fields) {
		return
	}
	field := s.fields[index]
	s.currentIndex = index

	if field.Type == callvu.FieldParagraph {
		if text := callvu.ResolvePlaceholders(field.ParagraphText(), s.formData, s.fields); text != "" {
			s.addBotMessage(text)
		}
		s.advanceFrom(ctx, index)
		return
	}

	question := formatQuestion(field.Label)
	if field.Type.HasOptions() {
		if opts := field.Options(); len(opts) > 0 {
			labels := make([]string, len(opts))
			for i, opt := range opts {
				labels[i] = opt.Label
			}
			question += fmt.Sprintf(" Please choose one of these options: %s", strings.Join(labels, ", "))
		}
	}
	if !field.Type.Known() {
		question += " (Unsupported field type)"
	}
	s.addBotMessage(question)
	s.awaiting = true
}

// advanceFrom continues after the field at index: the next askable field in
// the current section, or the section transition when none remains. If the
// section still has unanswered fields the scan cannot reach, the stepper
// stalls on the current question rather than aborting the session.
func (s *Stepper) advanceFrom(ctx context.Context, index int) {
	if next := s.findNextField(index); next >= 0 {
		s.askQuestion(ctx, next)
		return
	}
	if s.sectionComplete() {
		s.completeSection(ctx)
	}
}

// findNextField scans forward for the next field of the current section that
// is visible, not layout (separator/divider), not a smart button, and not
// already answered. Paragraphs are returned so their narration is emitted in
// order.
func (s *Stepper) findNextField(from int) int {
	for i := from + 1; i < len(s.fields); i++ {
		f := s.fields[i]
		if f.Section != s.currentSection {
			continue
		}
		if !s.visible(f) {
			continue
		}
		switch f.Type {
		case callvu.FieldSeparator, callvu.FieldDivider, callvu.FieldSmartButton:
			continue
		}
		if s.answered[f.ID] {
			continue
		}
		return i
	}
	return -1
}

func (s *Stepper) sectionComplete() bool {
	if s.currentSection == "" {
		return false
	}
	for i := range s.fields {
		f := s.fields[i]
		if f.Section == s.currentSection && s.visible(f) && f.Type.Input() && !s.answered[f.ID] {
			return false
		}
	}
	return true
}

func (s *Stepper) completeSection(ctx context.Context) {
	for i, section := range s.sections {
		if section.ID != s.currentSection {
			continue
		}
		if i < len(s.sections)-1 {
			s.navigateToSection(ctx, s.sections[i+1].ID)
		} else {
			s.completeForm(ctx)
		}
		return
	}
	s.completeForm(ctx)
}

func (s *Stepper) navigateToSection(ctx context.Context, sectionID string) {
	if sectionID == "" {
		return
	}
	s.addBotMessage(fmt.Sprintf("Let's move to the %s section.", sectionID))
	s.currentSection = sectionID
	s.emitSectionIntro(sectionID)
	s.askFirstFieldOf(ctx, sectionID)
}

// emitSectionIntro emits the section's leading paragraph run as one message,
// resolved texts joined by single spaces. Unresolvable paragraphs drop out of
// the join rather than leaking placeholder syntax.
func (s *Stepper) emitSectionIntro(sectionID string) {
	start := -1
	for i := range s.fields {
		if s.fields[i].Section == sectionID {
			start = i
			break
		}
	}
	if start < 0 {
		return
	}
	var intro []string
	for i := start; i < len(s.fields); i++ {
		f := s.fields[i]
		if f.Section != sectionID || f.Type != callvu.FieldParagraph || !s.visible(f) {
			break
		}
		if text := callvu.ResolvePlaceholders(f.ParagraphText(), s.formData, s.fields); text != "" {
			intro = append(intro, text)
		}
	}
	if len(intro) > 0 {
		s.addBotMessage(strings.Join(intro, " "))
	}
}

// askFirstFieldOf asks the first answerable field of the section. Sections
// with nothing left to ask are passed through: the next section takes over,
// and the form completes when none remains.
func (s *Stepper) askFirstFieldOf(ctx context.Context, sectionID string) {
	for i := range s.fields {
		f := s.fields[i]
		if f.Section != sectionID || !s.visible(f) || s.answered[f.ID] {
			continue
		}
		switch f.Type {
		case callvu.FieldParagraph, callvu.FieldSeparator, callvu.FieldDivider, callvu.FieldSmartButton:
			continue
		}
		s.askQuestion(ctx, i)
		return
	}
	for i, section := range s.sections {
		if section.ID != sectionID {
			continue
		}
		if i < len(s.sections)-1 {
			s.navigateToSection(ctx, s.sections[i+1].ID)
		} else {
			s.completeForm(ctx)
		}
		return
	}
}

func (s *Stepper) completeForm(ctx context.Context) {
	if s.completed {
		return
	}
	s.completed = true
	s.awaiting = false
	s.currentIndex = -1
	s.summary = s.computeSummary()

	s.addBotMessage("Thank you for completing the form! Here's a summary of your responses:")
	s.transcript = append(s.transcript, Message{
		Sender:  SenderBot,
		Kind:    KindSummary,
		Summary: s.summary,
	})

	if err := s.sink.Complete(ctx, s.FormData()); err != nil {
		slog.Warn("conversation: session completion persistence failed", "err", err)
	}
}

// computeSummary walks all fields in document order, skipping narration,
// layout, smart buttons, and anything currently invisible, and formats each
// remaining answer for display.
func (s *Stepper) computeSummary() []format.SummaryRow {
	var rows []format.SummaryRow
	for i := range s.fields {
		f := s.fields[i]
		if !f.Type.Input() || !s.visible(f) {
			continue
		}
		raw, ok := s.formData[f.ID]
		if !ok && f.IntegrationID != "" {
			raw = s.formData[f.IntegrationID]
		}
		integrationID := f.IntegrationID
		if integrationID == "" {
			integrationID = f.ID
		}
		rows = append(rows, format.SummaryRow{
			Section:       f.Section,
			IntegrationID: integrationID,
			Question:      f.Label,
			Answer:        format.SummaryValue(f, raw),
		})
	}
	return rows
}

func (s *Stepper) addBotMessage(text string) {
	if text == "" {
		return
	}
	if strings.Contains(text, "@#") {
		text = callvu.ResolvePlaceholders(text, s.formData, s.fields)
		if text == "" {
			return
		}
	}
	// Re-entrant advances can reproduce the same narration; consecutive
	// duplicates are suppressed.
	if n := len(s.transcript); n > 0 {
		last := s.transcript[n-1]
		if last.Sender == SenderBot && last.Kind == KindText && last.Text == text {
			return
		}
	}
	s.transcript = append(s.transcript, Message{Sender: SenderBot, Kind: KindText, Text: text})
}

func (s *Stepper) addUserMessage(text string) {
	if text == "" {
		return
	}
	s.transcript = append(s.transcript, Message{Sender: SenderUser, Kind: KindText, Text: text})
}

func formatQuestion(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '?', '!':
		return trimmed
	}
	return trimmed + "?"
}
