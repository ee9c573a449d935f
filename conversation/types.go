package conversation

import (
	"context"
	"errors"

	"github.com/doronro/call-vu-management-studio/format"
)

type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

type Kind string

const (
	KindText    Kind = "text"
	KindSummary Kind = "summary"
)

// Message is one transcript entry. The transcript is append-only and never
// reordered; summary messages carry the computed rows instead of text.
type Message struct {
	Sender  Sender              `json:"sender"`
	Kind    Kind                `json:"kind"`
	Text    string              `json:"text,omitempty"`
	Summary []format.SummaryRow `json:"summary,omitempty"`
}

// Source identifies how an answer reached the stepper. Both sources feed the
// same entry point so the state machine never cares which one fired.
type Source string

const (
	SourceManual Source = "manual"
	SourceVoice  Source = "voice"
)

// SessionSink receives persistence events from the stepper. Failures are
// logged and swallowed: persistence must never block conversational progress.
type SessionSink interface {
	RecordAnswer(ctx context.Context, question, answer string) error
	Complete(ctx context.Context, formData map[string]any) error
}

// NopSink discards everything; the stepper falls back to it when no sink is
// configured.
type NopSink struct{}

func (NopSink) RecordAnswer(ctx context.Context, question, answer string) error { return nil }
func (NopSink) Complete(ctx context.Context, formData map[string]any) error     { return nil }

var (
	// ErrNoQuestion is returned when an answer or skip arrives while no field
	// is awaiting one.
	ErrNoQuestion = errors.New("no question is awaiting an answer")
	// ErrSkipRequired is returned when skip is attempted on a required field.
	// The field stays unanswered and the transcript is untouched.
	ErrSkipRequired = errors.New("required fields cannot be skipped")
	// ErrUnknownTarget is returned when a smart button points at a step the
	// schema does not contain.
	ErrUnknownTarget = errors.New("smart button targets an unknown step")
)
