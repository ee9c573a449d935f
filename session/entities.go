// Package session persists conversation sessions through a repository
// abstraction: a remote backend-as-a-service client, a local JSON-file
// fallback with the same semantics, and a combinator that prefers the remote
// and degrades silently. The conversation core never knows which backend is
// active.
package session

import "time"

// Mode is how the end user interacts with the form.
type Mode string

const (
	ModeChat   Mode = "chat"
	ModeVoice  Mode = "voice"
	ModeAvatar Mode = "avatar"
)

// Session is the record tracked per conversation run. An abandoned run simply
// stays completed=false forever; there is no cancellation protocol.
type Session struct {
	ID        string           `json:"id,omitempty"`
	SessionID string           `json:"sessionId"`
	ProcessID string           `json:"processId"`
	Mode      Mode             `json:"mode"`
	StartTime time.Time        `json:"startTime"`
	EndTime   *time.Time       `json:"endTime,omitempty"`
	Completed bool             `json:"completed"`
	FormData  map[string]any   `json:"formData"`
	Questions []QuestionRecord `json:"questions"`
	Ratings   *Ratings         `json:"ratings,omitempty"`
}

// QuestionRecord is one asked question with the answer as echoed to the user.
type QuestionRecord struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Ratings is the optional post-completion feedback.
type Ratings struct {
	OverallExperience int    `json:"overallExperience"`
	EaseOfUse         int    `json:"easeOfUse"`
	Accuracy          int    `json:"accuracy"`
	Comments          string `json:"comments,omitempty"`
}

// Process is a published form an operator exposes to end users.
type Process struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SchemaID    string    `json:"schemaId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// FormSchemaRecord is a stored CVUF document.
type FormSchemaRecord struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

// Duration returns the session length, or zero when it never completed.
func (s *Session) Duration() time.Duration {
	if s.EndTime == nil || s.StartTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}
