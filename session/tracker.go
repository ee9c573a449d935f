package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Tracker binds one conversation run to its session record. It satisfies the
// conversation layer's sink contract: answers append to the question log,
// completion writes the final form data and fires the notifier.
type Tracker struct {
	repo      Repository
	notifier  Notifier
	sessionID string
	now       func() time.Time
}

type TrackerOption func(*Tracker)

// WithNotifier sets the completion notifier; the default is a no-op.
func WithNotifier(n Notifier) TrackerOption {
	return func(t *Tracker) {
		if n != nil {
			t.notifier = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// StartTracker creates the session record and returns the tracker bound to
// it. The session starts incomplete with empty form data.
func StartTracker(ctx context.Context, repo Repository, processID string, mode Mode, opts ...TrackerOption) (*Tracker, error) {
	t := &Tracker{
		repo:     repo,
		notifier: NopNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	t.sessionID = fmt.Sprintf("session_%s", uuid.NewString())

	record := Session{
		SessionID: t.sessionID,
		ProcessID: processID,
		Mode:      mode,
		StartTime: t.now().UTC(),
		Completed: false,
		FormData:  map[string]any{},
		Questions: []QuestionRecord{},
	}
	if err := t.repo.CreateSession(ctx, record); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return t, nil
}

// SessionID returns the generated session identifier.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// RecordAnswer appends a question/answer pair to the session's log.
func (t *Tracker) RecordAnswer(ctx context.Context, question, answer string) error {
	sessions, err := t.repo.FilterSessions(ctx, Criteria{"sessionId": t.sessionID})
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return fmt.Errorf("session %q not found", t.sessionID)
	}
	questions := append(sessions[0].Questions, QuestionRecord{
		Question:  question,
		Answer:    answer,
		Timestamp: t.now().UTC(),
	})
	return t.repo.UpdateSession(ctx, t.sessionID, map[string]any{
		"questions": questions,
	})
}

// Complete marks the session finished with its final form data and notifies
// subscribers. Notification failures are logged, not propagated: the session
// record is already closed.
func (t *Tracker) Complete(ctx context.Context, formData map[string]any) error {
	end := t.now().UTC()
	err := t.repo.UpdateSession(ctx, t.sessionID, map[string]any{
		"formData":  formData,
		"completed": true,
		"endTime":   end.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if nErr := t.notifier.SessionCompleted(ctx, t.sessionID, formData); nErr != nil {
		slog.Warn("session: completion notification failed", "session", t.sessionID, "err", nErr)
	}
	return nil
}

// SubmitRatings attaches post-completion feedback to the session.
func (t *Tracker) SubmitRatings(ctx context.Context, ratings Ratings) error {
	return t.repo.UpdateSession(ctx, t.sessionID, map[string]any{
		"ratings": ratings,
	})
}
