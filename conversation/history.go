package conversation

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Trimmer bounds a chat history before it is persisted.
type Trimmer interface {
	Trim(history []*schema.Message) []*schema.Message
}

// KeepSystemLastNTrimmer keeps every system message and the newest N others.
// N <= 0 drops everything but the system messages.
type KeepSystemLastNTrimmer struct {
	N int
}

func (t KeepSystemLastNTrimmer) Trim(history []*schema.Message) []*schema.Message {
	// cutoff is the index of the oldest non-system message that survives.
	cutoff := len(history)
	if t.N > 0 {
		remaining := t.N
		for i := len(history) - 1; i >= 0 && remaining > 0; i-- {
			if history[i] == nil || history[i].Role == schema.System {
				continue
			}
			remaining--
			cutoff = i
		}
		if remaining > 0 {
			return history
		}
	}

	out := make([]*schema.Message, 0, len(history))
	for i, m := range history {
		if m == nil {
			continue
		}
		if m.Role == schema.System || i >= cutoff {
			out = append(out, m)
		}
	}
	return out
}

// HistoryStore persists per-form-session chat history for the adk runner
// loop, routed by the context session key. Saving drops nil entries and
// applies the trimmer; appending skips a message that repeats the previous
// turn verbatim, mirroring the stepper's transcript dedupe.
type HistoryStore struct {
	store   Store[[]*schema.Message]
	trimmer Trimmer
}

func NewHistoryStore(core Cache[[]*schema.Message], trimmer Trimmer) *HistoryStore {
	return &HistoryStore{
		store:   NewStore(core, "conversation:history"),
		trimmer: trimmer,
	}
}

func NewMemoryHistoryStore(trimmer Trimmer) *HistoryStore {
	return NewHistoryStore(NewMemoryCache[[]*schema.Message](), trimmer)
}

func (s *HistoryStore) Load(ctx context.Context) ([]*schema.Message, error) {
	hist, ok, err := s.store.Get(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return hist, nil
}

func (s *HistoryStore) Save(ctx context.Context, history []*schema.Message) error {
	clean := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		if m != nil {
			clean = append(clean, m)
		}
	}
	if s.trimmer != nil {
		clean = s.trimmer.Trim(clean)
	}
	return s.store.Set(ctx, clean)
}

func (s *HistoryStore) Clear(ctx context.Context) error {
	return s.store.Del(ctx)
}

// Append records msgs and returns the saved history, ready to hand straight
// to runner.Run for the next turn.
func (s *HistoryStore) Append(ctx context.Context, msgs ...*schema.Message) ([]*schema.Message, error) {
	hist, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		if n := len(hist); n > 0 && sameTurn(hist[n-1], msg) {
			continue
		}
		hist = append(hist, msg)
	}
	if err := s.Save(ctx, hist); err != nil {
		return nil, err
	}
	return hist, nil
}

func sameTurn(a, b *schema.Message) bool {
	return a != nil && b != nil && a.Role == b.Role && a.Content == b.Content
}
