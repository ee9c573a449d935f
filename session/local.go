package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// localSessionsKey names the stored collection, mirroring the key the hosted
// frontend uses in browser storage.
const localSessionsKey = "local_sessions"

// LocalRepository keeps sessions as one JSON array in a file. It carries the
// full repository semantics client-side (upsert by sessionId on create,
// merge-patch on update, equality filtering) so it can stand in for the
// remote backend transparently. Processes and form schemas have no local
// source and list empty.
type LocalRepository struct {
	mu   sync.Mutex
	path string
}

// NewLocalRepository stores the session collection under dir. An empty dir
// means the current working directory.
func NewLocalRepository(dir string) *LocalRepository {
	return &LocalRepository{path: filepath.Join(dir, localSessionsKey+".json")}
}

func (r *LocalRepository) ListSessions(ctx context.Context) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *LocalRepository) FilterSessions(ctx context.Context, criteria Criteria) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions, err := r.load()
	if err != nil {
		return nil, err
	}
	var out []Session
	for _, s := range sessions {
		if matches(s, criteria) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *LocalRepository) CreateSession(ctx context.Context, record Session) error {
	if record.SessionID == "" {
		return errors.New("cannot save session without sessionId")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions, err := r.load()
	if err != nil {
		slog.Warn("session: local store unreadable, starting fresh", "err", err)
		sessions = nil
	}
	replaced := false
	for i := range sessions {
		if sessions[i].SessionID == record.SessionID {
			sessions[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		sessions = append(sessions, record)
	}
	return r.save(sessions)
}

func (r *LocalRepository) UpdateSession(ctx context.Context, sessionID string, updates map[string]any) error {
	if sessionID == "" {
		return errors.New("cannot update session without sessionId")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions, err := r.load()
	if err != nil {
		return err
	}
	for i := range sessions {
		if sessions[i].SessionID != sessionID {
			continue
		}
		merged, err := mergeSession(sessions[i], updates)
		if err != nil {
			return fmt.Errorf("merge session update: %w", err)
		}
		sessions[i] = merged
		return r.save(sessions)
	}
	return fmt.Errorf("session %q not found", sessionID)
}

func (r *LocalRepository) ListProcesses(ctx context.Context) ([]Process, error) {
	return nil, nil
}

func (r *LocalRepository) FilterProcesses(ctx context.Context, criteria Criteria) ([]Process, error) {
	return nil, nil
}

func (r *LocalRepository) ListFormSchemas(ctx context.Context) ([]FormSchemaRecord, error) {
	return nil, nil
}

func (r *LocalRepository) load() ([]Session, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var sessions []Session
	if err := sonic.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return sessions, nil
}

func (r *LocalRepository) save(sessions []Session) error {
	if sessions == nil {
		sessions = []Session{}
	}
	data, err := sonic.Marshal(sessions)
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

// mergeSession applies an update map to a stored session as an RFC 7386
// merge patch, matching the object-spread semantics of the hosted frontend.
func mergeSession(current Session, updates map[string]any) (Session, error) {
	var zero Session
	currentJSON, err := sonic.Marshal(current)
	if err != nil {
		return zero, err
	}
	patchJSON, err := sonic.Marshal(updates)
	if err != nil {
		return zero, err
	}
	mergedJSON, err := jsonpatch.MergePatch(currentJSON, patchJSON)
	if err != nil {
		return zero, err
	}
	var merged Session
	if err := sonic.Unmarshal(mergedJSON, &merged); err != nil {
		return zero, err
	}
	return merged, nil
}

var _ Repository = (*LocalRepository)(nil)
