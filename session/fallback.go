package session

import (
	"context"
	"log/slog"
)

// FallbackRepository prefers the remote backend and mirrors every write into
// the local store, so a later remote outage still has the full history. When
// the remote errors, the local result stands in silently; conversational
// progress never observes persistence failures.
type FallbackRepository struct {
	remote Repository
	local  Repository
}

func NewFallbackRepository(remote, local Repository) *FallbackRepository {
	return &FallbackRepository{remote: remote, local: local}
}

func (r *FallbackRepository) ListSessions(ctx context.Context) ([]Session, error) {
	local, _ := r.local.ListSessions(ctx)
	remote, err := r.remote.ListSessions(ctx)
	if err != nil {
		slog.Warn("session: remote list failed, serving local sessions", "err", err)
		return local, nil
	}
	return mergeSessionLists(remote, local), nil
}

func (r *FallbackRepository) FilterSessions(ctx context.Context, criteria Criteria) ([]Session, error) {
	local, _ := r.local.FilterSessions(ctx, criteria)
	remote, err := r.remote.FilterSessions(ctx, criteria)
	if err != nil {
		slog.Warn("session: remote filter failed, serving local sessions", "err", err)
		return local, nil
	}
	return mergeSessionLists(remote, local), nil
}

func (r *FallbackRepository) CreateSession(ctx context.Context, record Session) error {
	if err := r.local.CreateSession(ctx, record); err != nil {
		slog.Warn("session: local mirror create failed", "err", err)
	}
	if err := r.remote.CreateSession(ctx, record); err != nil {
		slog.Warn("session: remote create failed, session kept locally", "err", err)
	}
	return nil
}

func (r *FallbackRepository) UpdateSession(ctx context.Context, sessionID string, updates map[string]any) error {
	if err := r.local.UpdateSession(ctx, sessionID, updates); err != nil {
		slog.Warn("session: local mirror update failed", "err", err)
	}
	if err := r.remote.UpdateSession(ctx, sessionID, updates); err != nil {
		slog.Warn("session: remote update failed, update kept locally", "err", err)
	}
	return nil
}

func (r *FallbackRepository) ListProcesses(ctx context.Context) ([]Process, error) {
	processes, err := r.remote.ListProcesses(ctx)
	if err != nil {
		slog.Warn("session: remote process list failed", "err", err)
		return r.local.ListProcesses(ctx)
	}
	return processes, nil
}

func (r *FallbackRepository) FilterProcesses(ctx context.Context, criteria Criteria) ([]Process, error) {
	processes, err := r.remote.FilterProcesses(ctx, criteria)
	if err != nil {
		slog.Warn("session: remote process filter failed", "err", err)
		return r.local.FilterProcesses(ctx, criteria)
	}
	return processes, nil
}

func (r *FallbackRepository) ListFormSchemas(ctx context.Context) ([]FormSchemaRecord, error) {
	schemas, err := r.remote.ListFormSchemas(ctx)
	if err != nil {
		slog.Warn("session: remote schema list failed", "err", err)
		return r.local.ListFormSchemas(ctx)
	}
	return schemas, nil
}

// mergeSessionLists combines remote and local results, letting the local
// mirror win on sessionId collisions since it always holds the latest write.
func mergeSessionLists(remote, local []Session) []Session {
	seen := make(map[string]bool, len(local))
	out := make([]Session, 0, len(remote)+len(local))
	for _, s := range local {
		seen[s.SessionID] = true
		out = append(out, s)
	}
	for _, s := range remote {
		if !seen[s.SessionID] {
			out = append(out, s)
		}
	}
	return out
}

var _ Repository = (*FallbackRepository)(nil)
