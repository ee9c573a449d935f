package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
)

// RemoteRepository talks to the hosted entity backend over its REST surface:
// one collection per entity type under /apps/{appID}/entities, filters as
// query parameters, updates as PATCH merge bodies.
type RemoteRepository struct {
	baseURL string
	appID   string
	client  *http.Client
}

type RemoteConfig struct {
	BaseURL string `json:"base_url"`
	AppID   string `json:"app_id"`
	// Timeout guards every request; zero means 15 seconds.
	Timeout time.Duration `json:"-"`
}

func NewRemoteRepository(conf RemoteConfig) *RemoteRepository {
	timeout := conf.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &RemoteRepository{
		baseURL: conf.BaseURL,
		appID:   conf.AppID,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *RemoteRepository) ListSessions(ctx context.Context) ([]Session, error) {
	var out []Session
	err := r.get(ctx, "Session", nil, &out)
	return out, err
}

func (r *RemoteRepository) FilterSessions(ctx context.Context, criteria Criteria) ([]Session, error) {
	var out []Session
	err := r.get(ctx, "Session", criteria, &out)
	return out, err
}

func (r *RemoteRepository) CreateSession(ctx context.Context, record Session) error {
	return r.send(ctx, http.MethodPost, "Session", "", record)
}

func (r *RemoteRepository) UpdateSession(ctx context.Context, sessionID string, updates map[string]any) error {
	return r.send(ctx, http.MethodPatch, "Session", sessionID, updates)
}

func (r *RemoteRepository) ListProcesses(ctx context.Context) ([]Process, error) {
	var out []Process
	err := r.get(ctx, "Process", nil, &out)
	return out, err
}

func (r *RemoteRepository) FilterProcesses(ctx context.Context, criteria Criteria) ([]Process, error) {
	var out []Process
	err := r.get(ctx, "Process", criteria, &out)
	return out, err
}

func (r *RemoteRepository) ListFormSchemas(ctx context.Context) ([]FormSchemaRecord, error) {
	var out []FormSchemaRecord
	err := r.get(ctx, "FormSchema", nil, &out)
	return out, err
}

func (r *RemoteRepository) entityURL(entity, id string) string {
	u := fmt.Sprintf("%s/apps/%s/entities/%s", r.baseURL, r.appID, entity)
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (r *RemoteRepository) get(ctx context.Context, entity string, criteria Criteria, out any) error {
	endpoint := r.entityURL(entity, "")
	if len(criteria) > 0 {
		query := url.Values{}
		for key, value := range criteria {
			raw, err := sonic.Marshal(value)
			if err != nil {
				return fmt.Errorf("encode filter %q: %w", key, err)
			}
			text := string(raw)
			if len(text) >= 2 && text[0] == '"' {
				text = text[1 : len(text)-1]
			}
			query.Set(key, text)
		}
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s list failed: %w", entity, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s list failed: status %d", entity, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", entity, err)
	}
	return nil
}

func (r *RemoteRepository) send(ctx context.Context, method, entity, id string, payload any) error {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", entity, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.entityURL(entity, id), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", entity, method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: status %d", entity, method, resp.StatusCode)
	}
	return nil
}

var _ Repository = (*RemoteRepository)(nil)
