package session

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

// Notifier announces that a session finished. The hosted frontend posts this
// to its embedding page; headless deployments deliver it as a webhook.
type Notifier interface {
	SessionCompleted(ctx context.Context, sessionID string, formData map[string]any) error
}

type NopNotifier struct{}

func (NopNotifier) SessionCompleted(ctx context.Context, sessionID string, formData map[string]any) error {
	return nil
}

// completedEvent is the wire shape of the completion notification; the type
// tag matches what embedding pages already listen for.
type completedEvent struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId"`
	FormData  map[string]any `json:"formData"`
}

const eventSessionCompleted = "SESSION_COMPLETED"

// WebhookNotifier POSTs the completion event to a configured URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WebhookNotifier) SessionCompleted(ctx context.Context, sessionID string, formData map[string]any) error {
	payload, err := sonic.Marshal(completedEvent{
		Type:      eventSessionCompleted,
		SessionID: sessionID,
		FormData:  formData,
	})
	if err != nil {
		return fmt.Errorf("encode completion event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver completion event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deliver completion event: status %d", resp.StatusCode)
	}
	return nil
}

var (
	_ Notifier = NopNotifier{}
	_ Notifier = (*WebhookNotifier)(nil)
)
