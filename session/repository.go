package session

import (
	"context"

	"github.com/bytedance/sonic"
)

// Criteria is an equality filter: a record matches when every key compares
// equal to the record's JSON field of the same name.
type Criteria map[string]any

// Repository is the narrow persistence contract the conversation layer
// depends on. Updates are merge patches keyed by sessionId: absent keys keep
// their stored value.
type Repository interface {
	ListSessions(ctx context.Context) ([]Session, error)
	FilterSessions(ctx context.Context, criteria Criteria) ([]Session, error)
	CreateSession(ctx context.Context, record Session) error
	UpdateSession(ctx context.Context, sessionID string, updates map[string]any) error

	ListProcesses(ctx context.Context) ([]Process, error)
	FilterProcesses(ctx context.Context, criteria Criteria) ([]Process, error)

	ListFormSchemas(ctx context.Context) ([]FormSchemaRecord, error)
}

// matches applies a Criteria to a record by comparing through its JSON form,
// which keeps filter semantics identical for every backend.
func matches(record any, criteria Criteria) bool {
	if len(criteria) == 0 {
		return true
	}
	raw, err := sonic.Marshal(record)
	if err != nil {
		return false
	}
	var asMap map[string]any
	if err := sonic.Unmarshal(raw, &asMap); err != nil {
		return false
	}
	for key, expected := range criteria {
		actual, ok := asMap[key]
		if !ok {
			return false
		}
		expectedJSON, err := sonic.Marshal(expected)
		if err != nil {
			return false
		}
		actualJSON, err := sonic.Marshal(actual)
		if err != nil {
			return false
		}
		if string(expectedJSON) != string(actualJSON) {
			return false
		}
	}
	return true
}
