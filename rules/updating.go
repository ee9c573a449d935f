package rules

import (
	"log/slog"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"

	callvu "github.com/doronro/call-vu-management-studio"
)

// ApplyUpdating applies "updating" rules whose condition is met: each update
// action merges its properties into the target field's property bag as an
// RFC 7386 merge patch (null removes a key, objects merge recursively).
// Visibility is untouched. The input slice is never mutated; a new slice is
// returned so rule evaluation stays idempotent for the caller.
func ApplyUpdating(ruleList []*callvu.Rule, formData map[string]any, fields []callvu.Field) []callvu.Field {
	if len(ruleList) == 0 {
		return fields
	}

	out := make([]callvu.Field, len(fields))
	copy(out, fields)

	index := make(map[string]int, len(out))
	for i := range out {
		index[out[i].ID] = i
	}

	for _, rule := range ruleList {
		if rule == nil || rule.Condition == nil || rule.Condition.When == "" || rule.Condition.Is == nil {
			slog.Warn("rules: skipping malformed updating rule")
			continue
		}
		if !ConditionMet(rule.Condition, formData) {
			continue
		}
		for _, action := range rule.Actions {
			if action == nil || action.Action != "update" || action.ElementIdentifier == "" || len(action.Properties) == 0 {
				continue
			}
			i, ok := index[action.ElementIdentifier]
			if !ok {
				continue
			}
			merged, err := mergeProperties(out[i].Properties, action.Properties)
			if err != nil {
				slog.Warn("rules: updating rule merge failed", "field", action.ElementIdentifier, "err", err)
				continue
			}
			out[i].Properties = merged
			if label, ok := merged["label"].(string); ok && label != "" {
				out[i].Label = label
			}
		}
	}

	return out
}

func mergeProperties(current, patch map[string]any) (map[string]any, error) {
	currentJSON, err := sonic.Marshal(current)
	if err != nil {
		return nil, err
	}
	patchJSON, err := sonic.Marshal(patch)
	if err != nil {
		return nil, err
	}
	mergedJSON, err := jsonpatch.MergePatch(currentJSON, patchJSON)
	if err != nil {
		return nil, err
	}
	var merged map[string]any
	if err := sonic.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, err
	}
	return merged, nil
}
