// Package rules evaluates the declarative visibility and updating rules a
// CVUF form attaches to its fields. Evaluation is pure: callers pass the
// current answers and visibility maps in and get fresh maps back, which keeps
// re-runs after every answer idempotent.
package rules

import (
	"log/slog"
	"math"
	"reflect"
	"strconv"

	callvu "github.com/doronro/call-vu-management-studio"
)

// Apply evaluates visibility rules in list order against the current answers.
// A later rule overwrites an earlier rule's effect on the same target; there
// is no conflict detection. Malformed rules are skipped.
//
// When an action targets a block, the resulting visibility propagates to
// every field of that block: block visibility strictly dominates individual
// field flags.
func Apply(ruleList []*callvu.Rule, formData map[string]any, blockVisibility, fieldVisibility map[string]bool, fields []callvu.Field) (map[string]bool, map[string]bool) {
	newBlocks := make(map[string]bool, len(blockVisibility))
	for k, v := range blockVisibility {
		newBlocks[k] = v
	}
	newFields := make(map[string]bool, len(fieldVisibility))
	for k, v := range fieldVisibility {
		newFields[k] = v
	}

	blockIDs := make(map[string]bool, len(newBlocks))
	for id := range newBlocks {
		blockIDs[id] = true
	}
	for i := range fields {
		if fields[i].BlockID != "" {
			blockIDs[fields[i].BlockID] = true
		}
	}

	for _, rule := range ruleList {
		if rule == nil || rule.Condition == nil || rule.Condition.When == "" || rule.Condition.Is == nil || len(rule.Actions) == 0 {
			slog.Warn("rules: skipping malformed visibility rule")
			continue
		}
		met := ConditionMet(rule.Condition, formData)

		for _, action := range rule.Actions {
			if action == nil || action.ElementIdentifier == "" {
				continue
			}
			visible := met
			if action.Action != "show" {
				visible = !met
			}
			if blockIDs[action.ElementIdentifier] {
				newBlocks[action.ElementIdentifier] = visible
				for i := range fields {
					if fields[i].BlockID == action.ElementIdentifier {
						newFields[fields[i].ID] = visible
					}
				}
			} else {
				newFields[action.ElementIdentifier] = visible
			}
		}
	}

	return newBlocks, newFields
}

// ConditionMet reports whether the answer recorded for the condition's field
// equals the expected value, or is a member of it when the expectation is an
// array. Equality and membership are the only operators CVUF expresses.
func ConditionMet(cond *callvu.Condition, formData map[string]any) bool {
	current := formData[cond.When]
	if expected, ok := cond.Is.([]any); ok {
		for _, candidate := range expected {
			if valueEqual(current, candidate) {
				return true
			}
		}
		return false
	}
	return valueEqual(current, cond.Is)
}

// valueEqual compares an answer against a rule value. Answers come from user
// input and rule values from JSON, so "5" and 5.0 must compare equal.
func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	fa, aok := asFloat(a)
	fb, bok := asFloat(b)
	if aok && bok {
		return math.Abs(fa-fb) < 1e-9
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
