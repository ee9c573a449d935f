package rules

import (
	"reflect"
	"testing"

	callvu "github.com/doronro/call-vu-management-studio"
)

func fixtureFields() []callvu.Field {
	return []callvu.Field{
		{ID: "channel", Type: callvu.FieldRadioInput, BlockID: "b1"},
		{ID: "phoneNumber", Type: callvu.FieldTextInput, BlockID: "b2"},
		{ID: "phoneTime", Type: callvu.FieldDropdownInput, BlockID: "b2"},
		{ID: "comments", Type: callvu.FieldTextArea, BlockID: "b3"},
	}
}

func fixtureVisibility() (map[string]bool, map[string]bool) {
	blocks := map[string]bool{"b1": true, "b2": false, "b3": true}
	fields := map[string]bool{"channel": true, "phoneNumber": false, "phoneTime": false, "comments": true}
	return blocks, fields
}

func showRule(when string, is any, target string) *callvu.Rule {
	return &callvu.Rule{
		Type:      "visibility",
		Condition: &callvu.Condition{When: when, Is: is},
		Actions:   []*callvu.Action{{ElementIdentifier: target, Action: "show"}},
	}
}

func TestApplyShowPropagatesToBlockFields(t *testing.T) {
	t.Parallel()
	blocks, fieldsVis := fixtureVisibility()
	formData := map[string]any{"channel": "phone"}

	newBlocks, newFields := Apply([]*callvu.Rule{showRule("channel", "phone", "b2")}, formData, blocks, fieldsVis, fixtureFields())

	if !newBlocks["b2"] {
		t.Error("expected block b2 shown")
	}
	if !newFields["phoneNumber"] || !newFields["phoneTime"] {
		t.Error("expected block visibility to propagate to member fields")
	}
}

func TestApplyShowUnmetHidesTarget(t *testing.T) {
	t.Parallel()
	blocks, fieldsVis := fixtureVisibility()
	formData := map[string]any{"channel": "email"}

	newBlocks, newFields := Apply([]*callvu.Rule{showRule("channel", "phone", "b2")}, formData, blocks, fieldsVis, fixtureFields())

	if newBlocks["b2"] {
		t.Error("expected block b2 hidden while the condition is unmet")
	}
	if newFields["phoneNumber"] {
		t.Error("expected member field hidden while the condition is unmet")
	}
}

func TestApplyHideAction(t *testing.T) {
	t.Parallel()
	blocks, fieldsVis := fixtureVisibility()
	rule := &callvu.Rule{
		Type:      "visibility",
		Condition: &callvu.Condition{When: "channel", Is: "none"},
		Actions:   []*callvu.Action{{ElementIdentifier: "comments", Action: "hide"}},
	}

	_, newFields := Apply([]*callvu.Rule{rule}, map[string]any{"channel": "none"}, blocks, fieldsVis, fixtureFields())
	if newFields["comments"] {
		t.Error("expected comments hidden when the hide condition is met")
	}

	_, newFields = Apply([]*callvu.Rule{rule}, map[string]any{"channel": "email"}, blocks, fieldsVis, fixtureFields())
	if !newFields["comments"] {
		t.Error("expected comments visible when the hide condition is unmet")
	}
}

func TestApplyLastRuleWins(t *testing.T) {
	t.Parallel()
	blocks, fieldsVis := fixtureVisibility()
	formData := map[string]any{"channel": "phone"}
	ruleList := []*callvu.Rule{
		showRule("channel", "phone", "b2"),
		{
			Type:      "visibility",
			Condition: &callvu.Condition{When: "channel", Is: "phone"},
			Actions:   []*callvu.Action{{ElementIdentifier: "b2", Action: "hide"}},
		},
	}

	newBlocks, _ := Apply(ruleList, formData, blocks, fieldsVis, fixtureFields())
	if newBlocks["b2"] {
		t.Error("expected the later rule's hide to override the earlier show")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()
	blocks, fieldsVis := fixtureVisibility()
	formData := map[string]any{"channel": "phone"}
	ruleList := []*callvu.Rule{showRule("channel", "phone", "b2")}
	fields := fixtureFields()

	b1, f1 := Apply(ruleList, formData, blocks, fieldsVis, fields)
	b2, f2 := Apply(ruleList, formData, b1, f1, fields)

	if !reflect.DeepEqual(b1, b2) || !reflect.DeepEqual(f1, f2) {
		t.Error("re-applying the same rules over their own output changed the result")
	}
	if blocks["b2"] {
		t.Error("input maps must not be mutated")
	}
}

func TestApplySkipsMalformedRules(t *testing.T) {
	t.Parallel()
	blocks, fieldsVis := fixtureVisibility()
	ruleList := []*callvu.Rule{
		nil,
		{Type: "visibility"},
		{Type: "visibility", Condition: &callvu.Condition{When: "channel", Is: "phone"}},
	}

	newBlocks, newFields := Apply(ruleList, map[string]any{"channel": "phone"}, blocks, fieldsVis, fixtureFields())
	if !reflect.DeepEqual(newBlocks, blocks) || !reflect.DeepEqual(newFields, fieldsVis) {
		t.Error("malformed rules must leave visibility untouched")
	}
}

func TestConditionMet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cond     *callvu.Condition
		formData map[string]any
		want     bool
	}{
		{"string equality", &callvu.Condition{When: "a", Is: "x"}, map[string]any{"a": "x"}, true},
		{"string inequality", &callvu.Condition{When: "a", Is: "x"}, map[string]any{"a": "y"}, false},
		{"missing answer", &callvu.Condition{When: "a", Is: "x"}, map[string]any{}, false},
		{"membership", &callvu.Condition{When: "a", Is: []any{"x", "y"}}, map[string]any{"a": "y"}, true},
		{"non-member", &callvu.Condition{When: "a", Is: []any{"x", "y"}}, map[string]any{"a": "z"}, false},
		{"numeric string vs JSON number", &callvu.Condition{When: "a", Is: float64(5)}, map[string]any{"a": "5"}, true},
		{"number vs number", &callvu.Condition{When: "a", Is: float64(5)}, map[string]any{"a": 5}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ConditionMet(tc.cond, tc.formData); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
