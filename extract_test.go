package callvu

import (
	"reflect"
	"testing"
)

const intakeSchema = `{
  "form": {
    "formName": "Support Intake",
    "title": "Support",
    "globalVariables": [
      {"integrationID": "agentName", "value": "Dana"},
      {"integrationID": "emptyVar", "value": ""}
    ],
    "newRules": [
      {
        "type": "visibility",
        "condition": {"when": "channel", "is": "phone"},
        "actions": [{"elementIdentifier": "b2", "action": "show"}]
      },
      {
        "type": "updating",
        "condition": {"when": "channel", "is": "email"},
        "actions": [{"elementIdentifier": "comments", "action": "update", "properties": {"label": "Anything to add by email"}}]
      }
    ],
    "steps": [
      {
        "identifier": "step1",
        "stepName": "Contact",
        "blocks": [
          {
            "identifier": "b1",
            "blockName": "Your details",
            "rows": [
              {"fields": [{"identifier": "name", "type": "textInput", "label": "What is your name", "required": true, "integrationID": "customer_name"}]},
              {"fields": [{"identifier": "channel", "type": "radioInput", "label": "How should we reach you?", "items": [
                {"value": "email", "label": "Email"},
                {"value": "phone", "label": "Phone"}
              ]}]}
            ]
          },
          {
            "identifier": "b2",
            "blockName": "Phone details",
            "hidden": true,
            "rows": [
              {"fields": [{"identifier": "phoneNumber", "type": "textInput", "label": "What is your phone number"}]}
            ]
          }
        ]
      },
      {
        "identifier": "step2",
        "stepName": "Feedback",
        "blocks": [
          {
            "identifier": "b3",
            "rows": [
              {"fields": [{"identifier": "comments", "type": "textArea", "label": "Any comments"}]}
            ]
          }
        ]
      }
    ]
  }
}`

func parseIntake(t *testing.T) *Extraction {
	t.Helper()
	doc, err := ParseSchema([]byte(intakeSchema))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return Extract(doc)
}

func TestExtractFlattensInDocumentOrder(t *testing.T) {
	t.Parallel()
	ext := parseIntake(t)

	wantIDs := []string{"b1_title", "name", "channel", "phoneNumber", "comments"}
	if len(ext.Fields) != len(wantIDs) {
		t.Fatalf("expected %d fields, got %d", len(wantIDs), len(ext.Fields))
	}
	for i, id := range wantIDs {
		if ext.Fields[i].ID != id {
			t.Errorf("field %d: expected %q, got %q", i, id, ext.Fields[i].ID)
		}
	}

	if len(ext.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(ext.Sections))
	}
	if ext.Sections[0].ID != "Contact" || ext.Sections[1].ID != "Feedback" {
		t.Errorf("unexpected section ids: %q, %q", ext.Sections[0].ID, ext.Sections[1].ID)
	}
	if ext.Sections[0].Next != "Feedback" {
		t.Errorf("expected first section's Next to be Feedback, got %q", ext.Sections[0].Next)
	}
	if ext.Sections[0].Identifier != "step1" {
		t.Errorf("expected section identifier step1, got %q", ext.Sections[0].Identifier)
	}
}

func TestExtractSyntheticBlockTitle(t *testing.T) {
	t.Parallel()
	ext := parseIntake(t)

	title := ext.Fields[0]
	if title.Type != FieldParagraph {
		t.Errorf("expected synthetic title to be a paragraph, got %q", title.Type)
	}
	if title.Label != "Your details" {
		t.Errorf("expected title label 'Your details', got %q", title.Label)
	}
	if title.ParagraphText() != "Your details" {
		t.Errorf("expected title text 'Your details', got %q", title.ParagraphText())
	}

	// The hidden block is named but must not introduce itself.
	for _, f := range ext.Fields {
		if f.ID == "b2_title" {
			t.Error("hidden block produced a synthetic title field")
		}
	}
}

func TestExtractVisibilitySeeds(t *testing.T) {
	t.Parallel()
	ext := parseIntake(t)

	if !ext.BlockVisibility["b1"] {
		t.Error("expected block b1 visible at start")
	}
	if ext.BlockVisibility["b2"] {
		t.Error("expected hidden block b2 invisible at start")
	}
	if ext.FieldVisibility["phoneNumber"] {
		t.Error("expected field inside hidden block invisible at start")
	}
	if !ext.FieldVisibility["name"] {
		t.Error("expected field name visible at start")
	}
}

func TestExtractRulesAndGlobals(t *testing.T) {
	t.Parallel()
	ext := parseIntake(t)

	if len(ext.VisibilityRules) != 1 {
		t.Errorf("expected 1 visibility rule, got %d", len(ext.VisibilityRules))
	}
	if len(ext.UpdatingRules) != 1 {
		t.Errorf("expected 1 updating rule, got %d", len(ext.UpdatingRules))
	}
	if ext.GlobalVariables["agentName"] != "Dana" {
		t.Errorf("expected global agentName=Dana, got %q", ext.GlobalVariables["agentName"])
	}
}

func TestExtractIntegrationIDFallback(t *testing.T) {
	t.Parallel()
	ext := parseIntake(t)

	var name, channel *Field
	for i := range ext.Fields {
		switch ext.Fields[i].ID {
		case "name":
			name = &ext.Fields[i]
		case "channel":
			channel = &ext.Fields[i]
		}
	}
	if name == nil || channel == nil {
		t.Fatal("fixture fields missing")
	}
	if name.IntegrationID != "customer_name" {
		t.Errorf("expected explicit integrationID, got %q", name.IntegrationID)
	}
	if channel.IntegrationID != "channel" {
		t.Errorf("expected integrationID to default to identifier, got %q", channel.IntegrationID)
	}
}

func TestExtractDeterministic(t *testing.T) {
	t.Parallel()
	doc, err := ParseSchema([]byte(intakeSchema))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	first := Extract(doc)
	second := Extract(doc)
	if !reflect.DeepEqual(first, second) {
		t.Error("two extractions of the same document differ")
	}
}

func TestExtractEmptyAndMalformed(t *testing.T) {
	t.Parallel()

	if ext := Extract(nil); !ext.Empty() {
		t.Error("nil document should extract to empty")
	}
	if ext := Extract(&Document{}); !ext.Empty() {
		t.Error("document without form should extract to empty")
	}

	doc, err := ParseSchema([]byte(`{"form": {"steps": []}}`))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	if ext := Extract(doc); !ext.Empty() {
		t.Error("form without steps should extract to empty")
	}

	// Fields without identifier or type are dropped, not fatal.
	doc, err = ParseSchema([]byte(`{"form": {"steps": [
		{"identifier": "s1", "stepName": "Only", "blocks": [
			{"identifier": "b1", "rows": [
				{"fields": [{"label": "no identifier"}, {"identifier": "ok", "type": "textInput", "label": "Fine"}]}
			]}
		]}
	]}}`))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	ext := Extract(doc)
	if len(ext.Fields) != 1 || ext.Fields[0].ID != "ok" {
		t.Fatalf("expected only the well-formed field to survive, got %+v", ext.Fields)
	}
}

func TestFormName(t *testing.T) {
	t.Parallel()

	if got := (&Form{FormName: "A", Title: "B"}).Name(); got != "A" {
		t.Errorf("expected formName to win, got %q", got)
	}
	if got := (&Form{Title: "B"}).Name(); got != "B" {
		t.Errorf("expected title fallback, got %q", got)
	}
	if got := (&Form{}).Name(); got != "Form" {
		t.Errorf("expected default name, got %q", got)
	}
}
