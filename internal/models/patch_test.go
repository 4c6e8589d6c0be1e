package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPatch_TriState(t *testing.T) {
	meta := map[string]any{
		"title":       "Alt",
		"summary":     "weg damit",
		"tags":        []any{"a"},
		"reviewNotes": "behalten",
		"draftOf":     "löschen",
	}
	var p Patch
	body := `{"title":"Neu","summary":null,"kapitel":2,"unterkapitel":"3a","status":"draft","draftOf":null,"extra":{"k":1}}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := p.Apply(meta); err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := map[string]any{
		"title":        "Neu",
		"tags":         []any{"a"},
		"kapitel":      float64(2),
		"unterkapitel": "3a",
		"status":       StatusDraft,
		"reviewNotes":  "behalten",
		"extra":        map[string]any{"k": float64(1)},
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("meta mismatch (-want +got):\n%s", diff)
	}
}

func TestPatch_TagsAcceptString(t *testing.T) {
	var p Patch
	if err := json.Unmarshal([]byte(`{"tags":"einzeln"}`), &p); err != nil {
		t.Fatal(err)
	}
	meta := map[string]any{}
	if err := p.Apply(meta); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{"einzeln"}, meta["tags"]); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestPatch_ValidateRejectsUnknownStatus(t *testing.T) {
	cases := []string{
		`{"status":"fertig"}`,
		`{"importance":"urgent"}`,
		`{"urgency":"sofort"}`,
	}
	for _, c := range cases {
		var p Patch
		if err := json.Unmarshal([]byte(c), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", c, err)
		}
		if err := p.Validate(); err == nil {
			t.Errorf("Validate(%s) = nil, want error", c)
		}
	}
}

func TestPatch_BadOrdinal(t *testing.T) {
	var p Patch
	if err := json.Unmarshal([]byte(`{"kapitel":true}`), &p); err == nil {
		t.Error("expected error for boolean kapitel")
	}
}

func TestModuleFromMeta(t *testing.T) {
	meta := map[string]any{
		"title":     "Mut",
		"kapitel":   float64(3),
		"status":    "in-revision",
		"quotes":    []any{"Zitat"},
		"questions": []any{"Frage?"},
	}
	m := ModuleFromMeta("teil-1/mut", meta, "Text")
	if m.Kapitel != "3" || m.Unterkapitel != "" {
		t.Errorf("kapitel = %q unterkapitel = %q", m.Kapitel, m.Unterkapitel)
	}
	if m.Status != StatusRevision {
		t.Errorf("status = %q", m.Status)
	}
	if m.ID != "teil-1/mut" || m.FilePath != "teil-1/mut.md" {
		t.Errorf("id = %q filePath = %q", m.ID, m.FilePath)
	}
	if diff := cmp.Diff([]string{"Zitat"}, m.KeyQuotes); diff != "" {
		t.Errorf("keyQuotes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Frage?"}, m.ReflectionQuestions); diff != "" {
		t.Errorf("reflectionQuestions (-want +got):\n%s", diff)
	}
	if len(m.Tags) != 0 || m.Tags == nil {
		t.Errorf("tags = %#v, want empty non-nil", m.Tags)
	}
}

func TestModuleFromMeta_DefaultsTitleFromSlug(t *testing.T) {
	m := ModuleFromMeta("kapitel-2/ohne-titel", nil, "")
	if m.Title != "ohne-titel" {
		t.Errorf("title = %q", m.Title)
	}
	if m.Status != StatusDraft {
		t.Errorf("status = %q", m.Status)
	}
}

func TestPatch_OrdinalKeepsSpelling(t *testing.T) {
	cases := map[string]any{
		`2`:      float64(2),
		`"2"`:    float64(2),
		`"-1"`:   float64(-1),
		`"02"`:   "02",
		`"1.10"`: "1.10",
		`1.5`:    "1.5",
		`"3a"`:   "3a",
		`" 4 "`:  float64(4),
	}
	for raw, want := range cases {
		var p Patch
		if err := json.Unmarshal([]byte(`{"kapitel":`+raw+`}`), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		meta := map[string]any{}
		if err := p.Apply(meta); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, meta["kapitel"]); diff != "" {
			t.Errorf("kapitel %s (-want +got):\n%s", raw, diff)
		}
	}
}
