package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/testutil"
)

func TestGet_SeedsDefaults(t *testing.T) {
	root, fsys := testutil.TestContent(t)
	s := New(fsys, "format-settings.json")

	got, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	for _, block := range []string{"subtitle", "haiku", "keypoints", "reflection", "links"} {
		if _, ok := got[block]; !ok {
			t.Errorf("missing block %q", block)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "format-settings.json")); err != nil {
		t.Errorf("settings file not written: %v", err)
	}
}

func TestReplace(t *testing.T) {
	_, fsys := testutil.TestContent(t)
	s := New(fsys, "format-settings.json")

	want := models.FormatSettings{"haiku": {"color": "red"}}
	if err := s.Replace(want); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, err := s.Get()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	if err := s.Replace(nil); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("Replace(nil) err = %v", err)
	}
}
