package sourcestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/testutil"
)

func testStore(t *testing.T) (*Store, string, *time.Time) {
	t.Helper()
	root, fsys := testutil.TestContent(t)
	s := New(fsys)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, root, &now
}

func TestListAll_CreatesEmptyIndex(t *testing.T) {
	s, root, _ := testStore(t)
	list, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("list = %#v, want empty", list)
	}
	data, err := os.ReadFile(filepath.Join(root, "sources", "index.json"))
	if err != nil {
		t.Fatalf("index file: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("index = %q", data)
	}
}

func TestSave_InsertThenUpdate(t *testing.T) {
	s, _, now := testStore(t)

	created, err := s.Save(models.Source{
		ID:            "s1",
		Title:         "Stoa",
		URL:           "https://example.org/stoa",
		LinkedModules: []string{"a", "b", "a"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if created.Type != models.SourceURL {
		t.Errorf("type = %q", created.Type)
	}
	if created.CreatedAt != "2025-01-02T03:04:05.000Z" || created.UpdatedAt != created.CreatedAt {
		t.Errorf("timestamps = %s / %s", created.CreatedAt, created.UpdatedAt)
	}
	if diff := cmp.Diff([]string{"a", "b"}, created.LinkedModules); diff != "" {
		t.Errorf("linkedModules (-want +got):\n%s", diff)
	}

	*now = now.Add(time.Hour)
	updated, err := s.Save(models.Source{ID: "s1", Title: "Stoa neu", Type: models.SourceNote, CreatedAt: "1999-01-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if updated.CreatedAt != "2025-01-02T03:04:05.000Z" {
		t.Errorf("createdAt changed: %s", updated.CreatedAt)
	}
	if updated.UpdatedAt != "2025-01-02T04:04:05.000Z" {
		t.Errorf("updatedAt = %s", updated.UpdatedAt)
	}

	list, err := s.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "Stoa neu" {
		t.Errorf("list = %+v", list)
	}
}

func TestSave_Validation(t *testing.T) {
	s, _, _ := testStore(t)
	cases := []models.Source{
		{Title: "ohne id"},
		{ID: "x"},
		{ID: "x", Title: "t", Type: "video"},
	}
	for _, c := range cases {
		if _, err := s.Save(c); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Save(%+v) err = %v, want ErrInvalidInput", c, err)
		}
	}
}

func TestGetAndDelete(t *testing.T) {
	s, _, _ := testStore(t)
	for _, id := range []string{"a", "b"} {
		if _, err := s.Save(models.Source{ID: id, Title: id}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Get("b"); err != nil {
		t.Errorf("Get(b): %v", err)
	}
	ok, err := s.Delete("a")
	if err != nil || !ok {
		t.Errorf("Delete(a) = %v, %v", ok, err)
	}
	ok, err = s.Delete("a")
	if err != nil || ok {
		t.Errorf("second Delete(a) = %v, %v", ok, err)
	}
	if _, err := s.Get("a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get(a) err = %v", err)
	}
}

func TestSave_UpdatedAtAdvancesWithRealClock(t *testing.T) {
	_, fsys := testutil.TestContent(t)
	s := New(fsys)

	first, err := s.Save(models.Source{ID: "s1", Title: "Stoa"})
	if err != nil {
		t.Fatal(err)
	}
	prev := first.UpdatedAt
	for i := range 5 {
		next, err := s.Save(models.Source{ID: "s1", Title: fmt.Sprintf("Stoa %d", i)})
		if err != nil {
			t.Fatal(err)
		}
		a, errA := time.Parse(TimeLayout, prev)
		b, errB := time.Parse(TimeLayout, next.UpdatedAt)
		if errA != nil || errB != nil {
			t.Fatalf("parse %q / %q: %v %v", prev, next.UpdatedAt, errA, errB)
		}
		if !b.After(a) {
			t.Errorf("save %d: updatedAt %s did not advance past %s", i, next.UpdatedAt, prev)
		}
		if next.CreatedAt != first.CreatedAt {
			t.Errorf("createdAt changed: %s -> %s", first.CreatedAt, next.CreatedAt)
		}
		prev = next.UpdatedAt
	}
}
