// Package sourcestore persists research sources as one JSON array in the content root.
package sourcestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
)

// IndexPath is the location of the source list relative to the content root.
const IndexPath = "sources/index.json"

// TimeLayout is the millisecond UTC format of createdAt and updatedAt.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Store reads and writes the source list. Writes within one process are
// serialized; concurrent processes are last-write-wins.
type Store struct {
	fs  storage.Provider
	now func() time.Time
	mu  sync.Mutex
}

// New creates a source store on top of the content storage.
func New(fsys storage.Provider) *Store {
	return &Store{fs: fsys, now: time.Now}
}

// ListAll returns every source. A missing list file is created empty.
func (s *Store) ListAll() ([]models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the source with id.
func (s *Store) Get(id string) (*models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

// Save inserts src or replaces the source with the same id. The creation time
// of an existing source is kept; the update time always advances.
func (s *Store) Save(src models.Source) (*models.Source, error) {
	if src.Type == "" {
		src.Type = models.SourceNote
		if src.URL != "" {
			src.Type = models.SourceURL
		}
	}
	if err := validation.ValidateStruct(&src,
		validation.Field(&src.ID, validation.Required),
		validation.Field(&src.Title, validation.Required),
		validation.Field(&src.Type, validation.In(models.SourceURL, models.SourcePDF, models.SourceNote)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return nil, err
	}

	src.KeyQuotes = nonNil(src.KeyQuotes)
	src.Tags = nonNil(src.Tags)
	src.LinkedModules = dedup(src.LinkedModules)

	idx := -1
	for i := range list {
		if list[i].ID == src.ID {
			idx = i
			break
		}
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	if idx >= 0 {
		// updatedAt strictly advances, even for saves within one millisecond.
		if prev, err := time.Parse(time.RFC3339Nano, list[idx].UpdatedAt); err == nil && !now.After(prev) {
			now = prev.Add(time.Millisecond)
		}
		src.CreatedAt = list[idx].CreatedAt
		src.UpdatedAt = now.Format(TimeLayout)
		list[idx] = src
	} else {
		src.CreatedAt = now.Format(TimeLayout)
		src.UpdatedAt = src.CreatedAt
		list = append(list, src)
	}
	if err := s.store(list); err != nil {
		return nil, err
	}
	return &src, nil
}

// Delete removes the source with id and reports whether it existed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return false, err
	}
	out := list[:0]
	found := false
	for _, src := range list {
		if src.ID == id {
			found = true
			continue
		}
		out = append(out, src)
	}
	if !found {
		return false, nil
	}
	return true, s.store(out)
}

func (s *Store) load() ([]models.Source, error) {
	data, err := s.fs.Read(IndexPath)
	if errors.Is(err, fs.ErrNotExist) {
		list := []models.Source{}
		return list, s.store(list)
	}
	if err != nil {
		return nil, err
	}
	var list []models.Source
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("sourcestore: decode %s: %w", IndexPath, err)
	}
	if list == nil {
		list = []models.Source{}
	}
	return list, nil
}

func (s *Store) store(list []models.Source) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("sourcestore: encode: %w", err)
	}
	return s.fs.Write(IndexPath, data)
}

func dedup(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
