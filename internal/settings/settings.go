// Package settings persists the per-block format settings as one JSON document.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
)

// Defaults are written when no settings document exists yet.
func Defaults() models.FormatSettings {
	return models.FormatSettings{
		"subtitle": {
			"fontSize": "1.25rem", "color": "#4b5563", "fontWeight": "600", "fontStyle": "normal",
			"textAlign": "left", "marginTop": "0.5rem", "marginBottom": "1.5rem",
		},
		"haiku": {
			"fontSize": "1.1rem", "color": "#374151", "fontWeight": "normal", "fontStyle": "italic",
			"textAlign": "center", "marginTop": "2rem", "marginBottom": "2rem",
		},
		"keypoints": {
			"fontSize": "1rem", "color": "#1f2937", "fontWeight": "normal", "fontStyle": "normal",
			"textAlign": "left", "marginTop": "1.5rem", "marginBottom": "1.5rem",
			"padding": "1rem", "backgroundColor": "#f3f4f6", "borderRadius": "0.5rem",
		},
		"reflection": {
			"fontSize": "1rem", "color": "#1e3a8a", "fontWeight": "normal", "fontStyle": "normal",
			"textAlign": "left", "marginTop": "1.5rem", "marginBottom": "1.5rem",
			"padding": "1rem", "borderLeft": "4px solid #3b82f6",
		},
		"links": {
			"fontSize": "0.9rem", "color": "#6b7280", "fontWeight": "normal", "fontStyle": "normal",
			"textAlign": "left", "marginTop": "2rem", "marginBottom": "1rem",
		},
	}
}

// Store reads and replaces the settings document at name within fsys.
type Store struct {
	fs   storage.Provider
	name string
	mu   sync.Mutex
}

// New creates a settings store for the document name relative to the root of fsys.
func New(fsys storage.Provider, name string) *Store {
	return &Store{fs: fsys, name: name}
}

// Get returns the current settings, seeding the defaults on first use.
func (s *Store) Get() (models.FormatSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.fs.Read(s.name)
	if errors.Is(err, fs.ErrNotExist) {
		def := Defaults()
		return def, s.write(def)
	}
	if err != nil {
		return nil, err
	}
	var out models.FormatSettings
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("settings: decode %s: %w", s.name, err)
	}
	if out == nil {
		out = models.FormatSettings{}
	}
	return out, nil
}

// Replace overwrites the whole settings document.
func (s *Store) Replace(fsettings models.FormatSettings) error {
	if fsettings == nil {
		return fmt.Errorf("%w: settings document is empty", apperr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(fsettings)
}

func (s *Store) write(fsettings models.FormatSettings) error {
	data, err := json.MarshalIndent(fsettings, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	return s.fs.Write(s.name, data)
}
