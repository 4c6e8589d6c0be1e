package modulestore

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// WordCount counts whitespace-separated words. An empty body has zero words.
func WordCount(body string) int {
	return len(strings.Fields(body))
}

// ComputeStats summarizes progress over mods.
func ComputeStats(mods []models.Module) models.Stats {
	st := models.Stats{TotalModules: len(mods)}
	for _, m := range mods {
		st.TotalWords += WordCount(m.Content)
		if m.Status == models.StatusFinal {
			st.CompletedModules++
		}
	}
	if st.TotalModules > 0 {
		st.Progress = int(math.Round(float64(st.CompletedModules) / float64(st.TotalModules) * 100))
	}
	return st
}

// ComputeMatrix sorts mods into Eisenhower quadrants by importance and urgency.
func ComputeMatrix(mods []models.Module) models.Matrix {
	mx := models.Matrix{
		DoFirst:   []models.Module{},
		Schedule:  []models.Module{},
		Delegate:  []models.Module{},
		Eliminate: []models.Module{},
	}
	for _, m := range mods {
		important := m.Importance == "high"
		urgent := m.Urgency == "high"
		switch {
		case important && urgent:
			mx.DoFirst = append(mx.DoFirst, m)
		case important:
			mx.Schedule = append(mx.Schedule, m)
		case urgent:
			mx.Delegate = append(mx.Delegate, m)
		default:
			mx.Eliminate = append(mx.Eliminate, m)
		}
	}
	return mx
}

// Stats summarizes all modules on disk.
func (s *Store) Stats() (models.Stats, error) {
	mods, err := s.ListAll()
	if err != nil {
		return models.Stats{}, err
	}
	return ComputeStats(mods), nil
}

// Matrix groups all modules on disk into Eisenhower quadrants.
func (s *Store) Matrix() (models.Matrix, error) {
	mods, err := s.ListAll()
	if err != nil {
		return models.Matrix{}, err
	}
	return ComputeMatrix(mods), nil
}

// DownloadChapter concatenates every module of one chapter into a single
// markdown document and returns it with its download file name.
func (s *Store) DownloadChapter(chapter string) (string, string, error) {
	mods, err := s.ListAll()
	if err != nil {
		return "", "", err
	}
	filename, text, ok := AggregateChapter(mods, chapter)
	if !ok {
		return "", "", fmt.Errorf("chapter %s: %w", chapter, apperr.ErrNotFound)
	}
	return filename, text, nil
}

// AggregateChapter renders the modules whose kapitel equals chapter. It
// reports false when no module belongs to the chapter.
func AggregateChapter(mods []models.Module, chapter string) (string, string, bool) {
	var picked []models.Module
	for _, m := range mods {
		if m.Kapitel == chapter {
			picked = append(picked, m)
		}
	}
	if len(picked) == 0 {
		return "", "", false
	}
	sort.SliceStable(picked, func(i, j int) bool {
		return naturalLess(picked[i].Unterkapitel, picked[j].Unterkapitel)
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Kapitel %s\n\n", chapter)
	for _, m := range picked {
		if m.Unterkapitel != "" {
			fmt.Fprintf(&sb, "## %s.%s %s\n\n", m.Kapitel, m.Unterkapitel, m.Title)
		} else {
			fmt.Fprintf(&sb, "## %s\n\n", m.Title)
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return fmt.Sprintf("Kapitel-%s_Complete.md", chapter), sb.String(), true
}
