package models

// SourceType classifies a research source.
type SourceType string

const (
	SourceURL  SourceType = "url"
	SourcePDF  SourceType = "pdf"
	SourceNote SourceType = "note"
)

// Source is a research item referenced while writing modules.
type Source struct {
	ID            string     `json:"id"`
	Type          SourceType `json:"type"`
	Title         string     `json:"title"`
	URL           string     `json:"url,omitempty"`
	Content       string     `json:"content"`
	Summary       string     `json:"summary"`
	KeyQuotes     []string   `json:"keyQuotes"`
	Tags          []string   `json:"tags"`
	LinkedModules []string   `json:"linkedModules"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}

// FormatSettings maps a block type (subtitle, haiku, ...) to its style properties.
type FormatSettings map[string]map[string]string
