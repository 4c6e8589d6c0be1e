// Package models defines the domain types for ansuz.
package models

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// TemplateFile is the reserved file in the content root that is never listed as a module.
const TemplateFile = "template.md"

// DateLayout is the format of the created and updated frontmatter fields.
const DateLayout = "2006-01-02"

// Workflow states as stored in frontmatter.
const (
	StatusDraft    = "entwurf"
	StatusRevision = "überarbeitung"
	StatusFinal    = "final"
)

// Statuses lists the stored workflow states in workflow order.
var Statuses = []string{StatusDraft, StatusRevision, StatusFinal}

// Levels lists the accepted importance and urgency values.
var Levels = []string{"low", "medium", "high"}

// NormalizeStatus maps English aliases onto the stored German values.
// Unknown values are returned lowercased and trimmed so that validation can reject them.
func NormalizeStatus(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "draft":
		return StatusDraft
	case "in-revision", "revision", "ueberarbeitung":
		return StatusRevision
	}
	return v
}

// Module is one writing unit: a markdown file with a metadata block.
type Module struct {
	Slug                string         `json:"slug"`
	FilePath            string         `json:"filePath"`
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Kapitel             string         `json:"kapitel"`
	Unterkapitel        string         `json:"unterkapitel"`
	Status              string         `json:"status"`
	Importance          string         `json:"importance,omitempty"`
	Urgency             string         `json:"urgency,omitempty"`
	Priority            string         `json:"priority,omitempty"`
	Tags                []string       `json:"tags"`
	Summary             string         `json:"summary,omitempty"`
	KeyQuotes           []string       `json:"keyQuotes"`
	ReflectionQuestions []string       `json:"reflectionQuestions"`
	Created             string         `json:"created,omitempty"`
	Updated             string         `json:"updated,omitempty"`
	Content             string         `json:"content"`
	HTMLContent         string         `json:"htmlContent,omitempty"`
	Frontmatter         map[string]any `json:"frontmatter"`
}

// ModuleFromMeta builds a Module from decoded frontmatter and body.
func ModuleFromMeta(slug string, meta map[string]any, body string) Module {
	if meta == nil {
		meta = map[string]any{}
	}
	m := Module{
		Slug:                slug,
		FilePath:            slug + ".md",
		ID:                  Scalar(meta["id"]),
		Title:               Scalar(meta["title"]),
		Kapitel:             Scalar(meta["kapitel"]),
		Unterkapitel:        Scalar(meta["unterkapitel"]),
		Status:              NormalizeStatus(Scalar(meta["status"])),
		Importance:          Scalar(meta["importance"]),
		Urgency:             Scalar(meta["urgency"]),
		Priority:            Scalar(meta["priority"]),
		Tags:                Strings(meta["tags"]),
		Summary:             Scalar(meta["summary"]),
		KeyQuotes:           Strings(meta["quotes"]),
		ReflectionQuestions: Strings(meta["questions"]),
		Created:             Scalar(meta["created"]),
		Updated:             Scalar(meta["updated"]),
		Content:             body,
		Frontmatter:         meta,
	}
	if m.ID == "" {
		m.ID = slug
	}
	if m.Title == "" {
		m.Title = path.Base(slug)
	}
	if m.Status == "" {
		m.Status = StatusDraft
	}
	return m
}

// InitialMeta is the metadata of a module that does not exist on disk yet.
func InitialMeta(slug string, now time.Time) map[string]any {
	return map[string]any{
		"id":      slug,
		"title":   slug,
		"created": now.Format(DateLayout),
	}
}

// Scalar renders a frontmatter value as a string. Numbers lose trailing zeros,
// so a kapitel of 3 becomes "3" whether it was written as a number or a string.
func Scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// Strings converts a frontmatter list (or a single scalar) to a non-nil string slice.
func Strings(v any) []string {
	switch x := v.(type) {
	case nil:
		return []string{}
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s := Scalar(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := Scalar(x); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

// ModuleFile is a lightweight listing entry for a module file on disk.
type ModuleFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats summarizes writing progress across all modules.
type Stats struct {
	TotalWords       int `json:"totalWords"`
	TotalModules     int `json:"totalModules"`
	CompletedModules int `json:"completedModules"`
	Progress         int `json:"progress"`
}

// Matrix groups modules into the four Eisenhower quadrants.
type Matrix struct {
	DoFirst   []Module `json:"doFirst"`
	Schedule  []Module `json:"schedule"`
	Delegate  []Module `json:"delegate"`
	Eliminate []Module `json:"eliminate"`
}
