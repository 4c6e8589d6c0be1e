package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/provider"
)

// TagsResult holds suggested keywords.
type TagsResult struct {
	Tags []string `json:"tags"`
}

// Tags suggests German keywords for content. The provider may answer with an
// object holding "tags" or with a bare array.
func (o *Orchestrator) Tags(ctx context.Context, content string) (*TagsResult, error) {
	out, err := o.ask(ctx, o.reasoner, "tags", tagsPrompt, truncate(content, budgetTags), provider.Request{JSON: true})
	if err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	raw := stripFences(out.Content)
	if obj, ok := decodeJSON[struct {
		Tags models.StringList `json:"tags"`
	}](raw); ok {
		return &TagsResult{Tags: strs(obj.Tags)}, nil
	}
	if list, ok := decodeJSON[[]string](raw); ok {
		return &TagsResult{Tags: nonNil(list)}, nil
	}
	return &TagsResult{Tags: []string{}}, nil
}

// StyleResult is a short style critique.
type StyleResult struct {
	Critique    string   `json:"critique"`
	Suggestions []string `json:"suggestions"`
}

// Style critiques passive voice, nested sentences and repetition.
func (o *Orchestrator) Style(ctx context.Context, content string) (*StyleResult, error) {
	v, err := askJSON[struct {
		Critique    string            `json:"critique"`
		Suggestions models.StringList `json:"suggestions"`
	}](ctx, o, o.reasoner, "style", stylePrompt, truncate(content, budgetStyle), provider.Request{})
	if err != nil {
		return nil, fmt.Errorf("style: %w", err)
	}
	return &StyleResult{Critique: v.Critique, Suggestions: strs(v.Suggestions)}, nil
}

// FeedbackResult is editorial feedback on a chapter. Points are passed through
// as the provider shaped them (strings or small objects).
type FeedbackResult struct {
	Summary string            `json:"summary"`
	Points  []json.RawMessage `json:"points"`
}

// Feedback reviews structure, argument clarity, gaps and engagement.
func (o *Orchestrator) Feedback(ctx context.Context, content string) (*FeedbackResult, error) {
	v, err := askJSON[FeedbackResult](ctx, o, o.reasoner, "feedback", feedbackPrompt, truncate(content, budgetFeedback), provider.Request{})
	if err != nil {
		return nil, fmt.Errorf("feedback: %w", err)
	}
	v.Points = nonNil(v.Points)
	return &v, nil
}

// TitlesResult holds title suggestions.
type TitlesResult struct {
	Titles []string `json:"titles"`
}

// Titles proposes chapter titles.
func (o *Orchestrator) Titles(ctx context.Context, content string) (*TitlesResult, error) {
	v, err := askJSON[struct {
		Titles models.StringList `json:"titles"`
	}](ctx, o, o.reasoner, "titles", titlesPrompt, truncate(content, budgetTitles), provider.Request{})
	if err != nil {
		return nil, fmt.Errorf("titles: %w", err)
	}
	return &TitlesResult{Titles: strs(v.Titles)}, nil
}

// Candidate is a module that may be referenced.
type Candidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Reference is a suggested cross-reference to another module.
type Reference struct {
	TargetID    string `json:"targetId"`
	TargetTitle string `json:"targetTitle"`
	Reason      string `json:"reason"`
}

// ReferencesResult holds cross-reference suggestions.
type ReferencesResult struct {
	References []Reference `json:"references"`
}

// References suggests links from content to the candidate modules. Suggestions
// naming an unknown module id are dropped.
func (o *Orchestrator) References(ctx context.Context, content string, candidates []Candidate) (*ReferencesResult, error) {
	list, err := json.Marshal(nonNil(candidates))
	if err != nil {
		return nil, fmt.Errorf("references: encode candidates: %w", err)
	}
	v, err := askJSON[ReferencesResult](ctx, o, o.reasoner, "references",
		fmt.Sprintf(referencesPrompt, list), truncate(content, budgetReferences), provider.Request{})
	if err != nil {
		return nil, fmt.Errorf("references: %w", err)
	}
	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}
	out := make([]Reference, 0, len(v.References))
	for _, r := range v.References {
		if _, ok := known[r.TargetID]; ok {
			out = append(out, r)
		}
	}
	return &ReferencesResult{References: out}, nil
}

// MetadataResult holds the derived module metadata.
type MetadataResult struct {
	Tags      []string `json:"tags"`
	Summary   string   `json:"summary"`
	Quotes    []string `json:"quotes"`
	Questions []string `json:"questions"`
}

// Metadata derives tags, summary, key quotes and reflection questions.
func (o *Orchestrator) Metadata(ctx context.Context, content string) (*MetadataResult, error) {
	v, err := askJSON[struct {
		Tags      models.StringList `json:"tags"`
		Summary   string            `json:"summary"`
		Quotes    models.StringList `json:"quotes"`
		Questions models.StringList `json:"questions"`
	}](ctx, o, o.reasoner, "metadata", metadataPrompt, truncate(content, budgetMetadata), provider.Request{})
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	return &MetadataResult{
		Tags:      strs(v.Tags),
		Summary:   v.Summary,
		Quotes:    strs(v.Quotes),
		Questions: strs(v.Questions),
	}, nil
}
