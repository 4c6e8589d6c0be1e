package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/provider"
)

// Research modes.
const (
	ModeKeywords    = "keywords"
	ModeQuestion    = "question"
	ModeDialectical = "dialectical"
	ModeAuthor      = "author"
	ModeWork        = "work"
	ModeFactCheck   = "fact-check"
)

// Research focus hints.
const (
	FocusAcademic  = "academic"
	FocusPractical = "practical"
)

// Modes lists the research modes.
var Modes = []string{ModeKeywords, ModeQuestion, ModeDialectical, ModeAuthor, ModeWork, ModeFactCheck}

// NormalizeMode resolves aliases and reports whether mode is known.
func NormalizeMode(mode string) (string, bool) {
	m := strings.ToLower(strings.TrimSpace(mode))
	switch m {
	case "dialectic":
		m = ModeDialectical
	case "factcheck", "fact_check":
		m = ModeFactCheck
	}
	_, ok := modePrompts[m]
	return m, ok
}

// Extractor turns a URL into readable text.
type Extractor interface {
	Extract(ctx context.Context, url string) (*extract.Article, error)
}

// SourceSaver stores research sources.
type SourceSaver interface {
	Save(src models.Source) (*models.Source, error)
}

// OptimizeResult is a rewritten research query.
type OptimizeResult struct {
	Original  string `json:"original"`
	Optimized string `json:"optimized"`
	Mode      string `json:"mode"`
}

// Optimize rewrites input into an academic query for mode. An empty answer
// falls back to the input.
func (o *Orchestrator) Optimize(ctx context.Context, input, mode string) (*OptimizeResult, error) {
	m, ok := NormalizeMode(mode)
	if !ok {
		return nil, fmt.Errorf("%w: unknown mode %q", apperr.ErrInvalidInput, mode)
	}
	out, err := o.ask(ctx, o.reasoner, "research.optimize", modePrompts[m]+"\n"+optimizeSuffix, input, provider.Request{
		Temperature: provider.Temperature(0.7),
		MaxTokens:   500,
	})
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	optimized := strings.TrimSpace(out.Content)
	if optimized == "" {
		optimized = input
	}
	return &OptimizeResult{Original: input, Optimized: optimized, Mode: m}, nil
}

// SearchResult is a sourced research answer.
type SearchResult struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
	Model     string   `json:"model"`
}

// Search answers query through the search provider. Focus narrows the kind of
// literature; unknown values are ignored.
func (o *Orchestrator) Search(ctx context.Context, query, focus string) (*SearchResult, error) {
	system := researchPrompt
	switch focus {
	case FocusAcademic:
		system += "\n\n" + focusAcademic
	case FocusPractical:
		system += "\n\n" + focusPractical
	}
	out, err := o.ask(ctx, o.searcher, "research.search", system, query, provider.Request{})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return &SearchResult{Answer: out.Content, Citations: nonNil(out.Citations), Model: out.Model}, nil
}

// QueryResult is the outcome of optimize-then-search.
type QueryResult struct {
	OptimizeResult
	SearchResult
}

// Query optimizes input for mode and sends the optimized query to the search provider.
func (o *Orchestrator) Query(ctx context.Context, input, mode, focus string) (*QueryResult, error) {
	opt, err := o.Optimize(ctx, input, mode)
	if err != nil {
		return nil, &StageError{Stage: StageOptimize, Err: err}
	}
	res, err := o.Search(ctx, opt.Optimized, focus)
	if err != nil {
		return nil, &StageError{Stage: StageSearch, Err: err}
	}
	return &QueryResult{OptimizeResult: *opt, SearchResult: *res}, nil
}

// SummaryResult condenses a research text.
type SummaryResult struct {
	Summary   string   `json:"summary"`
	KeyQuotes []string `json:"keyQuotes"`
	Tags      []string `json:"tags"`
}

// Summarize extracts summary, key quotes and tags from content.
func (o *Orchestrator) Summarize(ctx context.Context, title, content string) (*SummaryResult, error) {
	if title == "" {
		title = "Unbekannt"
	}
	user := fmt.Sprintf("Titel: %s\n\nInhalt:\n%s", title, truncate(content, budgetSummarize))
	v, err := askJSON[struct {
		Summary   string            `json:"summary"`
		KeyQuotes models.StringList `json:"keyQuotes"`
		Tags      models.StringList `json:"tags"`
	}](ctx, o, o.reasoner, "research.summarize", summarizePrompt, user, provider.Request{})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	return &SummaryResult{Summary: v.Summary, KeyQuotes: strs(v.KeyQuotes), Tags: strs(v.Tags)}, nil
}

// Extract fetches url and returns its readable text.
func (o *Orchestrator) Extract(ctx context.Context, url string) (*extract.Article, error) {
	if o.extractor == nil {
		return nil, fmt.Errorf("%w: extraction is not configured", apperr.ErrInvalidInput)
	}
	return o.extractor.Extract(ctx, url)
}

// Import extracts url, summarizes the text and stores it as a new source
// linked to the given modules.
func (o *Orchestrator) Import(ctx context.Context, url string, linkedModules []string) (*models.Source, error) {
	if o.extractor == nil || o.sources == nil {
		return nil, fmt.Errorf("%w: import is not configured", apperr.ErrInvalidInput)
	}
	art, err := o.extractor.Extract(ctx, url)
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	sum, err := o.Summarize(ctx, art.Title, art.Content)
	if err != nil {
		return nil, &StageError{Stage: StageSummarize, Err: err}
	}
	src, err := o.sources.Save(models.Source{
		ID:            "src-" + uuid.NewString(),
		Type:          models.SourceURL,
		Title:         art.Title,
		URL:           url,
		Content:       art.Content,
		Summary:       sum.Summary,
		KeyQuotes:     sum.KeyQuotes,
		Tags:          sum.Tags,
		LinkedModules: linkedModules,
	})
	if err != nil {
		return nil, &StageError{Stage: StageSave, Err: err}
	}
	return src, nil
}
