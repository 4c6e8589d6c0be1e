// Package pipeline runs the prompt pipelines of the writing studio against a
// reasoning provider and a search-grounded provider.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/provider"
)

// Character budgets applied to document bodies before they are sent.
const (
	budgetTags       = 2000
	budgetTitles     = 2000
	budgetStyle      = 3000
	budgetReferences = 3000
	budgetFeedback   = 4000
	budgetMetadata   = 4000
	budgetPersona    = 8000
	budgetSummarize  = 12000
)

// Stage names reported by multi-stage pipelines.
const (
	StageOptimize   = "optimize"
	StageSearch     = "search"
	StageAntithesis = "antithesis"
	StageSynthesis  = "synthesis"
	StageExtract    = "extract"
	StageSummarize  = "summarize"
	StageSave       = "save"
)

// StageError names the stage of a multi-stage pipeline that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Orchestrator runs pipelines. Reasoner is the general completion provider,
// Searcher the web-search-grounded one that returns citations.
type Orchestrator struct {
	reasoner  provider.Completer
	searcher  provider.Completer
	extractor Extractor
	sources   SourceSaver
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithImport enables the research import pipeline.
func WithImport(ex Extractor, sources SourceSaver) Option {
	return func(o *Orchestrator) {
		o.extractor = ex
		o.sources = sources
	}
}

// New creates an orchestrator.
func New(reasoner, searcher provider.Completer, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{reasoner: reasoner, searcher: searcher, logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ask sends a system prompt and user content and returns the raw answer.
func (o *Orchestrator) ask(ctx context.Context, p provider.Completer, name, system, user string, req provider.Request) (*provider.Completion, error) {
	req.Messages = []provider.Message{
		provider.System(system + "\n\n" + germanOnly),
		provider.User(user),
	}
	out, err := p.Complete(ctx, req)
	if err != nil {
		o.logger.Error("pipeline call failed",
			slog.String("pipeline", name),
			slog.String("error", err.Error()))
		return nil, err
	}
	return out, nil
}

// askJSON sends a structured request and decodes the answer into T. An answer
// that does not decode yields the zero value, logged but not returned as error.
func askJSON[T any](ctx context.Context, o *Orchestrator, p provider.Completer, name, system, user string, req provider.Request) (T, error) {
	var zero T
	req.JSON = true
	out, err := o.ask(ctx, p, name, system, user, req)
	if err != nil {
		return zero, err
	}
	v, ok := decodeJSON[T](out.Content)
	if !ok {
		o.logger.Warn("unparseable provider answer, using defaults",
			slog.String("pipeline", name),
			slog.Int("length", len(out.Content)))
	}
	return v, nil
}

func decodeJSON[T any](content string) (T, bool) {
	var v T
	if err := json.Unmarshal([]byte(stripFences(content)), &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// stripFences removes a surrounding markdown code fence such as ```json ... ```.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func strs(l models.StringList) []string {
	return nonNil([]string(l))
}
