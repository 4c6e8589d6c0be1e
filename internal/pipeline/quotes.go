package pipeline

import (
	"context"
	"fmt"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/provider"
)

// Quote is a found quotation.
type Quote struct {
	Text    string `json:"text"`
	Author  string `json:"author"`
	Context string `json:"context"`
}

// QuotesResult lists quotations on a topic.
type QuotesResult struct {
	Quotes []Quote `json:"quotes"`
}

// SearchQuotes finds German quotations on topic through the search provider.
func (o *Orchestrator) SearchQuotes(ctx context.Context, topic string) (*QuotesResult, error) {
	v, err := askJSON[QuotesResult](ctx, o, o.searcher, "quotes.search", quoteSearchPrompt, "Thema: "+topic, provider.Request{})
	if err != nil {
		return nil, fmt.Errorf("quotes search: %w", err)
	}
	v.Quotes = nonNil(v.Quotes)
	return &v, nil
}

// VerifyResult is the attribution check of a quotation. Correction is nil when
// the attribution is right.
type VerifyResult struct {
	IsCorrect  bool    `json:"isCorrect"`
	Correction *string `json:"correction"`
	Author     string  `json:"author"`
	Origin     string  `json:"origin"`
	Context    string  `json:"context"`
}

// VerifyQuote checks who said quote and where.
func (o *Orchestrator) VerifyQuote(ctx context.Context, quote string) (*VerifyResult, error) {
	v, err := askJSON[VerifyResult](ctx, o, o.searcher, "quotes.verify", quoteVerifyPrompt,
		fmt.Sprintf("Zu prüfendes Zitat: %q", quote), provider.Request{})
	if err != nil {
		return nil, fmt.Errorf("quotes verify: %w", err)
	}
	return &v, nil
}

// AvailabilityResult tells whether a title is already taken.
type AvailabilityResult struct {
	IsAvailable   bool     `json:"isAvailable"`
	SimilarTitles []string `json:"similarTitles"`
	Verdict       string   `json:"verdict"`
}

// TitleAvailability searches for published works carrying title.
func (o *Orchestrator) TitleAvailability(ctx context.Context, title string) (*AvailabilityResult, error) {
	v, err := askJSON[struct {
		IsAvailable   bool              `json:"isAvailable"`
		SimilarTitles models.StringList `json:"similarTitles"`
		Verdict       string            `json:"verdict"`
	}](ctx, o, o.searcher, "title-availability", titleAvailabilityPrompt, "Titel: "+title, provider.Request{})
	if err != nil {
		return nil, fmt.Errorf("title availability: %w", err)
	}
	return &AvailabilityResult{
		IsAvailable:   v.IsAvailable,
		SimilarTitles: strs(v.SimilarTitles),
		Verdict:       v.Verdict,
	}, nil
}
