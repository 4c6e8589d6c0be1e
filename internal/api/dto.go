package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/pipeline"
)

// CreateModuleRequest is the request body for creating a module.
type CreateModuleRequest struct {
	Title       string       `json:"title" example:"Lernen durch Lehren"`
	Content     string       `json:"content" example:"# Einleitung"`
	Frontmatter models.Patch `json:"frontmatter"`
}

// SaveModuleRequest is the request body for saving a module. Content may be
// empty but must be present.
type SaveModuleRequest struct {
	Content     *string      `json:"content"`
	Frontmatter models.Patch `json:"frontmatter"`
}

func (r SaveModuleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.NotNil),
	)
}

// ModuleListResponse wraps module listings.
type ModuleListResponse struct {
	Modules []models.Module `json:"modules"`
	Total   int             `json:"total"`
}

// MutationResponse acknowledges a write.
type MutationResponse struct {
	Success bool   `json:"success"`
	Slug    string `json:"slug,omitempty"`
}

// ContentRequest carries the document text for single-input AI pipelines.
type ContentRequest struct {
	Content string `json:"content"`
}

func (r ContentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// ReferencesRequest asks for cross-references from one module to the others.
type ReferencesRequest struct {
	Content   string `json:"content"`
	CurrentID string `json:"currentId"`
}

func (r ReferencesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// Quote actions.
const (
	QuoteActionSearch = "search"
	QuoteActionVerify = "verify"
)

// QuotesRequest either searches quotes on a topic or verifies one quote.
type QuotesRequest struct {
	Action string `json:"action"`
	Query  string `json:"query"`
	Quote  string `json:"quote"`
}

func (r QuotesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Action, validation.Required, validation.In(QuoteActionSearch, QuoteActionVerify)),
		validation.Field(&r.Query, validation.When(r.Action == QuoteActionSearch, validation.Required)),
		validation.Field(&r.Quote, validation.When(r.Action == QuoteActionVerify, validation.Required)),
	)
}

// DialecticRequest carries the thesis to challenge.
type DialecticRequest struct {
	Thesis string `json:"thesis"`
}

func (r DialecticRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Thesis, validation.Required),
	)
}

// PersonaFeedbackRequest asks one persona to react to content.
type PersonaFeedbackRequest struct {
	Content   string `json:"content"`
	PersonaID string `json:"personaId"`
}

func (r PersonaFeedbackRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.PersonaID, validation.Required),
	)
}

// TitleAvailabilityRequest carries a candidate book title.
type TitleAvailabilityRequest struct {
	Title string `json:"title"`
}

func (r TitleAvailabilityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
	)
}

// OptimizeRequest asks for a rewritten research query.
type OptimizeRequest struct {
	Input string `json:"input"`
	Mode  string `json:"mode"`
}

func (r OptimizeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Input, validation.Required),
		validation.Field(&r.Mode, validation.Required),
	)
}

// SearchRequest runs a web-grounded research query.
type SearchRequest struct {
	Query string `json:"query"`
	Focus string `json:"focus"`
}

func (r SearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required),
		validation.Field(&r.Focus, validation.In(pipeline.FocusAcademic, pipeline.FocusPractical)),
	)
}

// QueryRequest optimizes input and searches with the result.
type QueryRequest struct {
	Input string `json:"input"`
	Mode  string `json:"mode"`
	Focus string `json:"focus"`
}

func (r QueryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Input, validation.Required),
		validation.Field(&r.Mode, validation.Required),
		validation.Field(&r.Focus, validation.In(pipeline.FocusAcademic, pipeline.FocusPractical)),
	)
}

// ExtractRequest names a web page to turn into readable text.
type ExtractRequest struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func (r ExtractRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.In(string(models.SourceURL))),
		validation.Field(&r.URL, validation.Required),
	)
}

// SummarizeRequest carries a source text to summarize.
type SummarizeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r SummarizeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// ImportRequest extracts, summarizes and stores a web page as a source.
type ImportRequest struct {
	URL           string   `json:"url"`
	LinkedModules []string `json:"linkedModules"`
}

func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required),
	)
}

// DeleteSourceRequest names the source to delete.
type DeleteSourceRequest struct {
	ID string `json:"id"`
}

func (r DeleteSourceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
	)
}

// SearchResponse wraps index search hits.
type SearchResponse struct {
	Results any `json:"results"`
}
