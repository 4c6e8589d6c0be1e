package api

import (
	"context"
	"net/http"

	"github.com/starford/ansuz/internal/pipeline"
)

// contentPipeline serves a single-input pipeline (tags, style, feedback,
// titles, metadata) behind a {"content": ...} request.
func contentPipeline[T any](h *Handler, op string, run func(ctx context.Context, content string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ContentRequest
		if !decodeBody(w, r, &req) {
			return
		}
		res, err := run(r.Context(), req.Content)
		if err != nil {
			h.writeError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// References handles POST /api/ai/references. Every module except currentId is a candidate.
func (h *Handler) References(w http.ResponseWriter, r *http.Request) {
	var req ReferencesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	mods, err := h.d.Modules.ListAll()
	if err != nil {
		h.writeError(w, "ai references", err)
		return
	}
	candidates := make([]pipeline.Candidate, 0, len(mods))
	for _, m := range mods {
		if m.Slug == req.CurrentID || m.ID == req.CurrentID {
			continue
		}
		candidates = append(candidates, pipeline.Candidate{ID: m.Slug, Title: m.Title})
	}
	res, err := h.d.Pipeline.References(r.Context(), req.Content, candidates)
	if err != nil {
		h.writeError(w, "ai references", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Quotes handles POST /api/ai/quotes with action "search" or "verify".
func (h *Handler) Quotes(w http.ResponseWriter, r *http.Request) {
	var req QuotesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var (
		res any
		err error
	)
	if req.Action == QuoteActionVerify {
		res, err = h.d.Pipeline.VerifyQuote(r.Context(), req.Quote)
	} else {
		res, err = h.d.Pipeline.SearchQuotes(r.Context(), req.Query)
	}
	if err != nil {
		h.writeError(w, "ai quotes", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// TitleAvailability handles POST /api/ai/title-availability.
func (h *Handler) TitleAvailability(w http.ResponseWriter, r *http.Request) {
	var req TitleAvailabilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.d.Pipeline.TitleAvailability(r.Context(), req.Title)
	if err != nil {
		h.writeError(w, "ai title availability", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Dialectic handles POST /api/ai/dialectic.
func (h *Handler) Dialectic(w http.ResponseWriter, r *http.Request) {
	var req DialecticRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.d.Pipeline.Dialectic(r.Context(), req.Thesis)
	if err != nil {
		h.writeError(w, "ai dialectic", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PersonaFeedback handles POST /api/ai/persona-feedback.
func (h *Handler) PersonaFeedback(w http.ResponseWriter, r *http.Request) {
	var req PersonaFeedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.d.Pipeline.PersonaFeedback(r.Context(), req.PersonaID, req.Content)
	if err != nil {
		h.writeError(w, "ai persona feedback", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Personas handles GET /api/ai/personas.
func (h *Handler) Personas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"personas": pipeline.Personas()})
}
