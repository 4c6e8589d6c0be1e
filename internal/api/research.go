package api

import (
	"log/slog"
	"net/http"
)

// Optimize handles POST /api/research/optimize.
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.d.Pipeline.Optimize(r.Context(), req.Input, req.Mode)
	if err != nil {
		h.writeError(w, "research optimize", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ResearchSearch handles POST /api/research/search and its /perplexity alias.
func (h *Handler) ResearchSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.d.Pipeline.Search(r.Context(), req.Query, req.Focus)
	if err != nil {
		h.writeError(w, "research search", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Query handles POST /api/research/query (optimize, then search).
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.d.Pipeline.Query(r.Context(), req.Input, req.Mode, req.Focus)
	if err != nil {
		h.writeError(w, "research query", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Extract handles POST /api/research/extract.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	art, err := h.d.Pipeline.Extract(r.Context(), req.URL)
	if err != nil {
		h.writeError(w, "research extract", err, slog.String("url", req.URL))
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// Summarize handles POST /api/research/summarize.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.d.Pipeline.Summarize(r.Context(), req.Title, req.Content)
	if err != nil {
		h.writeError(w, "research summarize", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Import handles POST /api/research/import: extract, summarize and store as a source.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	src, err := h.d.Pipeline.Import(r.Context(), req.URL, req.LinkedModules)
	if err != nil {
		h.writeError(w, "research import", err, slog.String("url", req.URL))
		return
	}
	writeJSON(w, http.StatusCreated, src)
}
