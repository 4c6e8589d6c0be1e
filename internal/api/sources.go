package api

import (
	"log/slog"
	"net/http"

	"github.com/starford/ansuz/internal/models"
)

// ListSources handles GET /api/sources.
func (h *Handler) ListSources(w http.ResponseWriter, _ *http.Request) {
	list, err := h.d.Sources.ListAll()
	if err != nil {
		h.writeError(w, "list sources", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// SaveSource handles POST /api/sources. A known id updates the source.
//
//	@Summary		Create or update a research source
//	@Tags			sources
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Source	true	"Source (id and title required)"
//	@Success		200		{object}	models.Source
//	@Failure		400		{object}	errResponse
//	@Router			/sources [post]
func (h *Handler) SaveSource(w http.ResponseWriter, r *http.Request) {
	var src models.Source
	if !decodeBody(w, r, &src) {
		return
	}
	saved, err := h.d.Sources.Save(src)
	if err != nil {
		h.writeError(w, "save source", err, slog.String("id", src.ID))
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteSource handles DELETE /api/sources with body {"id": ...}.
func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	var req DeleteSourceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ok, err := h.d.Sources.Delete(req.ID)
	if err != nil {
		h.writeError(w, "delete source", err, slog.String("id", req.ID))
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("source not found"))
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Success: true})
}

// GetFormats handles GET /api/settings/formats.
func (h *Handler) GetFormats(w http.ResponseWriter, _ *http.Request) {
	fs, err := h.d.Settings.Get()
	if err != nil {
		h.writeError(w, "get format settings", err)
		return
	}
	writeJSON(w, http.StatusOK, fs)
}

// SaveFormats handles POST /api/settings/formats. The body replaces the stored document.
func (h *Handler) SaveFormats(w http.ResponseWriter, r *http.Request) {
	var fs models.FormatSettings
	if !decodeBody(w, r, &fs) {
		return
	}
	if err := h.d.Settings.Replace(fs); err != nil {
		h.writeError(w, "save format settings", err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Success: true})
}
