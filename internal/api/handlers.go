package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/backup"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/modulestore"
	"github.com/starford/ansuz/internal/pipeline"
	"github.com/starford/ansuz/internal/settings"
	"github.com/starford/ansuz/internal/sourcestore"
)

// Searcher is the read side of the module index.
type Searcher interface {
	Search(query string, limit int) ([]index.SearchResult, error)
	Graph() (*index.Graph, error)
}

// Backuper commits the content root.
type Backuper interface {
	Run(ctx context.Context) (*backup.Result, error)
}

// Publisher is notified after API-driven module changes.
type Publisher interface {
	PublishModuleEvent(kind, slug string)
}

// Deps are the services behind the API.
type Deps struct {
	Modules  *modulestore.Store
	Sources  *sourcestore.Store
	Settings *settings.Store
	Pipeline *pipeline.Orchestrator
	Index    Searcher
	Backup   Backuper
	Events   Publisher
	Logger   *slog.Logger
}

// Handler holds API route handlers.
type Handler struct {
	d      Deps
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{d: d, logger: logger}
}

func (h *Handler) publish(kind, slug string) {
	if h.d.Events != nil {
		h.d.Events.PublishModuleEvent(kind, slug)
	}
}

// moduleSlug extracts the module slug from the URL (everything after /api/modules/).
// Supports encoded slashes from clients (e.g. kapitel-1%2Fintro).
func moduleSlug(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListModules handles GET /api/modules.
//
//	@Summary		List modules sorted by chapter, optionally filtered by status
//	@Tags			modules
//	@Produce		json
//	@Param			status	query		string	false	"Status filter"	Enums(entwurf, überarbeitung, final)
//	@Success		200		{object}	ModuleListResponse
//	@Router			/modules [get]
func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	mods, err := h.d.Modules.List(r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, "list modules", err)
		return
	}
	writeJSON(w, http.StatusOK, ModuleListResponse{Modules: mods, Total: len(mods)})
}

// GetModule handles GET /api/modules/*.
//
//	@Summary		Get a single module including rendered HTML
//	@Tags			modules
//	@Produce		json
//	@Param			slug	path		string	true	"Module slug"
//	@Success		200		{object}	models.Module
//	@Failure		404		{object}	errResponse
//	@Router			/modules/{slug} [get]
func (h *Handler) GetModule(w http.ResponseWriter, r *http.Request) {
	slug := moduleSlug(r)
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	m, err := h.d.Modules.Get(slug)
	if err != nil {
		h.writeError(w, "get module", err, slog.String("slug", slug))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CreateModule handles POST /api/modules.
//
//	@Summary		Create a module; the slug is derived from the title
//	@Tags			modules
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateModuleRequest	true	"Module to create"
//	@Success		201		{object}	MutationResponse
//	@Failure		400		{object}	errResponse
//	@Router			/modules [post]
func (h *Handler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var req CreateModuleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	m, err := h.d.Modules.Create(req.Title, req.Content, req.Frontmatter)
	if err != nil {
		h.writeError(w, "create module", err, slog.String("title", req.Title))
		return
	}
	h.publish(index.EventCreated, m.Slug)
	writeJSON(w, http.StatusCreated, MutationResponse{Success: true, Slug: m.Slug})
}

// SaveModule handles POST /api/modules/*.
//
//	@Summary		Save body and frontmatter patch of a module
//	@Tags			modules
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string				true	"Module slug"
//	@Param			body	body		SaveModuleRequest	true	"Content and frontmatter patch"
//	@Success		200		{object}	MutationResponse
//	@Failure		400		{object}	errResponse
//	@Router			/modules/{slug} [post]
func (h *Handler) SaveModule(w http.ResponseWriter, r *http.Request) {
	slug := moduleSlug(r)
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	var req SaveModuleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := h.d.Modules.Save(slug, *req.Content, req.Frontmatter); err != nil {
		h.writeError(w, "save module", err, slog.String("slug", slug))
		return
	}
	h.publish(index.EventUpdated, slug)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Slug: slug})
}

// DeleteModule handles DELETE /api/modules/*.
//
//	@Summary		Delete a module
//	@Tags			modules
//	@Param			slug	path		string	true	"Module slug"
//	@Success		200		{object}	MutationResponse
//	@Failure		404		{object}	errResponse
//	@Router			/modules/{slug} [delete]
func (h *Handler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	slug := moduleSlug(r)
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	if err := h.d.Modules.Delete(slug); err != nil {
		h.writeError(w, "delete module", err, slog.String("slug", slug))
		return
	}
	h.publish(index.EventDeleted, slug)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true})
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	st, err := h.d.Modules.Stats()
	if err != nil {
		h.writeError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Matrix handles GET /api/matrix.
func (h *Handler) Matrix(w http.ResponseWriter, _ *http.Request) {
	mx, err := h.d.Modules.Matrix()
	if err != nil {
		h.writeError(w, "matrix", err)
		return
	}
	writeJSON(w, http.StatusOK, mx)
}

// DownloadChapter handles GET /api/chapters/{chapter}/download.
//
//	@Summary		Download every module of a chapter as one markdown file
//	@Tags			chapters
//	@Produce		text/markdown
//	@Param			chapter	path	string	true	"Chapter number"
//	@Success		200
//	@Failure		404		{object}	errResponse
//	@Router			/chapters/{chapter}/download [get]
func (h *Handler) DownloadChapter(w http.ResponseWriter, r *http.Request) {
	chapter := chi.URLParam(r, "chapter")
	name, text, err := h.d.Modules.DownloadChapter(chapter)
	if err != nil {
		h.writeError(w, "download chapter", err, slog.String("chapter", chapter))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across modules
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.d.Index.Search(q, limit)
	if err != nil {
		h.writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Graph handles GET /api/graph.
func (h *Handler) Graph(w http.ResponseWriter, _ *http.Request) {
	g, err := h.d.Index.Graph()
	if err != nil {
		h.writeError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// Backup handles POST /api/backup.
//
//	@Summary		Commit the content root and push it when a remote is configured
//	@Tags			backup
//	@Produce		json
//	@Success		200	{object}	backup.Result
//	@Failure		500	{object}	backup.Result
//	@Router			/backup [post]
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	res, err := h.d.Backup.Run(r.Context())
	if err != nil {
		h.logger.Error("backup failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
