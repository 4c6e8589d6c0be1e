package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/pipeline"
)

const maxBodyBytes = 10 << 20

// providerAuthHint tells the author how to fix a missing or rejected key.
const providerAuthHint = "API-Schlüssel fehlt oder ist ungültig. Bitte OPENAI_API_KEY bzw. PERPLEXITY_API_KEY in .env eintragen."

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeBody reads a JSON request body into dst and validates it when dst
// implements validation.Validatable. On failure it writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("invalid JSON body: %v", err)))
		return false
	}
	if v, ok := dst.(validation.Validatable); ok {
		if err := v.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return false
		}
	}
	return true
}

// writeError maps err to a status code. Unexpected errors are logged with op
// and answered with a generic message; pipeline failures name their stage.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error, attrs ...slog.Attr) {
	var stage string
	var se *pipeline.StageError
	if errors.As(err, &se) {
		stage = se.Stage
	}

	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errResponse{Error: err.Error(), Stage: stage})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrProviderAuth):
		h.logger.Warn(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusUnauthorized, errResponse{Error: providerAuthHint, Stage: stage})
	default:
		args := make([]any, 0, len(attrs)+1)
		for _, a := range attrs {
			args = append(args, a)
		}
		args = append(args, slog.String("error", err.Error()))
		h.logger.Error(op+" failed", args...)
		msg := "internal error"
		if stage != "" {
			msg = fmt.Sprintf("pipeline failed at stage %s", stage)
		}
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: msg, Stage: stage})
	}
}
