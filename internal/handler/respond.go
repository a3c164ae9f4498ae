package handler

import (
	"encoding/json"
	"net/http"

	errs "adboard/pkg/errors"
	"adboard/pkg/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Internal causes of
// storage and external failures are logged, not leaked to clients.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errs.Is(err, errs.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errs.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errs.Is(err, errs.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errs.Is(err, errs.ErrAlreadyExists), errs.Is(err, errs.ErrStatusConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errs.Is(err, errs.ErrExternal):
		if h.log != nil {
			h.log.Error("external dependency failed", err,
				logging.String("path", r.URL.Path))
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream dependency unavailable"})
	default:
		if h.log != nil {
			h.log.Error("request failed", err,
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path))
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}
