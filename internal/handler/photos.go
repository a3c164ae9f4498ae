package handler

import (
	"net/http"
	"time"

	"adboard/internal/auth"
	"adboard/internal/models"
)

// maxPhotoSize caps one upload at 8 MiB.
const maxPhotoSize = 8 << 20

type uploadPhotoResponse struct {
	Key string `json:"key"`
}

// uploadPhoto stores one image and returns the key to reference from an
// advertisement's photos list.
func (h *Handler) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if actor.Role == models.RoleGuest {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "authentication required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "multipart form too large or malformed"})
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing photo form field"})
		return
	}
	defer file.Close()

	key, err := h.photos.Upload(r.Context(), file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadPhotoResponse{Key: key})
}

type photoURLResponse struct {
	URL string `json:"url"`
}

func (h *Handler) photoURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing key query parameter"})
		return
	}

	url, err := h.photos.URL(r.Context(), key, 15*time.Minute)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photoURLResponse{URL: url})
}
