package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"adboard/internal/auth"
	"adboard/internal/service"
)

type createModerationRequest struct {
	AdvertisementID string `json:"advertisement_id" validate:"required,uuid4"`
	IsApproved      *bool  `json:"is_approved" validate:"required"`
	RejectionReason string `json:"rejection_reason" validate:"max=250"`
}

func (h *Handler) createModeration(w http.ResponseWriter, r *http.Request) {
	var req createModerationRequest
	if !h.decode(w, r, &req) {
		return
	}

	decision, err := h.moderation.Create(r.Context(), auth.ActorFrom(r.Context()), service.DecisionInput{
		AdvertisementID: req.AdvertisementID,
		IsApproved:      *req.IsApproved,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, decision)
}

func (h *Handler) getModeration(w http.ResponseWriter, r *http.Request) {
	decision, err := h.moderation.GetByID(r.Context(), auth.ActorFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func (h *Handler) listModerationHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.moderation.ListByAdvertisement(r.Context(), auth.ActorFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// assistReview returns the AI suggestion for a pending ad. Advisory only:
// the response carries no side effects and moderators are free to ignore it.
func (h *Handler) assistReview(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if !actor.Role.Privileged() {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "moderators only"})
		return
	}

	ad, err := h.ads.GetByID(r.Context(), actor, mux.Vars(r)["advertisement_id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	suggestion, err := h.reviewer.Review(r.Context(), ad)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}
