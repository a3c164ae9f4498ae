package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"adboard/internal/auth"
	"adboard/internal/models"
	"adboard/internal/service"
)

type createAdvertisementRequest struct {
	Title       string          `json:"title" validate:"required,max=50"`
	City        string          `json:"city" validate:"required,max=50"`
	Description string          `json:"description" validate:"required,max=250"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Photos      []string        `json:"photos" validate:"required,min=1,max=10"`
	CategoryID  string          `json:"category_id" validate:"required,uuid4"`
}

func (h *Handler) createAdvertisement(w http.ResponseWriter, r *http.Request) {
	var req createAdvertisementRequest
	if !h.decode(w, r, &req) {
		return
	}

	ad, err := h.ads.Create(r.Context(), auth.ActorFrom(r.Context()), service.CreateAdvertisementInput{
		Title:       req.Title,
		City:        req.City,
		Description: req.Description,
		Price:       req.Price,
		Photos:      req.Photos,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ad)
}

func (h *Handler) getAdvertisement(w http.ResponseWriter, r *http.Request) {
	ad, err := h.ads.GetByID(r.Context(), auth.ActorFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

func (h *Handler) listAdvertisements(w http.ResponseWriter, r *http.Request) {
	ads, err := h.ads.ListAll(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ads)
}

func (h *Handler) searchAdvertisements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := service.SearchParams{
		CategoryTitle: q.Get("category"),
		City:          q.Get("city"),
	}
	if v := q.Get("price_min"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "price_min is not a number"})
			return
		}
		params.PriceMin = &d
	}
	if v := q.Get("price_max"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "price_max is not a number"})
			return
		}
		params.PriceMax = &d
	}
	if v := q.Get("offset"); v != "" {
		params.Offset, _ = strconv.Atoi(v)
	}
	if v := q.Get("limit"); v != "" {
		params.Limit, _ = strconv.Atoi(v)
	}

	ads, err := h.ads.Search(r.Context(), auth.ActorFrom(r.Context()), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ads)
}

type updateAdvertisementRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=50"`
	City        *string          `json:"city" validate:"omitempty,max=50"`
	Description *string          `json:"description" validate:"omitempty,max=250"`
	Price       *decimal.Decimal `json:"price"`
	Photos      []string         `json:"photos" validate:"omitempty,min=1,max=10"`
}

func (h *Handler) updateAdvertisement(w http.ResponseWriter, r *http.Request) {
	var req updateAdvertisementRequest
	if !h.decode(w, r, &req) {
		return
	}

	ad, err := h.ads.Update(r.Context(), auth.ActorFrom(r.Context()), mux.Vars(r)["id"],
		models.AdvertisementPatch{
			Title:       req.Title,
			City:        req.City,
			Description: req.Description,
			Price:       req.Price,
			Photos:      req.Photos,
		})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

func (h *Handler) removeAdvertisement(w http.ResponseWriter, r *http.Request) {
	if err := h.ads.Remove(r.Context(), auth.ActorFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submitAdvertisement(w http.ResponseWriter, r *http.Request) {
	ad, err := h.ads.SubmitForModeration(r.Context(), auth.ActorFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}
