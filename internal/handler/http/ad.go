package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Altair788/DigitalBazaar/pkg/httputil"
	"github.com/Altair788/DigitalBazaar/pkg/middleware"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"

	"github.com/Altair788/DigitalBazaar/internal/repository"
	"github.com/Altair788/DigitalBazaar/internal/service"
)

// AdHandler handles HTTP requests for classified ads.
type AdHandler struct {
	service *service.AdService
	logger  *slog.Logger
}

// NewAdHandler creates a new ad HTTP handler.
func NewAdHandler(svc *service.AdService, logger *slog.Logger) *AdHandler {
	return &AdHandler{service: svc, logger: logger}
}

// CreateAdRequest is the JSON request body for creating an ad.
type CreateAdRequest struct {
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// UpdateAdRequest is the JSON request body for a partial ad update.
type UpdateAdRequest struct {
	Title       *string `json:"title"`
	Price       *int64  `json:"price"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// Create handles POST /api/v1/ads
func (h *AdHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	ctx := r.Context()
	ad, err := h.service.CreateAd(ctx, middleware.UserIDFromContext(ctx), service.CreateAdInput{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: ad})
}

// List handles GET /api/v1/ads
func (h *AdHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.AdFilter{Title: r.URL.Query().Get("title")}
	if raw := r.URL.Query().Get("author_id"); raw != "" {
		authorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || authorID < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "author_id must be a positive integer"},
			})
			return
		}
		filter.AuthorID = authorID
	}

	ads, total, err := h.service.ListAds(r.Context(), filter, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(ads, int(total), params),
	})
}

// Get handles GET /api/v1/ads/{id}
func (h *AdHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "adID"))
	if !ok {
		return
	}

	ad, err := h.service.GetAd(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ad})
}

// Update handles PUT/PATCH /api/v1/ads/{id}
func (h *AdHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "adID"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdateAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	ctx := r.Context()
	ad, err := h.service.UpdateAd(ctx,
		middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx), id,
		service.UpdateAdInput{
			Title:       req.Title,
			Price:       req.Price,
			Description: req.Description,
			ImageURL:    req.ImageURL,
		})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ad})
}

// Delete handles DELETE /api/v1/ads/{id}
func (h *AdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "adID"))
	if !ok {
		return
	}

	ctx := r.Context()
	err := h.service.DeleteAd(ctx,
		middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
