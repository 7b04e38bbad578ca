package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Altair788/DigitalBazaar/pkg/httputil"
	"github.com/Altair788/DigitalBazaar/pkg/middleware"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"

	"github.com/Altair788/DigitalBazaar/internal/repository"
	"github.com/Altair788/DigitalBazaar/internal/service"
)

// ReviewHandler handles HTTP requests for ad reviews.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// ReviewRequest is the JSON request body for creating or updating a review.
type ReviewRequest struct {
	Text string `json:"text"`
}

// Create handles POST /api/v1/ads/{adID}/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	adID, ok := httputil.ParseID(w, chi.URLParam(r, "adID"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	ctx := r.Context()
	review, err := h.service.CreateReview(ctx, middleware.UserIDFromContext(ctx), adID, req.Text)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// ListByAd handles GET /api/v1/ads/{adID}/reviews
func (h *ReviewHandler) ListByAd(w http.ResponseWriter, r *http.Request) {
	adID, ok := httputil.ParseID(w, chi.URLParam(r, "adID"))
	if !ok {
		return
	}

	params := pagination.FromRequest(r)
	reviews, total, err := h.service.ListReviews(r.Context(), repository.ReviewFilter{AdID: adID}, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(reviews, int(total), params),
	})
}

// Get handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Update handles PUT/PATCH /api/v1/reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	ctx := r.Context()
	review, err := h.service.UpdateReview(ctx,
		middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx), id, req.Text)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Delete handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	ctx := r.Context()
	err := h.service.DeleteReview(ctx,
		middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
