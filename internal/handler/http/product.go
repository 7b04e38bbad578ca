package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
	"github.com/Altair788/DigitalBazaar/pkg/httputil"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"
	"github.com/Altair788/DigitalBazaar/pkg/validator"

	"github.com/Altair788/DigitalBazaar/internal/service"
)

// releaseDateFormat is the wire format for product release dates.
const releaseDateFormat = "2006-01-02"

// ProductHandler handles HTTP requests for node catalog products.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Model       string `json:"model" validate:"required,min=1,max=255"`
	ReleaseDate string `json:"release_date" validate:"omitempty"`
}

// UpdateProductRequest is the JSON request body for a partial product update.
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Model       *string `json:"model" validate:"omitempty,min=1,max=255"`
	ReleaseDate *string `json:"release_date"`
}

func parseReleaseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(releaseDateFormat, raw)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("release_date must be in YYYY-MM-DD format")
	}
	return t, nil
}

// Create handles POST /api/v1/nodes/{nodeID}/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := httputil.ParseID(w, chi.URLParam(r, "nodeID"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	releaseDate, err := parseReleaseDate(req.ReleaseDate)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), nodeID, service.CreateProductInput{
		Name:        req.Name,
		Model:       req.Model,
		ReleaseDate: releaseDate,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// ListByNode handles GET /api/v1/nodes/{nodeID}/products
func (h *ProductHandler) ListByNode(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := httputil.ParseID(w, chi.URLParam(r, "nodeID"))
	if !ok {
		return
	}

	params := pagination.FromRequest(r)
	products, total, err := h.service.ListProducts(r.Context(), nodeID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(products, int(total), params),
	})
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Update handles PUT /api/v1/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.UpdateProductInput{Name: req.Name, Model: req.Model}
	if req.ReleaseDate != nil {
		releaseDate, err := parseReleaseDate(*req.ReleaseDate)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		input.ReleaseDate = &releaseDate
	}

	product, err := h.service.UpdateProduct(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Delete handles DELETE /api/v1/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
