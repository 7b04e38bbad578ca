package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Altair788/DigitalBazaar/pkg/httputil"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"

	"github.com/Altair788/DigitalBazaar/internal/repository"
	"github.com/Altair788/DigitalBazaar/internal/service"
)

// NodeHandler handles HTTP requests for the supplier network.
type NodeHandler struct {
	service *service.NodeService
	logger  *slog.Logger
}

// NewNodeHandler creates a new node HTTP handler.
func NewNodeHandler(svc *service.NodeService, logger *slog.Logger) *NodeHandler {
	return &NodeHandler{service: svc, logger: logger}
}

// ClearDebtRequest is the JSON request body for the bulk debt write-off.
type ClearDebtRequest struct {
	IDs []int64 `json:"ids"`
}

// decodeNodePayload reads the request body as a partial payload, keeping
// numbers as json.Number so the validator can distinguish integers,
// decimals, and garbage.
func decodeNodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		writeBadBody(w, err)
		return nil, false
	}
	return payload, true
}

// Create handles POST /api/v1/nodes
func (h *NodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeNodePayload(w, r)
	if !ok {
		return
	}

	node, err := h.service.CreateNode(r.Context(), payload)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: node})
}

// List handles GET /api/v1/nodes
func (h *NodeHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.NodeFilter{
		Country:  r.URL.Query().Get("country"),
		NodeType: r.URL.Query().Get("node_type"),
	}

	nodes, total, err := h.service.ListNodes(r.Context(), filter, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(nodes, int(total), params),
	})
}

// Get handles GET /api/v1/nodes/{id}
func (h *NodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "nodeID"))
	if !ok {
		return
	}

	node, err := h.service.GetNode(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: node})
}

// Update handles PUT/PATCH /api/v1/nodes/{id}
func (h *NodeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "nodeID"))
	if !ok {
		return
	}

	payload, ok := decodeNodePayload(w, r)
	if !ok {
		return
	}

	node, err := h.service.UpdateNode(r.Context(), id, payload)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: node})
}

// Delete handles DELETE /api/v1/nodes/{id}
func (h *NodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "nodeID"))
	if !ok {
		return
	}

	if err := h.service.DeleteNode(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearDebt handles POST /api/v1/nodes/clear-debt (admin only, enforced by
// the router).
func (h *NodeHandler) ClearDebt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ClearDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	cleared, err := h.service.ClearDebt(r.Context(), req.IDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]int64{"cleared": cleared},
	})
}
