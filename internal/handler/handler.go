// Package handler contains the HTTP handlers for the storefront JSON API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/liew807/winwin8/internal/model"
	"github.com/liew807/winwin8/internal/repository"
	"github.com/liew807/winwin8/internal/service"
)

// Service defines the facade contract consumed by the HTTP handlers.
type Service interface {
	Backend() string
	ListProducts(ctx context.Context) []model.Product
	CreateProduct(ctx context.Context, in service.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)
	ListOrders(ctx context.Context) []model.Order
	CreateOrder(ctx context.Context, in service.OrderInput) (*model.Order, error)
	SetOrderStatus(ctx context.Context, id int64, status string) (bool, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Register(ctx context.Context, username, password string) (*model.User, error)
	GetSettings(ctx context.Context) model.Settings
	UpdateSettings(ctx context.Context, patch model.Settings) (model.Settings, error)
	Backup(ctx context.Context) (*model.Snapshot, error)
	Status(ctx context.Context) model.Status
}

// Handler implements the storefront HTTP API.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// New creates a Handler over the given facade.
func New(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

// envelope is the uniform response shape of every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) ok(w http.ResponseWriter, data any) {
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func (h *Handler) fail(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, envelope{Success: false, Error: msg})
}

// writeError maps the facade error taxonomy onto HTTP statuses. Backend
// details stay in the logs.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		h.fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrUserExists):
		h.fail(w, http.StatusConflict, "username already exists")
	default:
		h.fail(w, http.StatusInternalServerError, "internal error")
	}
}

// ListProducts serves GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.ok(w, h.service.ListProducts(r.Context()))
}

// CreateProduct serves POST /api/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	p, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.ok(w, p)
}

// DeleteProduct serves DELETE /api/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	// A malformed id cannot match any record, same outcome as an absent one.
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err == nil {
		deleted, derr := h.service.DeleteProduct(r.Context(), id)
		if derr != nil {
			h.writeError(w, derr)
			return
		}
		if deleted {
			h.ok(w, nil)
			return
		}
	}
	h.fail(w, http.StatusNotFound, "product not found")
}

// ListOrders serves GET /api/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	h.ok(w, h.service.ListOrders(r.Context()))
}

// CreateOrder serves POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in service.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	o, err := h.service.CreateOrder(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.ok(w, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus serves PUT /api/orders/{id}/status. The status value is
// not checked against the known set.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		h.fail(w, http.StatusBadRequest, "status is required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err == nil {
		updated, uerr := h.service.SetOrderStatus(r.Context(), id, req.Status)
		if uerr != nil {
			h.writeError(w, uerr)
			return
		}
		if updated {
			h.ok(w, nil)
			return
		}
	}
	h.fail(w, http.StatusNotFound, "order not found")
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login serves POST /api/login. Unknown username and wrong password produce
// the same response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		h.fail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	u, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if u == nil {
		h.fail(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	h.ok(w, u)
}

// Register serves POST /api/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	u, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.ok(w, u)
}

// GetSettings serves GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.ok(w, h.service.GetSettings(r.Context()))
}

// UpdateSettings serves PUT /api/settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch model.Settings
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	st, err := h.service.UpdateSettings(r.Context(), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.ok(w, st)
}

// Backup serves GET /api/backup with a full state dump.
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Backup(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.ok(w, snap)
}

// Status serves GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.ok(w, h.service.Status(r.Context()))
}
