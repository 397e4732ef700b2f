package handlers

import (
	"errors"
	"net/http"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/orders"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
)

// OrderHandler is the back-office view of orders.
type OrderHandler struct {
	orders *orders.Service
}

func NewOrderHandler(orders *orders.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type StatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (h *OrderHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.All(r.Context())
	if err != nil {
		internalError(w, "failed to get orders")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "order")
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			notFound(w, "order")
			return
		}
		internalError(w, "failed to get order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "order")
	if !ok {
		return
	}

	var req StatusRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	order, err := h.orders.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			notFound(w, "order")
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			internalError(w, "failed to update order status")
		}
		return
	}
	writeJSON(w, http.StatusOK, order)
}
