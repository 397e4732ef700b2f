package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
)

type ProductHandler struct {
	repo       repository.ProductRepository
	operations repository.OperationRepository
}

func NewProductHandler(repo repository.ProductRepository, operations repository.OperationRepository) *ProductHandler {
	return &ProductHandler{repo: repo, operations: operations}
}

type ProductRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
}

type adminProduct struct {
	models.Product
	StockStatus models.StockStatus `json:"stock_status"`
}

func withStatus(p models.Product) adminProduct {
	return adminProduct{Product: p, StockStatus: p.StockStatus()}
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "product not found", nil)
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to get product", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, withStatus(*product))
}

// GetAll lists products, optionally only those in stock (?stock=in) or sold
// out (?stock=out).
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	filter := repository.StockFilter(r.URL.Query().Get("stock"))
	switch filter {
	case repository.StockAny, repository.StockInStock, repository.StockSoldOut:
	default:
		writeError(w, http.StatusBadRequest, "invalid_input", "stock must be 'in' or 'out'", nil)
		return
	}

	products, err := h.repo.GetAll(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get products", nil)
		return
	}

	out := make([]adminProduct, 0, len(products))
	for _, p := range products {
		out = append(out, withStatus(p))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	p := models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Stock:       req.Stock,
		Image:       req.Image,
	}
	if !validInput(w, p) {
		return
	}

	if err := h.repo.Create(r.Context(), &p); err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to create product", nil)
		}
		return
	}

	w.Header().Set("Location", "/admin/products/"+strconv.Itoa(p.ProductID))
	writeJSON(w, http.StatusCreated, withStatus(p))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	var req ProductRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	p := models.Product{
		ProductID:   id,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Stock:       req.Stock,
		Image:       req.Image,
	}
	if !validInput(w, p) {
		return
	}

	if err := h.repo.Update(r.Context(), &p); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "product not found", nil)
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to update product", nil)
		}
		return

	}

	writeJSON(w, http.StatusOK, withStatus(p))
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "product not found", nil)
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete product", nil)
		}
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// GetOperations is the product's stock ledger.
func (h *ProductHandler) GetOperations(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	ops, err := h.operations.GetByProductID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get operations", nil)
		return
	}

	writeJSON(w, http.StatusOK, ops)
}
