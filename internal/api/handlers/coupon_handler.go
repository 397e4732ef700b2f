package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
)

type CouponHandler struct {
	repo repository.CouponRepository
}

func NewCouponHandler(repo repository.CouponRepository) *CouponHandler {
	return &CouponHandler{repo: repo}
}

type CouponRequest struct {
	Code     string `json:"code"`
	Discount int    `json:"discount"`
	Active   bool   `json:"active"`
}

func couponError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "coupon not found", nil)
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", "coupon code already exists", nil)
	case errors.Is(err, repository.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to "+action+" coupon", nil)
	}
}

func (h *CouponHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.repo.GetAll(r.Context())
	if err != nil {
		couponError(w, err, "list")
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

func (h *CouponHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "coupon")
	if !ok {
		return
	}

	coupon, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		couponError(w, err, "get")
		return
	}
	writeJSON(w, http.StatusOK, coupon)
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	c := models.Coupon{Code: req.Code, Discount: req.Discount, Active: req.Active}
	if !validInput(w, c) {
		return
	}
	if err := h.repo.Create(r.Context(), &c); err != nil {
		couponError(w, err, "create")
		return
	}

	w.Header().Set("Location", "/admin/coupons/"+strconv.Itoa(c.CouponID))
	writeJSON(w, http.StatusCreated, c)
}

func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "coupon")
	if !ok {
		return
	}

	var req CouponRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	c := models.Coupon{CouponID: id, Code: req.Code, Discount: req.Discount, Active: req.Active}
	if !validInput(w, c) {
		return
	}
	if err := h.repo.Update(r.Context(), &c); err != nil {
		couponError(w, err, "update")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "coupon")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		couponError(w, err, "delete")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
