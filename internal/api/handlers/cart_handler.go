package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/cart"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

func (s *Server) ViewCart(w http.ResponseWriter, r *http.Request) {
	view, err := s.cart.View(r.Context(), sessionFrom(r))
	if err != nil {
		s.logger.Error("failed to load cart", zap.Error(err))
		internalError(w, "failed to load cart")
		return
	}
	writePage(w, r, view)
}

// cartError maps a cart failure onto the response.
func (s *Server) cartError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *cart.StockError
	switch {
	case errors.As(err, &stockErr):
		redirectWith(w, r, "/cart", session.FlashWarning, stockErr.Error()+".")
	case errors.Is(err, repository.ErrNotFound):
		notFound(w, "product")
	default:
		s.logger.Error("cart update failed", zap.Error(err))
		redirectWith(w, r, "/cart", session.FlashError, "Your cart could not be updated.")
	}
}

func (s *Server) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	if err := s.cart.Add(r.Context(), sessionFrom(r), id); err != nil {
		s.cartError(w, r, err)
		return
	}
	redirectWith(w, r, "/cart", session.FlashSuccess, "Product added to your cart.")
}

func (s *Server) UpdateCart(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		redirectWith(w, r, "/cart", session.FlashError, "Please enter a valid quantity.")
		return
	}

	if err := s.cart.Update(r.Context(), sessionFrom(r), id, quantity); err != nil {
		s.cartError(w, r, err)
		return
	}
	redirectWith(w, r, "/cart", session.FlashSuccess, "Cart updated.")
}

func (s *Server) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	if err := s.cart.Remove(r.Context(), sessionFrom(r), id); err != nil {
		s.cartError(w, r, err)
		return
	}
	redirectWith(w, r, "/cart", session.FlashInfo, "Product removed from your cart.")
}
