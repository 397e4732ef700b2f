package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/cart"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/checkout"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

type checkoutPage struct {
	Cart     *cart.View       `json:"cart"`
	Totals   *session.Totals  `json:"totals"`
	CouponID *int             `json:"coupon_id,omitempty"`
	Shipping *session.Address `json:"shipping,omitempty"`
}

func (s *Server) ViewCheckout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	view, err := s.cart.View(r.Context(), sess)
	if err != nil {
		s.logger.Error("failed to load cart", zap.Error(err))
		internalError(w, "failed to load cart")
		return
	}
	if sess.Cart.Empty() {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	totals, err := s.checkout.Calculate(r.Context(), sess)
	if err != nil {
		s.logger.Error("failed to calculate checkout", zap.Error(err))
		internalError(w, "failed to calculate totals")
		return
	}

	writePage(w, r, checkoutPage{Cart: view, Totals: totals, CouponID: sess.CouponID, Shipping: sess.Shipping})
}

// ProcessCheckout stores the shipping address and moves on to payment.
func (s *Server) ProcessCheckout(w http.ResponseWriter, r *http.Request) {
	addr := session.Address{
		Address:    r.FormValue("address"),
		City:       r.FormValue("city"),
		PostalCode: r.FormValue("postal_code"),
		Phone:      r.FormValue("phone"),
	}

	err := s.checkout.SetShipping(sessionFrom(r), addr)
	switch {
	case err == nil:
		http.Redirect(w, r, "/payment/create", http.StatusSeeOther)
	case errors.Is(err, checkout.ErrEmptyCart):
		redirectWith(w, r, "/cart", session.FlashWarning, "Your cart is empty.")
	default:
		redirectWith(w, r, "/checkout", session.FlashError, "Please fill in every shipping field.")
	}
}

func (s *Server) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	err := s.checkout.ApplyCoupon(r.Context(), sessionFrom(r), r.FormValue("code"))
	if err != nil {
		if err != checkout.ErrInvalidCoupon {
			s.logger.Warn("coupon lookup failed", zap.Error(err))
		}
		redirectWith(w, r, "/checkout", session.FlashError, "This coupon is invalid or has expired.")
		return
	}
	redirectWith(w, r, "/checkout", session.FlashSuccess, "Coupon applied.")
}
