package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/fulfillment"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/payment"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

const maxWebhookBody = 64 << 10

type successPage struct {
	Status string                 `json:"status"`
	Order  *models.OrderWithLines `json:"order,omitempty"`
}

// CreatePayment runs the final stock check and sends the buyer to the hosted
// payment page.
func (s *Server) CreatePayment(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess.Cart.Empty() {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	if sess.Shipping == nil {
		http.Redirect(w, r, "/checkout", http.StatusSeeOther)
		return
	}

	// the cart may have changed since the checkout page was shown
	if _, err := s.checkout.Calculate(r.Context(), sess); err != nil {
		s.logger.Error("failed to calculate checkout", zap.Error(err))
		redirectWith(w, r, "/cart", session.FlashError, "Payment error, please try again.")
		return
	}

	url, err := s.payments.CreatePayment(r.Context(), sess)
	if err != nil {
		var stockErr *payment.StockError
		switch {
		case errors.As(err, &stockErr):
			redirectWith(w, r, "/cart", session.FlashError,
				"Sorry, "+stockErr.Name+" has just sold out or has too little stock left. Please update your cart.")
		case errors.Is(err, payment.ErrIncompleteCheckout):
			http.Redirect(w, r, "/checkout", http.StatusSeeOther)
		default:
			redirectWith(w, r, "/cart", session.FlashError, "Payment error, please try again.")
		}
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

// PaymentSuccess only reports on the order; the order itself is created by
// the gateway's webhook.
func (s *Server) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("session_id")
	if ref == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	order, err := s.orders.ByPaymentRef(r.Context(), sessionFrom(r).UserID, ref)
	switch {
	case err == nil:
		writePage(w, r, successPage{Status: "paid", Order: order})
	case errors.Is(err, repository.ErrNotFound):
		writePage(w, r, successPage{Status: "processing"})
	default:
		s.logger.Error("failed to look up order", zap.String("payment_ref", ref), zap.Error(err))
		internalError(w, "failed to get order")
	}
}

func (s *Server) PaymentCancel(w http.ResponseWriter, r *http.Request) {
	redirectWith(w, r, "/cart", session.FlashError, "Payment was cancelled. Please try again.")
}

func (s *Server) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read body", nil)
		return
	}

	event, err := s.payments.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		s.logger.Warn("rejected payment webhook", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_event", "invalid signature or payload", nil)
		return
	}

	switch event.Type {
	case payment.EventCheckoutCompleted, payment.EventAsyncPaymentSucceeded:
	default:
		writeJSON(w, http.StatusOK, map[string]any{"received": true})
		return
	}

	if !event.Paid {
		s.logger.Info("checkout completed without payment yet", zap.String("payment_ref", event.PaymentRef))
		writeJSON(w, http.StatusOK, map[string]any{"received": true})
		return
	}

	order, err := s.fulfillment.Fulfill(r.Context(), event.PaymentRef)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"received": true, "order_id": order.OrderID})
	case errors.Is(err, fulfillment.ErrUnknownPayment):
		s.logger.Warn("webhook for unknown payment", zap.String("payment_ref", event.PaymentRef))
		writeJSON(w, http.StatusOK, map[string]any{"received": true})
	default:
		s.logger.Error("fulfillment failed", zap.String("payment_ref", event.PaymentRef), zap.Error(err))
		internalError(w, "fulfillment failed")
	}
}
