package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

var (
	ErrOutOfStock         = errors.New("out of stock")
	ErrGateway            = errors.New("payment gateway error")
	ErrIncompleteCheckout = errors.New("checkout is incomplete")
	ErrInvalidEvent       = errors.New("invalid payment event")
)

const ShippingLineName = "Shipping and handling"

type StockError struct {
	ProductID int
	Name      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s has only %d left, %d requested", e.Name, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error {
	return ErrOutOfStock
}

type Catalog interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
}

type Options struct {
	Currency       string
	PaymentMethods []string
	BaseURL        string
}

type Adapter struct {
	catalog Catalog
	gateway Gateway
	store   session.Store
	opts    Options
	logger  *zap.Logger
}

func NewAdapter(catalog Catalog, gateway Gateway, store session.Store, opts Options, logger *zap.Logger) *Adapter {
	return &Adapter{
		catalog: catalog,
		gateway: gateway,
		store:   store,
		opts:    opts,
		logger:  logger,
	}
}

func minorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// CreatePayment re-checks every cart line against live stock, opens a hosted
// payment session and returns the URL to send the buyer to. On any error the
// session is left as it was.
func (a *Adapter) CreatePayment(ctx context.Context, s *session.Session) (string, error) {
	if s.Cart.Empty() || s.Checkout == nil || s.Shipping == nil || s.UserID <= 0 {
		return "", ErrIncompleteCheckout
	}

	items := make([]LineItem, 0, len(s.Cart.Lines)+1)
	lines := make([]session.PendingLine, 0, len(s.Cart.Lines))

	for _, line := range s.Cart.Lines {
		product, err := a.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", &StockError{ProductID: line.ProductID, Name: fmt.Sprintf("product #%d", line.ProductID), Requested: line.Quantity}
			}
			return "", err
		}

		if line.Quantity > product.Stock {
			return "", &StockError{
				ProductID: product.ProductID,
				Name:      product.Name,
				Requested: line.Quantity,
				Available: product.Stock,
			}
		}

		items = append(items, LineItem{
			Name:       product.Name,
			UnitAmount: minorUnits(line.Price),
			Quantity:   int64(line.Quantity),
		})
		lines = append(lines, session.PendingLine{
			ProductID: product.ProductID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}

	if s.Checkout.Shipping.IsPositive() {
		items = append(items, LineItem{
			Name:       ShippingLineName,
			UnitAmount: minorUnits(s.Checkout.Shipping),
			Quantity:   1,
		})
	}

	hosted, err := a.gateway.CreateSession(ctx, SessionRequest{
		Currency:        a.opts.Currency,
		Items:           items,
		Discount:        minorUnits(s.Checkout.Discount),
		PaymentMethods:  a.opts.PaymentMethods,
		SuccessURL:      a.opts.BaseURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       a.opts.BaseURL + "/payment/cancel",
		ClientReference: strconv.Itoa(s.UserID),
	})
	if err != nil {
		a.logger.Error("payment gateway failed", zap.String("session", s.ID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	pending := &session.PendingCheckout{
		PaymentRef: hosted.ID,
		SessionID:  s.ID,
		UserID:     s.UserID,
		Lines:      lines,
		Totals:     *s.Checkout,
		Shipping:   *s.Shipping,
		CouponID:   s.CouponID,
	}
	if err := a.store.SavePending(ctx, pending); err != nil {
		return "", fmt.Errorf("failed to save pending checkout: %w", err)
	}

	a.logger.Info("payment session created",
		zap.String("session", s.ID),
		zap.String("payment_ref", hosted.ID),
		zap.String("total", s.Checkout.Total.StringFixed(2)),
	)

	return hosted.URL, nil
}

// ParseEvent verifies a webhook delivery from the gateway.
func (a *Adapter) ParseEvent(payload []byte, signature string) (*Event, error) {
	return a.gateway.ParseEvent(payload, signature)
}
