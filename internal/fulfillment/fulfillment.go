package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

var ErrUnknownPayment = errors.New("no pending checkout for payment")

type Orders interface {
	CreateOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) ([]models.StockChange, error)
	GetByPaymentRef(ctx context.Context, ref string) (*models.Order, error)
	GetOrderWithLines(ctx context.Context, id int) (*models.OrderWithLines, error)
}

type Users interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

type Notifier interface {
	OrderConfirmation(ctx context.Context, user *models.User, order *models.OrderWithLines)
	SaleAlert(ctx context.Context, user *models.User, order *models.OrderWithLines)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, ids ...int)
}

type Writer struct {
	store    session.Store
	orders   Orders
	users    Users
	notifier Notifier
	cache    CacheInvalidator
	logger   *zap.Logger
}

func NewWriter(store session.Store, orders Orders, users Users, notifier Notifier, cache CacheInvalidator, logger *zap.Logger) *Writer {
	return &Writer{
		store:    store,
		orders:   orders,
		users:    users,
		notifier: notifier,
		cache:    cache,
		logger:   logger,
	}
}

// Fulfill turns a confirmed payment into an order. The order, its lines and
// the stock decrement are written in one transaction; emails go out after it
// commits. Delivering the same payment twice returns the existing order and
// sends nothing.
func (w *Writer) Fulfill(ctx context.Context, paymentRef string) (*models.OrderWithLines, error) {
	pending, err := w.store.LoadPending(ctx, paymentRef)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			if existing, lookupErr := w.existing(ctx, paymentRef); lookupErr == nil {
				return existing, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrUnknownPayment, paymentRef)
		}
		return nil, err
	}

	user, err := w.users.GetByID(ctx, pending.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load buyer %d: %w", pending.UserID, err)
	}

	order := &models.Order{
		UserID:       pending.UserID,
		TotalPaid:    pending.Totals.Total,
		Status:       models.OrderPaid,
		Address:      pending.Shipping.Address,
		City:         pending.Shipping.City,
		PostalCode:   pending.Shipping.PostalCode,
		Phone:        pending.Shipping.Phone,
		ShippingCost: pending.Totals.Shipping,
		PaymentRef:   paymentRef,
	}

	lines := make([]models.OrderLine, 0, len(pending.Lines))
	for _, l := range pending.Lines {
		productID := l.ProductID
		lines = append(lines, models.OrderLine{
			ProductID:   &productID,
			ProductName: l.Name,
			Price:       l.Price,
			Quantity:    l.Quantity,
		})
	}

	changes, err := w.orders.CreateOrder(ctx, order, lines)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			w.logger.Info("payment already fulfilled", zap.String("payment_ref", paymentRef))
			w.finish(ctx, pending)
			return w.existing(ctx, paymentRef)
		}
		return nil, fmt.Errorf("failed to create order for payment %s: %w", paymentRef, err)
	}

	ids := make([]int, 0, len(changes))
	for _, c := range changes {
		ids = append(ids, c.ProductID)
		if c.Oversold() {
			w.logger.Warn("oversold product",
				zap.Int("order_id", order.OrderID),
				zap.Int("product_id", c.ProductID),
				zap.Int("stock", c.Before),
				zap.Int("requested", c.Requested),
			)
		}
	}
	if w.cache != nil {
		w.cache.Invalidate(ctx, ids...)
	}

	w.logger.Info("order created",
		zap.Int("order_id", order.OrderID),
		zap.Int("user_id", order.UserID),
		zap.String("payment_ref", paymentRef),
		zap.String("total", order.TotalPaid.StringFixed(2)),
	)

	result := &models.OrderWithLines{Order: *order, Lines: lines}

	w.notifier.OrderConfirmation(ctx, user, result)
	w.notifier.SaleAlert(ctx, user, result)

	w.finish(ctx, pending)

	return result, nil
}

// finish takes the paid lines out of the buyer's cart, clears the checkout
// state and forgets the pending checkout.
func (w *Writer) finish(ctx context.Context, pending *session.PendingCheckout) {
	s, err := w.store.Load(ctx, pending.SessionID)
	switch {
	case err == nil:
		s.CompleteCheckout(pending.Lines)
		if err := w.store.Save(ctx, s); err != nil {
			w.logger.Error("failed to clear checkout session", zap.String("session", s.ID), zap.Error(err))
		}
	case errors.Is(err, session.ErrNotFound):
	default:
		w.logger.Error("failed to load checkout session", zap.String("session", pending.SessionID), zap.Error(err))
	}

	if err := w.store.DeletePending(ctx, pending.PaymentRef); err != nil {
		w.logger.Error("failed to delete pending checkout", zap.String("payment_ref", pending.PaymentRef), zap.Error(err))
	}
}

func (w *Writer) existing(ctx context.Context, paymentRef string) (*models.OrderWithLines, error) {
	order, err := w.orders.GetByPaymentRef(ctx, paymentRef)
	if err != nil {
		return nil, err
	}
	return w.orders.GetOrderWithLines(ctx, order.OrderID)
}
