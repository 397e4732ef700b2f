package orders

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
)

type Users interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

type Notifier interface {
	Shipped(ctx context.Context, user *models.User, order *models.Order)
}

type Service struct {
	orders   repository.OrderRepository
	users    Users
	notifier Notifier
	logger   *zap.Logger
}

func NewService(orders repository.OrderRepository, users Users, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{orders: orders, users: users, notifier: notifier, logger: logger}
}

// History lists the user's orders newest first, each with its lines.
func (s *Service) History(ctx context.Context, userID int) ([]models.OrderWithLines, error) {
	return s.orders.GetByUserID(ctx, userID)
}

// ForUser returns the order only when it belongs to userID.
func (s *Service) ForUser(ctx context.Context, userID, orderID int) (*models.OrderWithLines, error) {
	order, err := s.orders.GetOrderWithLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (s *Service) ByPaymentRef(ctx context.Context, userID int, ref string) (*models.OrderWithLines, error) {
	order, err := s.orders.GetByPaymentRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.ForUser(ctx, userID, order.OrderID)
}

func (s *Service) All(ctx context.Context) ([]models.Order, error) {
	return s.orders.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, orderID int) (*models.OrderWithLines, error) {
	return s.orders.GetOrderWithLines(ctx, orderID)
}

// ChangeStatus stores the new status. Moving into Shipped from any other
// status emails the buyer; saving Shipped again does not.
func (s *Service) ChangeStatus(ctx context.Context, orderID int, status models.OrderStatus) (*models.Order, error) {
	previous, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order %d: %w", orderID, err)
	}

	s.logger.Info("order status changed",
		zap.Int("order_id", orderID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)

	if previous != models.OrderShipped && status == models.OrderShipped {
		user, err := s.users.GetByID(ctx, order.UserID)
		if err != nil {
			s.logger.Error("failed to load buyer for shipment email", zap.Int("order_id", orderID), zap.Error(err))
			return order, nil
		}
		s.notifier.Shipped(ctx, user, order)
	}

	return order, nil
}
