package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type StockError struct {
	ProductID int
	Name      string
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("only %d of %s available", e.Available, e.Name)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// Catalog must read live stock; a cached catalog would let stale counts through.
type Catalog interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
}

type Manager struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewManager(catalog Catalog, logger *zap.Logger) *Manager {
	return &Manager{catalog: catalog, logger: logger}
}

// Add puts one more unit of the product in the cart. It fails with a
// *StockError when that would exceed live stock, leaving the cart unchanged.
func (m *Manager) Add(ctx context.Context, s *session.Session, productID int) error {
	product, err := m.catalog.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	current := s.Cart.Quantity(productID)
	if current+1 > product.Stock {
		return &StockError{ProductID: productID, Name: product.Name, Available: product.Stock}
	}

	if i, ok := s.Cart.Find(productID); ok {
		s.Cart.Lines[i].Quantity++
		return nil
	}

	s.Cart.Lines = append(s.Cart.Lines, session.Line{
		ProductID: productID,
		Quantity:  1,
		Price:     product.Price,
	})
	return nil
}

// Update sets the quantity of a line already in the cart. A quantity of zero
// or less removes the line. A quantity above live stock is clamped, and the
// returned *StockError says so; the cart has still been updated in that case.
func (m *Manager) Update(ctx context.Context, s *session.Session, productID, quantity int) error {
	product, err := m.catalog.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	i, ok := s.Cart.Find(productID)
	if !ok {
		return nil
	}

	if quantity <= 0 {
		s.Cart.Remove(productID)
		return nil
	}

	if quantity > product.Stock {
		m.logger.Info("cart quantity clamped to stock",
			zap.String("session", s.ID),
			zap.Int("product_id", productID),
			zap.Int("requested", quantity),
			zap.Int("stock", product.Stock),
		)
		if product.Stock <= 0 {
			s.Cart.Remove(productID)
		} else {
			s.Cart.Lines[i].Quantity = product.Stock
		}
		return &StockError{ProductID: productID, Name: product.Name, Available: product.Stock}
	}

	s.Cart.Lines[i].Quantity = quantity
	return nil
}

func (m *Manager) Remove(ctx context.Context, s *session.Session, productID int) error {
	if _, err := m.catalog.GetByID(ctx, productID); err != nil {
		return err
	}

	s.Cart.Remove(productID)
	return nil
}

type ViewLine struct {
	Product  models.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type View struct {
	Lines    []ViewLine      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

// View resolves the cart against the catalog. Lines whose product has been
// deleted are dropped from the session.
func (m *Manager) View(ctx context.Context, s *session.Session) (*View, error) {
	view := &View{Lines: []ViewLine{}, Subtotal: decimal.Zero}

	kept := make([]session.Line, 0, len(s.Cart.Lines))
	for _, line := range s.Cart.Lines {
		product, err := m.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				m.logger.Info("dropping deleted product from cart",
					zap.String("session", s.ID), zap.Int("product_id", line.ProductID))
				continue
			}
			return nil, err
		}

		subtotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Lines = append(view.Lines, ViewLine{
			Product:  *product,
			Quantity: line.Quantity,
			Price:    line.Price,
			Subtotal: subtotal,
		})
		view.Subtotal = view.Subtotal.Add(subtotal)
		view.Count += line.Quantity
		kept = append(kept, line)
	}
	if len(kept) != len(s.Cart.Lines) {
		s.Cart.Lines = kept
	}

	return view, nil
}
