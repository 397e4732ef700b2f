package fulfillment_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
)

// memShop is an in-memory stand-in for the postgres repositories with the
// same stock semantics: decrements never go below zero.
type memShop struct {
	mu       sync.Mutex
	products map[int]*models.Product
	coupons  map[int]*models.Coupon
	users    map[int]*models.User
	orders   []*models.OrderWithLines
	reviews  []models.Review
	failNext error
}

func newMemShop() *memShop {
	return &memShop{
		products: map[int]*models.Product{},
		coupons:  map[int]*models.Coupon{},
		users:    map[int]*models.User{},
	}
}

func (m *memShop) GetByID(_ context.Context, id int) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memShop) stock(id int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

type memCoupons struct{ *memShop }

func (c memCoupons) GetActiveByID(_ context.Context, id int) (*models.Coupon, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	coupon, ok := c.coupons[id]
	if !ok || !coupon.Active {
		return nil, repository.ErrNotFound
	}
	cp := *coupon
	return &cp, nil
}

func (c memCoupons) GetActiveByCode(_ context.Context, code string) (*models.Coupon, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, coupon := range c.coupons {
		if coupon.Code == code && coupon.Active {
			cp := *coupon
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memUsers struct{ *memShop }

func (u memUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

type memOrders struct{ *memShop }

func (o memOrders) CreateOrder(_ context.Context, order *models.Order, lines []models.OrderLine) ([]models.StockChange, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.failNext != nil {
		err := o.failNext
		o.failNext = nil
		return nil, err
	}

	for _, existing := range o.orders {
		if order.PaymentRef != "" && existing.PaymentRef == order.PaymentRef {
			return nil, repository.ErrDuplicate
		}
	}

	order.OrderID = len(o.orders) + 1
	order.CreatedAt = time.Now()

	var changes []models.StockChange
	for i := range lines {
		lines[i].OrderID = order.OrderID
		lines[i].OrderLineID = i + 1
		if lines[i].ProductID == nil {
			continue
		}
		p, ok := o.products[*lines[i].ProductID]
		if !ok {
			lines[i].ProductID = nil
			continue
		}
		before := p.Stock
		p.Stock = max(p.Stock-lines[i].Quantity, 0)
		changes = append(changes, models.StockChange{
			ProductID: p.ProductID,
			Before:    before,
			After:     p.Stock,
			Requested: lines[i].Quantity,
		})
	}

	stored := &models.OrderWithLines{Order: *order, Lines: append([]models.OrderLine(nil), lines...)}
	o.orders = append(o.orders, stored)

	return changes, nil
}

func (o memOrders) find(pred func(*models.OrderWithLines) bool) (*models.OrderWithLines, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, order := range o.orders {
		if pred(order) {
			cp := *order
			cp.Lines = append([]models.OrderLine(nil), order.Lines...)
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (o memOrders) GetByID(_ context.Context, id int) (*models.Order, error) {
	order, err := o.find(func(ow *models.OrderWithLines) bool { return ow.OrderID == id })
	if err != nil {
		return nil, err
	}
	return &order.Order, nil
}

func (o memOrders) GetByPaymentRef(_ context.Context, ref string) (*models.Order, error) {
	order, err := o.find(func(ow *models.OrderWithLines) bool { return ow.PaymentRef == ref })
	if err != nil {
		return nil, err
	}
	return &order.Order, nil
}

func (o memOrders) GetOrderWithLines(_ context.Context, id int) (*models.OrderWithLines, error) {
	return o.find(func(ow *models.OrderWithLines) bool { return ow.OrderID == id })
}

func (o memOrders) GetAll(_ context.Context) ([]models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := []models.Order{}
	for i := len(o.orders) - 1; i >= 0; i-- {
		out = append(out, o.orders[i].Order)
	}
	return out, nil
}

func (o memOrders) GetByUserID(_ context.Context, userID int) ([]models.OrderWithLines, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := []models.OrderWithLines{}
	for i := len(o.orders) - 1; i >= 0; i-- {
		if o.orders[i].UserID == userID {
			cp := *o.orders[i]
			cp.Lines = append([]models.OrderLine(nil), o.orders[i].Lines...)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (o memOrders) UpdateStatus(_ context.Context, id int, status models.OrderStatus) (models.OrderStatus, error) {
	if !status.Valid() {
		return "", repository.ErrInvalidInput
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, order := range o.orders {
		if order.OrderID == id {
			prev := order.Status
			order.Status = status
			return prev, nil
		}
	}
	return "", repository.ErrNotFound
}

type memReviews struct{ *memShop }

func (r memReviews) Create(_ context.Context, rv *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv.ReviewID = len(r.reviews) + 1
	rv.CreatedAt = time.Now()
	r.reviews = append(r.reviews, *rv)
	return nil
}

func (r memReviews) GetByProductID(_ context.Context, productID int) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Review{}
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReviewID > out[j].ReviewID })
	return out, nil
}

type sentMail struct {
	kind    string
	orderID int
	to      string
}

type mailbox struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *mailbox) record(kind string, orderID int, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: kind, orderID: orderID, to: to})
}

func (m *mailbox) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.kind == kind {
			n++
		}
	}
	return n
}

func (m *mailbox) OrderConfirmation(_ context.Context, user *models.User, order *models.OrderWithLines) {
	m.record("confirmation", order.OrderID, user.Email)
}

func (m *mailbox) SaleAlert(_ context.Context, _ *models.User, order *models.OrderWithLines) {
	m.record("sale", order.OrderID, "operator")
}

func (m *mailbox) Shipped(_ context.Context, user *models.User, order *models.Order) {
	m.record("shipped", order.OrderID, user.Email)
}
