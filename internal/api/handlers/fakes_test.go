package handlers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/payment"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

type memProducts struct {
	mu       sync.Mutex
	products map[int]models.Product
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(p.Name) == "" {
		return repository.ErrInvalidInput
	}
	p.ProductID = len(m.products) + 100
	m.products[p.ProductID] = *p
	return nil
}

func (m *memProducts) GetByID(_ context.Context, id int) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) sorted() []models.Product {
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func (m *memProducts) GetPage(_ context.Context, page, perPage int) ([]models.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted()
	start := min((page-1)*perPage, len(all))
	end := min(start+perPage, len(all))
	return all[start:end], len(all), nil
}

func (m *memProducts) GetAll(_ context.Context, filter repository.StockFilter) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for _, p := range m.sorted() {
		switch {
		case filter == repository.StockSoldOut && p.Stock > 0:
		case filter == repository.StockInStock && p.Stock <= 0:
		default:
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) SearchByName(_ context.Context, q string) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	if q == "" {
		return out, nil
	}
	for _, p := range m.sorted() {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) Update(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ProductID]; !ok {
		return repository.ErrNotFound
	}
	m.products[p.ProductID] = *p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

type memCoupons struct {
	coupons map[int]models.Coupon
}

func (m *memCoupons) Create(_ context.Context, c *models.Coupon) error {
	for _, existing := range m.coupons {
		if existing.Code == c.Code {
			return repository.ErrDuplicate
		}
	}
	c.CouponID = len(m.coupons) + 1
	m.coupons[c.CouponID] = *c
	return nil
}

func (m *memCoupons) GetByID(_ context.Context, id int) (*models.Coupon, error) {
	c, ok := m.coupons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *memCoupons) GetActiveByID(ctx context.Context, id int) (*models.Coupon, error) {
	c, err := m.GetByID(ctx, id)
	if err != nil || !c.Active {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (m *memCoupons) GetActiveByCode(_ context.Context, code string) (*models.Coupon, error) {
	for _, c := range m.coupons {
		if c.Code == code && c.Active {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCoupons) GetAll(_ context.Context) ([]models.Coupon, error) {
	out := []models.Coupon{}
	for _, c := range m.coupons {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCoupons) Update(_ context.Context, c *models.Coupon) error {
	if _, ok := m.coupons[c.CouponID]; !ok {
		return repository.ErrNotFound
	}
	m.coupons[c.CouponID] = *c
	return nil
}

func (m *memCoupons) Delete(_ context.Context, id int) error {
	if _, ok := m.coupons[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.coupons, id)
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[int]models.User
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.UserID = len(m.users) + 1
	m.users[u.UserID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.UserID] = *u
	return nil
}

type memOrders struct {
	repository.OrderRepository
	orders []models.OrderWithLines
}

func (m *memOrders) GetByID(_ context.Context, id int) (*models.Order, error) {
	for _, o := range m.orders {
		if o.OrderID == id {
			return &o.Order, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memOrders) GetByPaymentRef(_ context.Context, ref string) (*models.Order, error) {
	for _, o := range m.orders {
		if o.PaymentRef == ref {
			return &o.Order, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memOrders) GetOrderWithLines(_ context.Context, id int) (*models.OrderWithLines, error) {
	for _, o := range m.orders {
		if o.OrderID == id {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memOrders) GetByUserID(_ context.Context, userID int) ([]models.OrderWithLines, error) {
	out := []models.OrderWithLines{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) GetAll(_ context.Context) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range m.orders {
		out = append(out, o.Order)
	}
	return out, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id int, status models.OrderStatus) (models.OrderStatus, error) {
	if !status.Valid() {
		return "", repository.ErrInvalidInput
	}
	for i := range m.orders {
		if m.orders[i].OrderID == id {
			prev := m.orders[i].Status
			m.orders[i].Status = status
			return prev, nil
		}
	}
	return "", repository.ErrNotFound
}

type memReviews struct {
	reviews []models.Review
}

func (m *memReviews) Create(_ context.Context, rv *models.Review) error {
	rv.ReviewID = len(m.reviews) + 1
	m.reviews = append(m.reviews, *rv)
	return nil
}

func (m *memReviews) GetByProductID(_ context.Context, productID int) ([]models.Review, error) {
	out := []models.Review{}
	for _, rv := range m.reviews {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type memOperations struct{}

func (memOperations) Create(context.Context, *models.Operation) error { return nil }

func (memOperations) GetByProductID(_ context.Context, productID int) ([]models.Operation, error) {
	return []models.Operation{{OperationID: 1, ProductID: productID, OperationType: models.OperationAdjustment, ChangeQuant: 5}}, nil
}

func (memOperations) GetByOrderID(context.Context, int) ([]models.Operation, error) {
	return []models.Operation{}, nil
}

type fakePayments struct {
	err     error
	event   *payment.Event
	created []*session.Session
}

func (f *fakePayments) CreatePayment(_ context.Context, s *session.Session) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, s)
	return "https://pay.example/cs_test_1", nil
}

func (f *fakePayments) ParseEvent(payload []byte, signature string) (*payment.Event, error) {
	if signature != "valid" {
		return nil, payment.ErrInvalidEvent
	}
	return f.event, nil
}

type fakeFulfiller struct {
	refs []string
	err  error
}

func (f *fakeFulfiller) Fulfill(_ context.Context, ref string) (*models.OrderWithLines, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.refs = append(f.refs, ref)
	return &models.OrderWithLines{Order: models.Order{OrderID: 77, PaymentRef: ref}}, nil
}

type contactRecorder struct {
	messages []string
	err      error
}

func (c *contactRecorder) Contact(_ context.Context, name, email, subject, body string) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, name+"|"+email+"|"+subject+"|"+body)
	return nil
}

var errBoom = errors.New("boom")
