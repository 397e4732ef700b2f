package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
)

type memOrders struct {
	repository.OrderRepository
	orders map[int]*models.Order
}

func (m *memOrders) GetByID(_ context.Context, id int) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) GetOrderWithLines(ctx context.Context, id int) (*models.OrderWithLines, error) {
	o, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.OrderWithLines{Order: *o, Lines: []models.OrderLine{}}, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id int, status models.OrderStatus) (models.OrderStatus, error) {
	if !status.Valid() {
		return "", repository.ErrInvalidInput
	}
	o, ok := m.orders[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	prev := o.Status
	o.Status = status
	return prev, nil
}

type users map[int]*models.User

func (u users) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

type shippedRecorder struct {
	orders []int
}

func (r *shippedRecorder) Shipped(_ context.Context, _ *models.User, order *models.Order) {
	r.orders = append(r.orders, order.OrderID)
}

func newService(status models.OrderStatus) (*Service, *shippedRecorder) {
	repo := &memOrders{orders: map[int]*models.Order{
		1: {OrderID: 1, UserID: 7, Status: status},
	}}
	rec := &shippedRecorder{}
	u := users{7: {UserID: 7, Username: "ana", Email: "ana@example.com"}}
	return NewService(repo, u, rec, zap.NewNop()), rec
}

func TestService_ChangeStatusShipmentEmail(t *testing.T) {
	statuses := []models.OrderStatus{
		models.OrderPaid,
		models.OrderProcessing,
		models.OrderShipped,
		models.OrderDelivered,
		models.OrderCancelled,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				svc, rec := newService(from)

				order, err := svc.ChangeStatus(context.Background(), 1, to)
				require.NoError(t, err)
				assert.Equal(t, to, order.Status)

				want := 0
				if from != models.OrderShipped && to == models.OrderShipped {
					want = 1
				}
				assert.Len(t, rec.orders, want)
			})
		}
	}
}

func TestService_ChangeStatusRepeatedShippedSendsOnce(t *testing.T) {
	svc, rec := newService(models.OrderProcessing)

	for i := 0; i < 3; i++ {
		_, err := svc.ChangeStatus(context.Background(), 1, models.OrderShipped)
		require.NoError(t, err)
	}

	assert.Equal(t, []int{1}, rec.orders)
}

func TestService_ChangeStatusErrors(t *testing.T) {
	svc, rec := newService(models.OrderPaid)

	_, err := svc.ChangeStatus(context.Background(), 1, "Lost")
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = svc.ChangeStatus(context.Background(), 99, models.OrderShipped)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, rec.orders)
}

func TestService_ForUserHidesOtherUsersOrders(t *testing.T) {
	svc, _ := newService(models.OrderPaid)

	order, err := svc.ForUser(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, order.OrderID)

	_, err = svc.ForUser(context.Background(), 8, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
