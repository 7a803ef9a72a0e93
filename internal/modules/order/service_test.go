package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/velorahq/velora-backend/internal/modules/inventory"
)

type stubLedger struct {
	stock map[string]int
}

func newStubLedger() *stubLedger { return &stubLedger{stock: map[string]int{}} }

func (l *stubLedger) Reserve(_ context.Context, productID string, qty int, _, _ string) error {
	if l.stock[productID] < qty {
		return inventory.ErrInsufficientStock
	}
	l.stock[productID] -= qty
	return nil
}

func (l *stubLedger) Release(_ context.Context, productID string, qty int, _, _ string) error {
	l.stock[productID] += qty
	return nil
}

func (l *stubLedger) Stock(_ context.Context, productID string) (*inventory.StockLevel, error) {
	return &inventory.StockLevel{ProductID: productID, Stock: l.stock[productID]}, nil
}

func (l *stubLedger) SetStock(_ context.Context, productID string, stock int) error {
	l.stock[productID] = stock
	return nil
}

type memOrderRepo struct {
	orders    map[uuid.UUID]*Order
	createErr error
}

func newMemOrderRepo() *memOrderRepo { return &memOrderRepo{orders: map[uuid.UUID]*Order{}} }

func (r *memOrderRepo) Create(_ context.Context, o *Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*Order, error) {
	var out []*Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) ListAll(_ context.Context) ([]*Order, error) {
	var out []*Order
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status, deliveredAt *time.Time) error {
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.DeliveredAt = deliveredAt
	return nil
}

func validShipping() ShippingInfo {
	return ShippingInfo{Address: "1 Main St", City: "Lusaka", Country: "Zambia"}
}

func TestCreateReservesEveryLine(t *testing.T) {
	ledger := newStubLedger()
	repo := newMemOrderRepo()
	svc := NewService(repo, ledger, zap.NewNop())

	p1 := uuid.NewString()
	p2 := uuid.NewString()
	ledger.stock[p1] = 10
	ledger.stock[p2] = 10

	o, err := svc.Create(context.Background(), uuid.NewString(), CreateOrderRequest{
		Items: []CreateItem{
			{ProductID: p1, Name: "Tee", Price: 20, Quantity: 2, Size: "M", Color: "Black"},
			{ProductID: p2, Name: "Hoodie", Price: 45, Quantity: 1},
		},
		Shipping:    validShipping(),
		TotalAmount: 85,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusProcessing, o.Status)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, 8, ledger.stock[p1])
	assert.Equal(t, 9, ledger.stock[p2])
	assert.Nil(t, o.PaidAt, "COD orders are unpaid at creation")
}

func TestCreateUnwindsReservedPrefixOnFailure(t *testing.T) {
	ledger := newStubLedger()
	repo := newMemOrderRepo()
	svc := NewService(repo, ledger, zap.NewNop())

	p1 := uuid.NewString()
	p2 := uuid.NewString()
	ledger.stock[p1] = 10
	ledger.stock[p2] = 0 // second line cannot be reserved

	_, err := svc.Create(context.Background(), uuid.NewString(), CreateOrderRequest{
		Items: []CreateItem{
			{ProductID: p1, Name: "Tee", Quantity: 3},
			{ProductID: p2, Name: "Hoodie", Quantity: 1},
		},
		Shipping: validShipping(),
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	assert.Equal(t, 10, ledger.stock[p1], "the reserved prefix must be released")
	assert.Empty(t, repo.orders)
}

func TestCreateUnwindsWhenPersistFails(t *testing.T) {
	ledger := newStubLedger()
	repo := newMemOrderRepo()
	repo.createErr = errors.New("db down")
	svc := NewService(repo, ledger, zap.NewNop())

	pid := uuid.NewString()
	ledger.stock[pid] = 5

	_, err := svc.Create(context.Background(), uuid.NewString(), CreateOrderRequest{
		Items:    []CreateItem{{ProductID: pid, Name: "Tee", Quantity: 2}},
		Shipping: validShipping(),
	})
	require.Error(t, err)
	assert.Equal(t, 5, ledger.stock[pid])
}

func TestCreateMarksOnlinePaymentPaid(t *testing.T) {
	ledger := newStubLedger()
	svc := NewService(newMemOrderRepo(), ledger, zap.NewNop())

	pid := uuid.NewString()
	ledger.stock[pid] = 5

	o, err := svc.Create(context.Background(), uuid.NewString(), CreateOrderRequest{
		Items:         []CreateItem{{ProductID: pid, Name: "Tee", Quantity: 1}},
		Shipping:      validShipping(),
		PaymentMethod: "ONLINE",
		Payment:       PaymentInfo{ID: "pay_123", Status: "captured"},
	})
	require.NoError(t, err)
	require.NotNil(t, o.PaidAt)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusProcessing, StatusShipped))
	assert.True(t, CanTransition(StatusShipped, StatusDelivered))
	assert.True(t, CanTransition(StatusProcessing, StatusCancelled))
	assert.True(t, CanTransition(StatusShipped, StatusCancelled))

	assert.False(t, CanTransition(StatusProcessing, StatusDelivered))
	assert.False(t, CanTransition(StatusDelivered, StatusShipped))
	assert.False(t, CanTransition(StatusDelivered, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusProcessing))
}

func TestAdvanceStepsForwardAndStampsDelivery(t *testing.T) {
	ledger := newStubLedger()
	repo := newMemOrderRepo()
	svc := NewService(repo, ledger, zap.NewNop())
	ctx := context.Background()

	pid := uuid.NewString()
	ledger.stock[pid] = 5
	o, err := svc.Create(ctx, uuid.NewString(), CreateOrderRequest{
		Items:    []CreateItem{{ProductID: pid, Name: "Tee", Quantity: 1}},
		Shipping: validShipping(),
	})
	require.NoError(t, err)

	o, err = svc.Advance(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o.Status)

	o, err = svc.Advance(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, o.Status)
	require.NotNil(t, o.DeliveredAt)

	_, err = svc.Advance(ctx, o.ID.String())
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelReleasesReservations(t *testing.T) {
	ledger := newStubLedger()
	repo := newMemOrderRepo()
	svc := NewService(repo, ledger, zap.NewNop())
	ctx := context.Background()

	pid := uuid.NewString()
	ledger.stock[pid] = 10
	o, err := svc.Create(ctx, uuid.NewString(), CreateOrderRequest{
		Items:    []CreateItem{{ProductID: pid, Name: "Tee", Quantity: 4}},
		Shipping: validShipping(),
	})
	require.NoError(t, err)
	require.Equal(t, 6, ledger.stock[pid])

	o, err = svc.Cancel(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, 10, ledger.stock[pid], "cancellation must return stock")
}

func TestCancelDeliveredOrderFails(t *testing.T) {
	ledger := newStubLedger()
	repo := newMemOrderRepo()
	svc := NewService(repo, ledger, zap.NewNop())
	ctx := context.Background()

	pid := uuid.NewString()
	ledger.stock[pid] = 5
	o, err := svc.Create(ctx, uuid.NewString(), CreateOrderRequest{
		Items:    []CreateItem{{ProductID: pid, Name: "Tee", Quantity: 1}},
		Shipping: validShipping(),
	})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, o.ID.String())
	require.NoError(t, err)
	_, err = svc.Advance(ctx, o.ID.String())
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, o.ID.String())
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 4, ledger.stock[pid], "a rejected cancellation releases nothing")
}

func TestUpdateStatusCancelledDelegatesToCancel(t *testing.T) {
	ledger := newStubLedger()
	repo := newMemOrderRepo()
	svc := NewService(repo, ledger, zap.NewNop())
	ctx := context.Background()

	pid := uuid.NewString()
	ledger.stock[pid] = 5
	o, err := svc.Create(ctx, uuid.NewString(), CreateOrderRequest{
		Items:    []CreateItem{{ProductID: pid, Name: "Tee", Quantity: 2}},
		Shipping: validShipping(),
	})
	require.NoError(t, err)

	o, err = svc.UpdateStatus(ctx, o.ID.String(), StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, 5, ledger.stock[pid])
}
