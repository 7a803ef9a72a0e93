package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/velorahq/velora-backend/internal/modules/inventory"
)

// Service defines order management business logic.
type Service interface {
	// Create reserves stock for every requested line through the inventory
	// ledger, then persists the order snapshot. A failed reservation releases
	// whatever was already reserved and aborts.
	Create(ctx context.Context, userID string, req CreateOrderRequest) (*Order, error)

	// Get retrieves one order.
	Get(ctx context.Context, id string) (*Order, error)

	// ListMine returns the user's orders, most recent first.
	ListMine(ctx context.Context, userID string) ([]*Order, error)

	// ListAll returns every order (admin).
	ListAll(ctx context.Context) ([]*Order, error)

	// UpdateStatus moves an order to an explicit new status.
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)

	// Advance steps an order to its next forward status.
	Advance(ctx context.Context, id string) (*Order, error)

	// Cancel cancels the order and releases its stock reservations.
	Cancel(ctx context.Context, id string) (*Order, error)
}

type service struct {
	repo   Repository
	ledger inventory.Ledger
	log    *zap.Logger
}

// NewService creates the order service.
func NewService(repo Repository, ledger inventory.Ledger, log *zap.Logger) Service {
	return &service{repo: repo, ledger: ledger, log: log}
}

func (s *service) Create(ctx context.Context, userID string, req CreateOrderRequest) (*Order, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}
	if req.Shipping.Address == "" || req.Shipping.City == "" || req.Shipping.Country == "" {
		return nil, fmt.Errorf("shipping address, city and country are required")
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "COD"
	}

	// Reserve stock line by line; unwind the reserved prefix on failure.
	var items []*Item
	for i, ci := range req.Items {
		if ci.Quantity <= 0 {
			s.unwind(ctx, items)
			return nil, fmt.Errorf("quantity must be > 0 for product %s", ci.ProductID)
		}
		pid, err := uuid.Parse(ci.ProductID)
		if err != nil {
			s.unwind(ctx, items)
			return nil, fmt.Errorf("invalid product id at item %d: %w", i, err)
		}
		if err := s.ledger.Reserve(ctx, ci.ProductID, ci.Quantity, ci.Size, ci.Color); err != nil {
			s.unwind(ctx, items)
			return nil, fmt.Errorf("reserve stock for %s: %w", ci.ProductID, err)
		}
		items = append(items, &Item{
			ID:        uuid.New(),
			ProductID: pid,
			Name:      ci.Name,
			Image:     ci.Image,
			Price:     ci.Price,
			Quantity:  ci.Quantity,
			Size:      ci.Size,
			Color:     ci.Color,
		})
	}

	o := &Order{
		ID:              uuid.New(),
		UserID:          uid,
		Items:           items,
		Shipping:        req.Shipping,
		PaymentMethod:   paymentMethod,
		Payment:         req.Payment,
		ItemPrice:       req.ItemPrice,
		Tax:             req.Tax,
		ShippingCharges: req.ShippingCharges,
		TotalAmount:     req.TotalAmount,
		Status:          StatusProcessing,
		Notes:           req.Notes,
	}
	if paymentMethod == "ONLINE" && req.Payment.ID != "" {
		now := time.Now().UTC()
		o.PaidAt = &now
	}

	if err := s.repo.Create(ctx, o); err != nil {
		s.unwind(ctx, items)
		return nil, fmt.Errorf("persist order: %w", err)
	}
	return o, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}
	return s.repo.GetByID(ctx, oid)
}

func (s *service) ListMine(ctx context.Context, userID string) ([]*Order, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	return s.repo.ListByUser(ctx, uid)
}

func (s *service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if status == StatusCancelled {
		return s.Cancel(ctx, id)
	}
	return s.transition(ctx, id, func(o *Order) (Status, error) {
		if !CanTransition(o.Status, status) {
			return "", fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, status)
		}
		return status, nil
	})
}

func (s *service) Advance(ctx context.Context, id string) (*Order, error) {
	return s.transition(ctx, id, func(o *Order) (Status, error) {
		switch o.Status {
		case StatusProcessing:
			return StatusShipped, nil
		case StatusShipped:
			return StatusDelivered, nil
		default:
			return "", fmt.Errorf("%w: order is already %s", ErrInvalidTransition, o.Status)
		}
	})
}

// Cancel moves the order to cancelled and returns every line's reservation
// to the ledger. Releases never fail for stock reasons; a storage error on
// one line is logged and the remaining lines are still released.
func (s *service) Cancel(ctx context.Context, id string) (*Order, error) {
	o, err := s.transition(ctx, id, func(o *Order) (Status, error) {
		if !CanTransition(o.Status, StatusCancelled) {
			return "", fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, StatusCancelled)
		}
		return StatusCancelled, nil
	})
	if err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		if err := s.ledger.Release(ctx, item.ProductID.String(), item.Quantity, item.Size, item.Color); err != nil {
			s.log.Error("release stock on cancellation failed",
				zap.String("order_id", o.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
		}
	}
	return o, nil
}

func (s *service) transition(ctx context.Context, id string, next func(*Order) (Status, error)) (*Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}
	o, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	status, err := next(o)
	if err != nil {
		return nil, err
	}

	var deliveredAt *time.Time
	if status == StatusDelivered {
		now := time.Now().UTC()
		deliveredAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, oid, status, deliveredAt); err != nil {
		return nil, err
	}
	o.Status = status
	o.DeliveredAt = deliveredAt
	return o, nil
}

// unwind releases reservations made before a creation failure.
func (s *service) unwind(ctx context.Context, items []*Item) {
	for _, item := range items {
		if err := s.ledger.Release(ctx, item.ProductID.String(), item.Quantity, item.Size, item.Color); err != nil {
			s.log.Error("release stock on failed order creation",
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
		}
	}
}
