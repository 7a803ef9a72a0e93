package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines data access for orders.
type Repository interface {
	// Create persists a new order and its items atomically in a transaction.
	Create(ctx context.Context, o *Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// ListByUser returns the user's orders, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// ListAll returns every order (admin view), most recent first.
	ListAll(ctx context.Context) ([]*Order, error)

	// UpdateStatus advances an order to a new status, optionally recording
	// the delivery time.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, deliveredAt *time.Time) error
}
