package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines cart data storage. The cart row is the unit of mutual
// exclusion: implementations serialize mutations per user.
type Repository interface {
	// GetByUser returns the user's cart, or an empty cart when none exists.
	GetByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// GetItem finds the line matching the identity triple, or ErrItemNotFound.
	GetItem(ctx context.Context, userID, productID uuid.UUID, size, color string) (*Item, error)

	// UpsertItem creates the cart if needed and merges the line: an existing
	// identity triple has its quantity increased, otherwise a row is inserted.
	UpsertItem(ctx context.Context, userID uuid.UUID, item *Item) error

	// IncrementQuantity adds one to the line, atomically refusing to pass
	// max. Returns ErrMaxQuantity at the ceiling, ErrItemNotFound when the
	// line is gone.
	IncrementQuantity(ctx context.Context, itemID uuid.UUID, max int) error

	// DecrementQuantity subtracts one from the line, atomically refusing to
	// pass min. Returns ErrMinimumReached at the floor, ErrItemNotFound when
	// the line is gone.
	DecrementQuantity(ctx context.Context, itemID uuid.UUID, min int) error

	// DeleteItem removes one line and reports the quantity it held at the
	// moment of deletion.
	DeleteItem(ctx context.Context, itemID uuid.UUID) (int, error)
}
