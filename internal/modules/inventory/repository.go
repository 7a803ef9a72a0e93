package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage primitive behind the ledger. Reserve and Release
// must each be atomic for the whole product document: product-level stock and
// the matching variant's stock change together or not at all.
type Repository interface {
	// Reserve decrements product stock, and variant stock when a matching
	// (color, size) pair exists. Returns ErrNotFound or ErrInsufficientStock.
	Reserve(ctx context.Context, productID uuid.UUID, qty int, size, color string) error

	// Release increments product stock, and variant stock when a matching
	// pair exists. It never fails for stock reasons.
	Release(ctx context.Context, productID uuid.UUID, qty int, size, color string) error

	// Stock returns the current product-level stock.
	Stock(ctx context.Context, productID uuid.UUID) (int, error)

	// SetStock sets the absolute product-level stock (admin operation).
	SetStock(ctx context.Context, productID uuid.UUID, stock int) error
}
