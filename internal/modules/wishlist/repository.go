package wishlist

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines wishlist data storage.
type Repository interface {
	// GetByUser returns the user's wishlist, empty when none exists.
	GetByUser(ctx context.Context, userID uuid.UUID) (*Wishlist, error)

	// AddItem inserts an item; an existing identity triple is left untouched.
	AddItem(ctx context.Context, userID uuid.UUID, item *Item) error

	// FindItem locates an item by the identity triple. Empty size and color
	// match the first item for the product, whatever its variant.
	FindItem(ctx context.Context, userID, productID uuid.UUID, size, color string) (*Item, error)

	// RemoveItem deletes by the identity triple; empty size and color delete
	// every variant of the product.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, size, color string) error

	// RemoveByID deletes a single item row.
	RemoveByID(ctx context.Context, itemID uuid.UUID) error

	// Clear empties the user's wishlist.
	Clear(ctx context.Context, userID uuid.UUID) error
}
