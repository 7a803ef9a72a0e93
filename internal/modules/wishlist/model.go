package wishlist

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrItemNotFound = errors.New("item not in wishlist")

// Item is one wishlist entry, identified by (product, size, color) like a
// cart line but without a quantity.
type Item struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Price     float64   `json:"price"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// Wishlist is the per-user collection.
type Wishlist struct {
	UserID uuid.UUID `json:"user"`
	Items  []*Item   `json:"items"`
}

// AddItemRequest is the payload for adding an item to the wishlist.
type AddItemRequest struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
}
