package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Line quantity bounds, enforced here rather than in the ledger.
const (
	MinQuantity = 1
	MaxQuantity = 10
)

var (
	ErrItemNotFound   = errors.New("item not in cart")
	ErrMinimumReached = errors.New("minimum quantity is 1")
	ErrMaxQuantity    = errors.New("max quantity reached")
)

// Item is one cart line. Its identity is the (product, size, color) triple:
// two additions with the same triple merge by summing quantity, anything else
// is a new line.
type Item struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

// Cart is the per-user aggregate, created lazily on first addition.
type Cart struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user"`
	Items     []*Item   `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddItemRequest is the payload for adding a line to the cart. Name, image
// and price are denormalized snapshots of the product at add time.
type AddItemRequest struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
}
