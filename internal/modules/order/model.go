package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// validTransitions defines the allowed status state machine. Transitions are
// forward-only; delivered and cancelled are terminal.
var validTransitions = map[Status][]Status{
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from may advance to to.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ShippingInfo is the delivery address snapshot.
type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
}

// PaymentInfo records the external payment reference for online orders.
type PaymentInfo struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

// Item is one immutable order line, snapshotted at creation.
type Item struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

// Order is an immutable snapshot of a purchase; only its status moves.
type Order struct {
	ID              uuid.UUID    `json:"id"`
	UserID          uuid.UUID    `json:"user"`
	Items           []*Item      `json:"items"`
	Shipping        ShippingInfo `json:"shipping_info"`
	PaymentMethod   string       `json:"payment_method"`
	Payment         PaymentInfo  `json:"payment_info"`
	ItemPrice       float64      `json:"item_price"`
	Tax             float64      `json:"tax"`
	ShippingCharges float64      `json:"shipping_charges"`
	TotalAmount     float64      `json:"total_amount"`
	Status          Status       `json:"order_status"`
	Notes           string       `json:"notes,omitempty"`
	PaidAt          *time.Time   `json:"paid_at,omitempty"`
	DeliveredAt     *time.Time   `json:"delivered_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// CreateItem describes one requested line at order creation.
type CreateItem struct {
	ProductID string  `json:"product"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
}

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	Shipping        ShippingInfo `json:"shippingInfo"`
	Items           []CreateItem `json:"orderItems"`
	PaymentMethod   string       `json:"paymentMethod"`
	Payment         PaymentInfo  `json:"paymentInfo"`
	ItemPrice       float64      `json:"itemPrice"`
	Tax             float64      `json:"tax"`
	ShippingCharges float64      `json:"shippingCharges"`
	TotalAmount     float64      `json:"totalAmount"`
	Notes           string       `json:"notes"`
}
