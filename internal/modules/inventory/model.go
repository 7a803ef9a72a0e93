package inventory

import "errors"

// Ledger errors. NotFound and InsufficientStock surface to the caller and
// are never retried here; Conflict is produced only after the ledger's own
// bounded retries are exhausted.
var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("concurrent stock update conflict")
)

// StockLevel is the snapshot returned by stock queries.
type StockLevel struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}
