package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// maxRetries bounds the ledger's automatic retries on a retryable storage
// conflict. Retries re-run the whole conditional update against fresh state.
const maxRetries = 3

// Ledger is the single source of truth for how many units of a variant can
// still be sold. Reserve and Release are not idempotent; callers retry the
// logical user action, never the raw call.
type Ledger interface {
	// Reserve claims qty units of a product, and of its (color, size) variant
	// when one matches. Fails with ErrNotFound, ErrInsufficientStock or, after
	// exhausted retries, ErrConflict.
	Reserve(ctx context.Context, productID string, qty int, size, color string) error

	// Release returns qty units. It is the inverse of Reserve and never fails
	// for stock reasons; there is no upper clamp.
	Release(ctx context.Context, productID string, qty int, size, color string) error

	// Stock reports the current product-level stock.
	Stock(ctx context.Context, productID string) (*StockLevel, error)

	// SetStock overwrites the product-level stock (admin operation).
	SetStock(ctx context.Context, productID string, stock int) error
}

type ledger struct {
	repo Repository
	log  *zap.Logger
}

// NewLedger creates the inventory ledger.
func NewLedger(repo Repository, log *zap.Logger) Ledger {
	return &ledger{repo: repo, log: log}
}

func (l *ledger) Reserve(ctx context.Context, productID string, qty int, size, color string) error {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", qty)
	}
	return l.withRetry(ctx, "reserve", pid, func() error {
		return l.repo.Reserve(ctx, pid, qty, size, color)
	})
}

func (l *ledger) Release(ctx context.Context, productID string, qty int, size, color string) error {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", qty)
	}
	return l.withRetry(ctx, "release", pid, func() error {
		return l.repo.Release(ctx, pid, qty, size, color)
	})
}

func (l *ledger) Stock(ctx context.Context, productID string) (*StockLevel, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	stock, err := l.repo.Stock(ctx, pid)
	if err != nil {
		return nil, err
	}
	return &StockLevel{ProductID: productID, Stock: stock}, nil
}

func (l *ledger) SetStock(ctx context.Context, productID string, stock int) error {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}
	if stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	return l.repo.SetStock(ctx, pid, stock)
}

// withRetry re-runs op on serialization failures and deadlocks, which resolve
// against fresh state. Any other error surfaces immediately.
func (l *ledger) withRetry(ctx context.Context, op string, productID uuid.UUID, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if !isRetryable(err) {
			return err
		}
		l.log.Warn("stock update conflict, retrying",
			zap.String("op", op),
			zap.String("product_id", productID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure, deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
