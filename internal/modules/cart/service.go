package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/velorahq/velora-backend/internal/modules/inventory"
)

// Service is the cart aggregate. Every mutation reserves or releases stock
// through the inventory ledger first; if the ledger call fails the cart is
// left untouched.
type Service interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Add(ctx context.Context, userID string, req AddItemRequest) (*Cart, error)
	Increase(ctx context.Context, userID, productID, size, color string) (*Cart, error)
	Decrease(ctx context.Context, userID, productID, size, color string) (*Cart, error)
	Remove(ctx context.Context, userID, productID, size, color string) (*Cart, error)
	Clear(ctx context.Context, userID string) error
}

type service struct {
	repo   Repository
	ledger inventory.Ledger
	log    *zap.Logger
}

// NewService creates the cart service.
func NewService(repo Repository, ledger inventory.Ledger, log *zap.Logger) Service {
	return &service{repo: repo, ledger: ledger, log: log}
}

func (s *service) Get(ctx context.Context, userID string) (*Cart, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	return s.repo.GetByUser(ctx, uid)
}

func (s *service) Add(ctx context.Context, userID string, req AddItemRequest) (*Cart, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	if req.Quantity < MinQuantity {
		return nil, fmt.Errorf("quantity must be at least %d", MinQuantity)
	}
	if req.Quantity > MaxQuantity {
		return nil, ErrMaxQuantity
	}

	existing, err := s.repo.GetItem(ctx, uid, pid, req.Size, req.Color)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		return nil, err
	}
	if existing != nil && existing.Quantity+req.Quantity > MaxQuantity {
		return nil, ErrMaxQuantity
	}

	if err := s.ledger.Reserve(ctx, req.ProductID, req.Quantity, req.Size, req.Color); err != nil {
		return nil, err
	}

	item := &Item{
		ID:        uuid.New(),
		ProductID: pid,
		Name:      req.Name,
		Image:     req.Image,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	}
	if err := s.repo.UpsertItem(ctx, uid, item); err != nil {
		return nil, err
	}
	return s.repo.GetByUser(ctx, uid)
}

func (s *service) Increase(ctx context.Context, userID, productID, size, color string) (*Cart, error) {
	uid, pid, err := parseIDs(userID, productID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, uid, pid, size, color)
	if err != nil {
		return nil, err
	}
	if item.Quantity >= MaxQuantity {
		return nil, ErrMaxQuantity
	}
	if err := s.ledger.Reserve(ctx, productID, 1, size, color); err != nil {
		return nil, err
	}
	// The conditional increment is the authoritative bound check: racing
	// increments each move the row by exactly one, and a loser at the
	// ceiling hands its reserved unit straight back.
	if err := s.repo.IncrementQuantity(ctx, item.ID, MaxQuantity); err != nil {
		if rerr := s.ledger.Release(ctx, productID, 1, size, color); rerr != nil {
			s.log.Error("release after failed increment",
				zap.String("product_id", productID), zap.Error(rerr))
		}
		return nil, err
	}
	return s.repo.GetByUser(ctx, uid)
}

func (s *service) Decrease(ctx context.Context, userID, productID, size, color string) (*Cart, error) {
	uid, pid, err := parseIDs(userID, productID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, uid, pid, size, color)
	if err != nil {
		return nil, err
	}
	if item.Quantity <= MinQuantity {
		return nil, ErrMinimumReached
	}
	// Shrink the line first so a loser at the floor never touches the
	// ledger; releasing after the write can only overstate demand, never
	// oversell.
	if err := s.repo.DecrementQuantity(ctx, item.ID, MinQuantity); err != nil {
		return nil, err
	}
	if err := s.ledger.Release(ctx, productID, 1, size, color); err != nil {
		return nil, err
	}
	return s.repo.GetByUser(ctx, uid)
}

func (s *service) Remove(ctx context.Context, userID, productID, size, color string) (*Cart, error) {
	uid, pid, err := parseIDs(userID, productID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, uid, pid, size, color)
	if err != nil {
		return nil, err
	}
	// Delete first and release the quantity the row actually held, so a
	// concurrent increment can never make the release count stale.
	qty, err := s.repo.DeleteItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Release(ctx, productID, qty, size, color); err != nil {
		return nil, err
	}
	return s.repo.GetByUser(ctx, uid)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	c, err := s.repo.GetByUser(ctx, uid)
	if err != nil {
		return err
	}
	// One line at a time, each deleted before its units go back, so a
	// failure partway through leaves no line both released and still in
	// the cart, and a retried Clear never double-releases.
	for _, item := range c.Items {
		qty, err := s.repo.DeleteItem(ctx, item.ID)
		if errors.Is(err, ErrItemNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.ledger.Release(ctx, item.ProductID.String(), qty, item.Size, item.Color); err != nil {
			return err
		}
	}
	return nil
}

func parseIDs(userID, productID string) (uuid.UUID, uuid.UUID, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user id: %w", err)
	}
	pid, err := uuid.Parse(productID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid product id: %w", err)
	}
	return uid, pid, nil
}
