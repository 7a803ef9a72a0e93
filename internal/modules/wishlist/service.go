package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/velorahq/velora-backend/internal/modules/cart"
)

// Service defines wishlist business logic. The wishlist never touches stock;
// its one coupled operation is MoveToCart, which goes through the cart
// aggregate (and therefore through the inventory ledger).
type Service interface {
	Get(ctx context.Context, userID string) (*Wishlist, error)
	Add(ctx context.Context, userID string, req AddItemRequest) (*Wishlist, error)
	Remove(ctx context.Context, userID, productID, size, color string) (*Wishlist, error)
	Clear(ctx context.Context, userID string) error

	// MoveToCart adds the wishlist item to the cart with quantity 1 and, only
	// once that has succeeded, removes it from the wishlist. A failed cart
	// add (out of stock, ceiling reached) leaves the wishlist untouched.
	MoveToCart(ctx context.Context, userID, productID, size, color string) (*Wishlist, *cart.Cart, error)
}

type service struct {
	repo  Repository
	carts cart.Service
}

// NewService creates the wishlist service.
func NewService(repo Repository, carts cart.Service) Service {
	return &service{repo: repo, carts: carts}
}

func (s *service) Get(ctx context.Context, userID string) (*Wishlist, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	return s.repo.GetByUser(ctx, uid)
}

func (s *service) Add(ctx context.Context, userID string, req AddItemRequest) (*Wishlist, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}

	item := &Item{
		ID:        uuid.New(),
		ProductID: pid,
		Name:      req.Name,
		Image:     req.Image,
		Price:     req.Price,
		Size:      req.Size,
		Color:     req.Color,
	}
	if err := s.repo.AddItem(ctx, uid, item); err != nil {
		return nil, err
	}
	return s.repo.GetByUser(ctx, uid)
}

func (s *service) Remove(ctx context.Context, userID, productID, size, color string) (*Wishlist, error) {
	uid, pid, err := parseIDs(userID, productID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, uid, pid, size, color); err != nil {
		return nil, err
	}
	return s.repo.GetByUser(ctx, uid)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.repo.Clear(ctx, uid)
}

func (s *service) MoveToCart(ctx context.Context, userID, productID, size, color string) (*Wishlist, *cart.Cart, error) {
	uid, pid, err := parseIDs(userID, productID)
	if err != nil {
		return nil, nil, err
	}

	item, err := s.repo.FindItem(ctx, uid, pid, size, color)
	if err != nil {
		return nil, nil, err
	}

	// Cart add first: its reservation must succeed before the wishlist row
	// goes away, otherwise a failed add would silently lose the entry.
	c, err := s.carts.Add(ctx, userID, cart.AddItemRequest{
		ProductID: item.ProductID.String(),
		Name:      item.Name,
		Image:     item.Image,
		Price:     item.Price,
		Quantity:  1,
		Size:      item.Size,
		Color:     item.Color,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.RemoveByID(ctx, item.ID); err != nil {
		return nil, nil, err
	}

	w, err := s.repo.GetByUser(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	return w, c, nil
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
