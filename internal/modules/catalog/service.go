package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service defines catalog business logic.
type Service interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, id string, req CreateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type service struct{ repo Repository }

// NewService creates a new catalog service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	c := &Category{
		ID:          uuid.New(),
		Name:        req.Name,
		TracksSizes: req.TracksSizes,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetCategory(ctx context.Context, id string) (*Category, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid category id: %w", err)
	}
	return s.repo.GetByID(ctx, cid)
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateCategory(ctx context.Context, id string, req CreateCategoryRequest) (*Category, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	c.TracksSizes = req.TracksSizes
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	cid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid category id: %w", err)
	}
	return s.repo.Delete(ctx, cid)
}
