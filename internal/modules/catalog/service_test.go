package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCatalogRepo struct {
	categories map[uuid.UUID]*Category
}

func newMemRepo() *memCatalogRepo { return &memCatalogRepo{categories: map[uuid.UUID]*Category{}} }

func (r *memCatalogRepo) Create(_ context.Context, c *Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *memCatalogRepo) GetByID(_ context.Context, id uuid.UUID) (*Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (r *memCatalogRepo) List(_ context.Context) ([]*Category, error) {
	var out []*Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCatalogRepo) Update(_ context.Context, c *Category) error {
	if _, ok := r.categories[c.ID]; !ok {
		return ErrNotFound
	}
	r.categories[c.ID] = c
	return nil
}

func (r *memCatalogRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.categories[id]; !ok {
		return ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func TestCreateCategoryRequiresName(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.CreateCategory(context.Background(), CreateCategoryRequest{})
	require.Error(t, err)
}

func TestCategoryLifecycle(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Clothing", TracksSizes: true})
	require.NoError(t, err)
	assert.True(t, c.TracksSizes)

	got, err := svc.GetCategory(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Clothing", got.Name)

	updated, err := svc.UpdateCategory(ctx, c.ID.String(), CreateCategoryRequest{Name: "Apparel", TracksSizes: true})
	require.NoError(t, err)
	assert.Equal(t, "Apparel", updated.Name)

	require.NoError(t, svc.DeleteCategory(ctx, c.ID.String()))
	_, err = svc.GetCategory(ctx, c.ID.String())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetCategoryRejectsBadID(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.GetCategory(context.Background(), "nope")
	require.Error(t, err)
}
