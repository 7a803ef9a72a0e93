package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("category not found")

// Category is a top-level product grouping. TracksSizes marks categories
// (clothing, footwear) whose products carry per-color size variants with
// their own stock counts.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	TracksSizes bool      `json:"tracks_sizes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCategoryRequest holds the data for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	TracksSizes bool   `json:"tracks_sizes"`
}
