package product

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/velorahq/velora-backend/internal/media"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrInvalidInput = errors.New("invalid product input")
)

// Size is one sellable size variant within a color. Stock never goes
// negative; every change flows through the inventory ledger.
type Size struct {
	Label           string  `json:"size"`
	Price           float64 `json:"price"`
	Stock           int     `json:"stock"`
	DiscountPercent float64 `json:"discountper"`
	DiscountPrice   float64 `json:"discountprice"`
}

// Color is a product color variant. Sizes is empty for products whose
// category does not track sizes.
type Color struct {
	ID        uuid.UUID     `json:"id"`
	ColorID   string        `json:"colorId"`
	ColorName string        `json:"colorName"`
	ColorCode string        `json:"colorCode"`
	Images    []media.Image `json:"images"`
	Sizes     []Size        `json:"sizes"`
}

// Product is the aggregate root. When the category tracks sizes, Stock is
// kept equal to the sum of all size stocks; otherwise it is authoritative on
// its own.
type Product struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Stock       int           `json:"stock"`
	CategoryID  uuid.UUID     `json:"category"`
	Images      []media.Image `json:"images"`
	Colors      []Color       `json:"colors"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CreateColor describes a requested color with its sizes at creation time.
type CreateColor struct {
	ColorID   string `json:"colorId"`
	ColorName string `json:"colorName"`
	ColorCode string `json:"colorCode"`
	Sizes     []Size `json:"sizes"`
}

// CreateProductRequest is the JSON part of the multipart create payload.
type CreateProductRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Stock       int           `json:"stock"`
	CategoryID  string        `json:"category"`
	Colors      []CreateColor `json:"colors"`
}

// Upload is one file received with the create request.
type Upload struct {
	OriginalName string
	Data         []byte
	// ColorID ties the file to one of the requested colors; empty files are
	// general product images.
	ColorID string
}
