package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSummary is the browse-listing shape.
type ProductSummary struct {
	ID        uuid.UUID       `json:"id"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Category  *string         `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	InStock   bool            `json:"in_stock"`
	ImageURL  *string         `json:"image_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductDetail extends the summary with description and live stock.
type ProductDetail struct {
	ProductSummary
	Description  *string `json:"description,omitempty"`
	IsActive     bool    `json:"is_active"`
	AvailableQty int     `json:"available_qty"`
}

// ProductListResult is one page of summaries plus the next cursor.
type ProductListResult struct {
	Products   []ProductSummary `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// CreateProductInput captures the payload for a new listing.
type CreateProductInput struct {
	SKU          string
	Title        string
	Description  *string
	Category     *string
	Price        decimal.Decimal
	ImageURL     *string
	InitialStock int
}

// UpdateProductInput carries partial updates; nil fields are left untouched.
type UpdateProductInput struct {
	Title       *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	ImageURL    *string
	IsActive    *bool
}
