package products

import (
	"github.com/shopspring/decimal"

	"github.com/ethanhollis/cartwright-backend/pkg/pagination"
)

// ProductListFilters describe the filter knobs for the browse endpoint.
type ProductListFilters struct {
	Category *string          `json:"category,omitempty"`
	PriceMin *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax *decimal.Decimal `json:"price_max,omitempty"`
	InStock  *bool            `json:"in_stock,omitempty"`
	Query    string           `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate and filter the
// public catalog.
type ListProductsInput struct {
	Filters         ProductListFilters
	Pagination      pagination.Params
	IncludeInactive bool
}
