package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ethanhollis/cartwright-backend/internal/cart"
)

// CatalogAdapter exposes the product table to the cart engine. Inactive and
// deleted products both read as not found, so stale cart lines clamp or
// skip the same way.
type CatalogAdapter struct {
	repo ProductRepository
}

// NewCatalogAdapter builds the cart-facing catalog view.
func NewCatalogAdapter(repo ProductRepository) (*CatalogAdapter, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &CatalogAdapter{repo: repo}, nil
}

// Snapshot returns the current price/stock pair for an active product.
func (a *CatalogAdapter) Snapshot(ctx context.Context, productID uuid.UUID) (cart.CatalogSnapshot, error) {
	product, err := a.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart.CatalogSnapshot{}, cart.ErrProductNotFound
		}
		return cart.CatalogSnapshot{}, err
	}
	if !product.IsActive {
		return cart.CatalogSnapshot{}, cart.ErrProductNotFound
	}

	stock := 0
	if product.Inventory != nil {
		stock = product.Inventory.AvailableQty
	}
	return cart.CatalogSnapshot{
		Price: product.Price,
		Stock: stock,
	}, nil
}
