package products

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ethanhollis/cartwright-backend/pkg/db/models"
)

func mustPrice(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func mustCreateTestProduct(t *testing.T, conn *gorm.DB, title, price string, stock int, active bool, createdAt time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		SKU:       fmt.Sprintf("sku-%s", uuid.NewString()[:8]),
		Title:     title,
		Price:     mustPrice(t, price),
		IsActive:  active,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, conn.Create(product).Error)

	inventory := &models.InventoryItem{
		ProductID:    product.ID,
		AvailableQty: stock,
	}
	require.NoError(t, conn.Create(inventory).Error)
	product.Inventory = inventory
	return product
}
