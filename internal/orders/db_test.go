package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ethanhollis/cartwright-backend/pkg/db/models"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  subtotal NUMERIC NOT NULL,
  shipping_cost NUMERIC NOT NULL,
  tax NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  item_count INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  title TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  line_total TEXT NOT NULL,
  created_at DATETIME
);`,
		`
CREATE TABLE IF NOT EXISTS cart_records (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
);`,
		`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  description TEXT,
  category TEXT,
  price NUMERIC NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`
CREATE TABLE IF NOT EXISTS inventory_items (
  product_id TEXT PRIMARY KEY,
  available_qty INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func seedCheckoutProduct(t *testing.T, conn *gorm.DB, title, price string, stock int, active bool) *models.Product {
	t.Helper()

	parsed, err := decimal.NewFromString(price)
	require.NoError(t, err)

	product := &models.Product{
		ID:       uuid.New(),
		SKU:      "sku-" + uuid.New().String()[:8],
		Title:    title,
		Price:    parsed,
		IsActive: active,
	}
	require.NoError(t, conn.Create(product).Error)
	require.NoError(t, conn.Create(&models.InventoryItem{
		ProductID:    product.ID,
		AvailableQty: stock,
	}).Error)
	return product
}

func seedUserCart(t *testing.T, conn *gorm.DB, userID uuid.UUID, version int64, items []models.CartItem) *models.CartRecord {
	t.Helper()

	record := &models.CartRecord{
		ID:      uuid.New(),
		UserID:  userID,
		Version: version,
	}
	require.NoError(t, conn.Create(record).Error)
	for i := range items {
		items[i].ID = uuid.New()
		items[i].CartID = record.ID
		items[i].Position = i
		require.NoError(t, conn.Create(&items[i]).Error)
	}
	record.Items = items
	return record
}

func availableQty(t *testing.T, conn *gorm.DB, productID uuid.UUID) int {
	t.Helper()

	var inv models.InventoryItem
	require.NoError(t, conn.First(&inv, "product_id = ?", productID).Error)
	return inv.AvailableQty
}

func seedOrderAt(t *testing.T, conn *gorm.DB, userID uuid.UUID, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:           uuid.New(),
		UserID:       userID,
		Status:       "pending",
		Subtotal:     decimal.NewFromInt(10),
		ShippingCost: decimal.NewFromInt(10),
		Tax:          decimal.NewFromInt(1),
		Total:        decimal.NewFromInt(21),
		ItemCount:    1,
		CreatedAt:    createdAt,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}
