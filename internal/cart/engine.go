package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product entry in a cart. UnitPrice is the catalog price
// snapshotted when the line was created; it does not track later catalog
// changes except during a merge.
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Cart is the mutable item list for a single owner. Insertion order is
// preserved and each product appears at most once.
type Cart struct {
	Items []LineItem `json:"items"`
}

// Totals are derived fields recomputed from scratch after every mutation.
type Totals struct {
	Subtotal     decimal.Decimal
	ShippingCost decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	ItemCount    int
}

// PricingConfig holds the tunables consumed by Recompute.
type PricingConfig struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingRate      decimal.Decimal
	TaxRate               decimal.Decimal
}

// CatalogSnapshot is the price/stock pair read at the instant a mutation is
// evaluated. The engine treats it as authoritative.
type CatalogSnapshot struct {
	Price decimal.Decimal
	Stock int
}

// Catalog is the product lookup collaborator. Snapshot returns
// ErrProductNotFound when the product is absent from the catalog.
type Catalog interface {
	Snapshot(ctx context.Context, productID uuid.UUID) (CatalogSnapshot, error)
}

// Recompute derives totals from the item list. Monetary fields are rounded
// to two decimals independently and Total sums the already-rounded parts, so
// rounding order can never produce cent drift between the displayed fields.
func Recompute(items []LineItem, cfg PricingConfig) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}

	shipping := cfg.FlatShippingRate
	if subtotal.GreaterThanOrEqual(cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(cfg.TaxRate)

	subtotal = subtotal.Round(2)
	shipping = shipping.Round(2)
	tax = tax.Round(2)

	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal.Add(shipping).Add(tax),
		ItemCount:    count,
	}
}

// AddItem appends a new line priced at the current catalog price, or
// increments an existing line. Quantities are clamped to available stock
// rather than rejected; ErrOutOfStock fires only when stock is zero and no
// partial fulfilment is possible.
func (c *Cart) AddItem(ctx context.Context, catalog Catalog, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	snap, err := catalog.Snapshot(ctx, productID)
	if err != nil {
		return err
	}
	if snap.Stock <= 0 {
		return ErrOutOfStock
	}

	if idx := c.indexOf(productID); idx >= 0 {
		next := c.Items[idx].Quantity + quantity
		if next > snap.Stock {
			next = snap.Stock
		}
		c.Items[idx].Quantity = next
		return nil
	}

	if quantity > snap.Stock {
		quantity = snap.Stock
	}
	c.Items = append(c.Items, LineItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: snap.Price,
	})
	return nil
}

// UpdateQuantity sets the quantity of an existing line, clamped to stock.
// A request for zero must be routed to RemoveItem by the caller.
func (c *Cart) UpdateQuantity(ctx context.Context, catalog Catalog, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotFound
	}
	snap, err := catalog.Snapshot(ctx, productID)
	if err != nil {
		return err
	}
	if snap.Stock <= 0 {
		return ErrOutOfStock
	}
	if quantity > snap.Stock {
		quantity = snap.Stock
	}
	c.Items[idx].Quantity = quantity
	return nil
}

// RemoveItem drops the line for the product. Removing an absent product is a
// no-op, which keeps retries safe.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Merge folds a guest cart into the server cart and returns the result
// without mutating either input. Server items are the base; on a product
// collision the larger quantity wins (clamped to stock) and the unit price
// refreshes to the current catalog price. Guest items whose product has
// left the catalog are skipped silently. Any other catalog failure aborts
// the whole merge so a partial result is never returned.
func Merge(ctx context.Context, guest, server *Cart, catalog Catalog) (*Cart, error) {
	merged := &Cart{Items: make([]LineItem, len(server.Items))}
	copy(merged.Items, server.Items)

	for _, g := range guest.Items {
		snap, err := catalog.Snapshot(ctx, g.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			return nil, err
		}

		if idx := merged.indexOf(g.ProductID); idx >= 0 {
			qty := merged.Items[idx].Quantity
			if g.Quantity > qty {
				qty = g.Quantity
			}
			if qty > snap.Stock {
				qty = snap.Stock
			}
			if qty < 1 {
				// Stock hit zero while the carts sat idle; leave the
				// server line for order-time revalidation to reject.
				continue
			}
			merged.Items[idx].Quantity = qty
			merged.Items[idx].UnitPrice = snap.Price
			continue
		}

		qty := g.Quantity
		if qty > snap.Stock {
			qty = snap.Stock
		}
		if qty < 1 {
			continue
		}
		merged.Items = append(merged.Items, LineItem{
			ProductID: g.ProductID,
			Quantity:  qty,
			UnitPrice: snap.Price,
		})
	}

	return merged, nil
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
