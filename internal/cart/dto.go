package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteItem is one priced line in a quote.
type QuoteItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Quote is the full recomputed cart shape returned by every service call,
// so callers never need a second fetch after a mutation.
type Quote struct {
	Items        []QuoteItem     `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	ItemCount    int             `json:"item_count"`
}

// BuildQuote prices the items and assembles the response shape.
func BuildQuote(items []LineItem, cfg PricingConfig) *Quote {
	totals := Recompute(items, cfg)
	quote := &Quote{
		Items:        make([]QuoteItem, 0, len(items)),
		Subtotal:     totals.Subtotal,
		ShippingCost: totals.ShippingCost,
		Tax:          totals.Tax,
		Total:        totals.Total,
		ItemCount:    totals.ItemCount,
	}
	for _, item := range items {
		quote.Items = append(quote.Items, QuoteItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
		})
	}
	return quote
}
