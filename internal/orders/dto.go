package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ethanhollis/cartwright-backend/pkg/db/models"
	"github.com/ethanhollis/cartwright-backend/pkg/enums"
)

// OrderLineItemDTO is one frozen line of a placed order.
type OrderLineItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderDTO is the transport shape for a placed order.
type OrderDTO struct {
	ID           uuid.UUID          `json:"id"`
	Status       enums.OrderStatus  `json:"status"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	ShippingCost decimal.Decimal    `json:"shipping_cost"`
	Tax          decimal.Decimal    `json:"tax"`
	Total        decimal.Decimal    `json:"total"`
	ItemCount    int                `json:"item_count"`
	LineItems    []OrderLineItemDTO `json:"line_items"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// OrderListResult is one page of orders plus the next cursor.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func fromModel(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:           order.ID,
		Status:       order.Status,
		Subtotal:     order.Subtotal,
		ShippingCost: order.ShippingCost,
		Tax:          order.Tax,
		Total:        order.Total,
		ItemCount:    order.ItemCount,
		LineItems:    make([]OrderLineItemDTO, 0, len(order.LineItems)),
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
	for _, line := range order.LineItems {
		dto.LineItems = append(dto.LineItems, OrderLineItemDTO{
			ProductID: line.ProductID,
			Title:     line.Title,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}
	return dto
}
