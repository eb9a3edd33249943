package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ethanhollis/cartwright-backend/internal/cart"
	"github.com/ethanhollis/cartwright-backend/pkg/db/models"
	"github.com/ethanhollis/cartwright-backend/pkg/enums"
	pkgerrors "github.com/ethanhollis/cartwright-backend/pkg/errors"
	"github.com/ethanhollis/cartwright-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes checkout and order management operations.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error)
	ListAllOrders(ctx context.Context, params pagination.Params) (*OrderListResult, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
}

type service struct {
	repo    *Repository
	tx      txRunner
	pricing cart.PricingConfig
}

// NewService builds an orders service over the repository and tx runner.
func NewService(repo *Repository, tx txRunner, pricing cart.PricingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, pricing: pricing}, nil
}

// CreateOrder turns the user's cart into a pending order. Stock is
// revalidated against live inventory inside the transaction, inventory is
// decremented, totals are frozen, and the cart is cleared. Any stock
// shortfall or concurrent cart write aborts the whole transaction.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindCartWithItems(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		lines := make([]models.OrderLineItem, 0, len(record.Items))
		engineItems := make([]cart.LineItem, 0, len(record.Items))
		for _, item := range record.Items {
			product, err := repo.FindProductWithInventory(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict, "product no longer available").
						WithDetails(map[string]any{"product_id": item.ProductID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeConflict, "product no longer available").
					WithDetails(map[string]any{"product_id": item.ProductID})
			}

			available := 0
			if product.Inventory != nil {
				available = product.Inventory.AvailableQty
			}
			if available < item.Quantity {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
					WithDetails(map[string]any{
						"product_id": item.ProductID,
						"requested":  item.Quantity,
						"available":  available,
					})
			}

			ok, err := repo.DecrementInventory(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement inventory")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
					WithDetails(map[string]any{"product_id": item.ProductID})
			}

			// Charge the live catalog price, not the price the line was
			// added at.
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
			lines = append(lines, models.OrderLineItem{
				ID:        uuid.New(),
				ProductID: item.ProductID,
				Title:     product.Title,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
				LineTotal: lineTotal,
			})
			engineItems = append(engineItems, cart.LineItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
		}

		totals := cart.Recompute(engineItems, s.pricing)
		order := &models.Order{
			ID:           uuid.New(),
			UserID:       userID,
			Status:       enums.OrderStatusPending,
			Subtotal:     totals.Subtotal,
			ShippingCost: totals.ShippingCost,
			Tax:          totals.Tax,
			Total:        totals.Total,
			ItemCount:    totals.ItemCount,
			LineItems:    lines,
		}
		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		cleared, err := repo.ClearCart(ctx, record)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		if !cleared {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart was modified concurrently")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fromModel(created), nil
}

// GetOrder returns one of the user's orders.
func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return fromModel(order), nil
}

// ListOrders returns one page of the user's order history.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	rows, nextCursor, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	result := &OrderListResult{
		Orders:     make([]OrderDTO, 0, len(rows)),
		NextCursor: nextCursor,
	}
	for i := range rows {
		result.Orders = append(result.Orders, *fromModel(&rows[i]))
	}
	return result, nil
}

// ListAllOrders returns one page across all users. Admin paths only.
func (s *service) ListAllOrders(ctx context.Context, params pagination.Params) (*OrderListResult, error) {
	rows, nextCursor, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	result := &OrderListResult{
		Orders:     make([]OrderDTO, 0, len(rows)),
		NextCursor: nextCursor,
	}
	for i := range rows {
		result.Orders = append(result.Orders, *fromModel(&rows[i]))
	}
	return result, nil
}

// UpdateStatus moves an order along its lifecycle. Illegal transitions are
// rejected as state conflicts.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal status transition").
			WithDetails(map[string]any{"from": order.Status, "to": next})
	}

	if err := s.repo.UpdateStatus(ctx, orderID, string(next)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update status")
	}
	order.Status = next
	return fromModel(order), nil
}
