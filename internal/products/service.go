package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ethanhollis/cartwright-backend/pkg/db"
	"github.com/ethanhollis/cartwright-backend/pkg/db/models"
	pkgerrors "github.com/ethanhollis/cartwright-backend/pkg/errors"
)

// Service exposes catalog read and admin write operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDetail, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDetail, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	SetStock(ctx context.Context, productID uuid.UUID, availableQty int) (*ProductDetail, error)
}

type service struct {
	repo ProductRepository
}

// NewService builds a product service over the repository.
func NewService(repo ProductRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// CreateProduct validates and inserts a listing with its inventory row.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDetail, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.InitialStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}

	product := &models.Product{
		ID:          uuid.New(),
		SKU:         sku,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price.Round(2),
		IsActive:    true,
		ImageURL:    input.ImageURL,
	}
	if _, err := s.repo.CreateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	inventory := &models.InventoryItem{
		ProductID:    product.ID,
		AvailableQty: input.InitialStock,
	}
	if _, err := s.repo.UpsertInventory(ctx, inventory); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory")
	}
	product.Inventory = inventory

	return toDetail(product), nil
}

// UpdateProduct applies the non-nil fields and returns the fresh detail.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDetail, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		product.Title = title
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Price != nil {
		if input.Price.IsNegative() || input.Price.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		product.Price = input.Price.Round(2)
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return toDetail(product), nil
}

// DeleteProduct removes the listing outright. Carts holding the product see
// it as gone on their next mutation.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// GetProduct returns the detail shape for one listing.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDetail(product), nil
}

// ListProducts returns one filtered page of the catalog.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	result, err := s.repo.ListProducts(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return result, nil
}

// SetStock replaces the available quantity for a product.
func (s *service) SetStock(ctx context.Context, productID uuid.UUID, availableQty int) (*ProductDetail, error) {
	if availableQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	inventory := &models.InventoryItem{
		ProductID:    productID,
		AvailableQty: availableQty,
	}
	if _, err := s.repo.UpsertInventory(ctx, inventory); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory")
	}
	product.Inventory = inventory
	return toDetail(product), nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func toDetail(product *models.Product) *ProductDetail {
	stock := 0
	if product.Inventory != nil {
		stock = product.Inventory.AvailableQty
	}
	return &ProductDetail{
		ProductSummary: ProductSummary{
			ID:        product.ID,
			SKU:       product.SKU,
			Title:     product.Title,
			Category:  product.Category,
			Price:     product.Price,
			InStock:   stock > 0,
			ImageURL:  product.ImageURL,
			CreatedAt: product.CreatedAt,
			UpdatedAt: product.UpdatedAt,
		},
		Description:  product.Description,
		IsActive:     product.IsActive,
		AvailableQty: stock,
	}
}
