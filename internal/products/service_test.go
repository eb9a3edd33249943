package products

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ethanhollis/cartwright-backend/pkg/db/models"
	pkgerrors "github.com/ethanhollis/cartwright-backend/pkg/errors"
)

type stubProductRepo struct {
	products    map[uuid.UUID]*models.Product
	createErr   error
	inventories map[uuid.UUID]*models.InventoryItem
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:    map[uuid.UUID]*models.Product{},
		inventories: map[uuid.UUID]*models.InventoryItem{},
	}
}

func (s *stubProductRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductRepo) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	delete(s.products, id)
	delete(s.inventories, id)
	return nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if inv, ok := s.inventories[id]; ok {
		product.Inventory = inv
	}
	return product, nil
}

func (s *stubProductRepo) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	return &ProductListResult{}, nil
}

func (s *stubProductRepo) UpsertInventory(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	s.inventories[item.ProductID] = item
	return item, nil
}

func (s *stubProductRepo) GetInventoryByProductID(ctx context.Context, productID uuid.UUID) (*models.InventoryItem, error) {
	item, ok := s.inventories[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func mustNewService(t *testing.T, repo ProductRepository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceCreateProduct(t *testing.T) {
	t.Parallel()

	repo := newStubProductRepo()
	svc := mustNewService(t, repo)

	detail, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:          "DESK-01",
		Title:        "Walnut Desk",
		Price:        mustPrice(t, "249.99"),
		InitialStock: 5,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if detail.AvailableQty != 5 || !detail.InStock {
		t.Fatalf("unexpected detail %+v", detail)
	}
	if len(repo.products) != 1 || len(repo.inventories) != 1 {
		t.Fatalf("expected product and inventory rows, got %d/%d", len(repo.products), len(repo.inventories))
	}
}

func TestServiceCreateProductValidation(t *testing.T) {
	t.Parallel()

	svc := mustNewService(t, newStubProductRepo())
	cases := []CreateProductInput{
		{Title: "No SKU", Price: mustPrice(t, "10.00")},
		{SKU: "X", Price: mustPrice(t, "10.00")},
		{SKU: "X", Title: "Free", Price: mustPrice(t, "0")},
		{SKU: "X", Title: "Neg", Price: mustPrice(t, "10.00"), InitialStock: -1},
	}
	for i, input := range cases {
		_, err := svc.CreateProduct(context.Background(), input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: unexpected error %v", i, err)
		}
	}
}

func TestServiceCreateProductDuplicateSKU(t *testing.T) {
	t.Parallel()

	repo := newStubProductRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "products_sku_key"`)
	svc := mustNewService(t, repo)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:   "DESK-01",
		Title: "Walnut Desk",
		Price: mustPrice(t, "249.99"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceUpdateProductPartial(t *testing.T) {
	t.Parallel()

	repo := newStubProductRepo()
	svc := mustNewService(t, repo)
	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:   "LAMP-01",
		Title: "Birch Lamp",
		Price: mustPrice(t, "75.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newTitle := "Birch Lamp v2"
	inactive := false
	detail, err := svc.UpdateProduct(context.Background(), created.ID, UpdateProductInput{
		Title:    &newTitle,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if detail.Title != newTitle || detail.IsActive {
		t.Fatalf("unexpected detail %+v", detail)
	}
	if !detail.Price.Equal(mustPrice(t, "75.00")) {
		t.Fatalf("price changed unexpectedly: %s", detail.Price)
	}
}

func TestServiceUpdateMissingProduct(t *testing.T) {
	t.Parallel()

	svc := mustNewService(t, newStubProductRepo())
	title := "Ghost"
	_, err := svc.UpdateProduct(context.Background(), uuid.New(), UpdateProductInput{Title: &title})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceSetStock(t *testing.T) {
	t.Parallel()

	repo := newStubProductRepo()
	svc := mustNewService(t, repo)
	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:   "BENCH-01",
		Title: "Cedar Bench",
		Price: mustPrice(t, "120.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	detail, err := svc.SetStock(context.Background(), created.ID, 12)
	if err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if detail.AvailableQty != 12 {
		t.Fatalf("available qty = %d, want 12", detail.AvailableQty)
	}

	if _, err := svc.SetStock(context.Background(), created.ID, -1); err == nil {
		t.Fatal("expected validation error for negative stock")
	}
}
