package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ethanhollis/cartwright-backend/api/controllers"
	"github.com/ethanhollis/cartwright-backend/api/middleware"
	authsvc "github.com/ethanhollis/cartwright-backend/internal/auth"
	"github.com/ethanhollis/cartwright-backend/internal/cart"
	"github.com/ethanhollis/cartwright-backend/internal/orders"
	"github.com/ethanhollis/cartwright-backend/internal/products"
	pkgauth "github.com/ethanhollis/cartwright-backend/pkg/auth"
	"github.com/ethanhollis/cartwright-backend/pkg/auth/session"
	"github.com/ethanhollis/cartwright-backend/pkg/config"
	"github.com/ethanhollis/cartwright-backend/pkg/enums"
	"github.com/ethanhollis/cartwright-backend/pkg/logger"
	"github.com/ethanhollis/cartwright-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req authsvc.RegisterRequest) (*authsvc.AuthResponse, error) {
	return &authsvc.AuthResponse{}, nil
}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.AuthResponse, error) {
	return &authsvc.AuthResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, req authsvc.RefreshRequest) (*authsvc.RefreshResponse, error) {
	return &authsvc.RefreshResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) GetCart(ctx context.Context, actor cart.Actor) (*cart.Quote, error) {
	return &cart.Quote{Items: []cart.QuoteItem{}}, nil
}

func (stubCartService) AddItem(ctx context.Context, actor cart.Actor, productID uuid.UUID, quantity int) (*cart.Quote, error) {
	return &cart.Quote{Items: []cart.QuoteItem{}}, nil
}

func (stubCartService) UpdateQuantity(ctx context.Context, actor cart.Actor, productID uuid.UUID, quantity int) (*cart.Quote, error) {
	return &cart.Quote{Items: []cart.QuoteItem{}}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, actor cart.Actor, productID uuid.UUID) (*cart.Quote, error) {
	return &cart.Quote{Items: []cart.QuoteItem{}}, nil
}

func (stubCartService) Clear(ctx context.Context, actor cart.Actor) (*cart.Quote, error) {
	return &cart.Quote{Items: []cart.QuoteItem{}}, nil
}

func (stubCartService) MergeGuestCart(ctx context.Context, userID uuid.UUID, guestToken string) (*cart.Quote, error) {
	return &cart.Quote{Items: []cart.QuoteItem{}}, nil
}

type stubProductService struct{}

func (stubProductService) CreateProduct(ctx context.Context, input products.CreateProductInput) (*products.ProductDetail, error) {
	return &products.ProductDetail{}, nil
}

func (stubProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input products.UpdateProductInput) (*products.ProductDetail, error) {
	return &products.ProductDetail{}, nil
}

func (stubProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubProductService) GetProduct(ctx context.Context, id uuid.UUID) (*products.ProductDetail, error) {
	return &products.ProductDetail{}, nil
}

func (stubProductService) ListProducts(ctx context.Context, input products.ListProductsInput) (*products.ProductListResult, error) {
	return &products.ProductListResult{Products: []products.ProductSummary{}}, nil
}

func (stubProductService) SetStock(ctx context.Context, productID uuid.UUID, availableQty int) (*products.ProductDetail, error) {
	return &products.ProductDetail{}, nil
}

type stubOrderService struct{}

func (stubOrderService) CreateOrder(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrderService) ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderListResult, error) {
	return &orders.OrderListResult{Orders: []orders.OrderDTO{}}, nil
}

func (stubOrderService) ListAllOrders(ctx context.Context, params pagination.Params) (*orders.OrderListResult, error) {
	return &orders.OrderListResult{Orders: []orders.OrderDTO{}}, nil
}

func (stubOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Dependencies{
		Config:         cfg,
		Logger:         logg,
		SessionManager: stubSessionManager{},
		AuthService:    stubAuthService{},
		CartService:    stubCartService{},
		ProductService: stubProductService{},
		OrderService:   stubOrderService{},
		ReadinessProbes: map[string]controllers.Pinger{
			"database": stubPinger{},
			"redis":    stubPinger{},
		},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveAlwaysUp(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestHealthReadyPingsProbes(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for readiness got %d", resp.Code)
	}
}

func TestPublicProductRoutesSkipAuth(t *testing.T) {
	router := newTestRouter(testConfig())

	list := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, list)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for product list got %d", resp.Code)
	}

	detail := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, detail)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for product detail got %d", resp.Code)
	}
}

func TestOrdersRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrdersSucceedWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestAdminProductRoutesRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/products/" + uuid.NewString()

	customer := httptest.NewRequest(http.MethodDelete, target, nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAdminOrderStatusRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/orders/" + uuid.NewString() + "/status"

	customer := httptest.NewRequest(http.MethodPatch, target, nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}
}

func TestAdminOrderListRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/orders/all", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/orders/all", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestCartRequiresGuestTokenOrJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anonymous := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anonymous)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity got %d", resp.Code)
	}

	guest := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	guest.Header.Set(middleware.GuestTokenHeader, "guest-token-1")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, guest)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for guest got %d", resp.Code)
	}

	user := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	user.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, user)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for signed-in user got %d", resp.Code)
	}
}
