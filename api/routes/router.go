package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ethanhollis/cartwright-backend/api/controllers"
	cartcontrollers "github.com/ethanhollis/cartwright-backend/api/controllers/cart"
	"github.com/ethanhollis/cartwright-backend/api/middleware"
	"github.com/ethanhollis/cartwright-backend/internal/auth"
	"github.com/ethanhollis/cartwright-backend/internal/cart"
	"github.com/ethanhollis/cartwright-backend/internal/orders"
	"github.com/ethanhollis/cartwright-backend/internal/products"
	"github.com/ethanhollis/cartwright-backend/pkg/auth/session"
	"github.com/ethanhollis/cartwright-backend/pkg/config"
	"github.com/ethanhollis/cartwright-backend/pkg/enums"
	"github.com/ethanhollis/cartwright-backend/pkg/logger"
	"github.com/ethanhollis/cartwright-backend/pkg/metrics"
	"github.com/ethanhollis/cartwright-backend/pkg/redis"
)

// Dependencies collects everything the router wires into handlers.
type Dependencies struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	SessionManager  session.AccessSessionChecker
	HTTPMetrics     *metrics.HTTPMetrics
	MetricsGatherer prometheus.Gatherer

	AuthService    auth.Service
	CartService    cart.Service
	ProductService products.Service
	OrderService   orders.Service

	ReadinessProbes map[string]controllers.Pinger
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadinessProbes))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.ProductService, logg))
		r.Get("/{productID}", controllers.GetProduct(deps.ProductService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
			r.Post("/", controllers.AdminCreateProduct(deps.ProductService, logg))
			r.Put("/{productID}", controllers.AdminUpdateProduct(deps.ProductService, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(deps.ProductService, logg))
			r.Put("/{productID}/inventory", controllers.AdminSetStock(deps.ProductService, logg))
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.GuestToken())
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionManager, logg))

		r.Get("/", cartcontrollers.Fetch(deps.CartService, logg))
		r.Delete("/", cartcontrollers.Clear(deps.CartService, logg))
		r.Post("/items", cartcontrollers.AddItem(deps.CartService, logg))
		r.Put("/items/{productID}", cartcontrollers.UpdateItem(deps.CartService, logg))
		r.Delete("/items/{productID}", cartcontrollers.RemoveItem(deps.CartService, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Post("/", controllers.Checkout(deps.OrderService, logg))
		r.Get("/", controllers.ListOrders(deps.OrderService, logg))
		r.Get("/{orderID}", controllers.GetOrder(deps.OrderService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
			r.Get("/all", controllers.AdminListOrders(deps.OrderService, logg))
			r.Patch("/{orderID}/status", controllers.AdminUpdateOrderStatus(deps.OrderService, logg))
		})
	})

	return r
}
