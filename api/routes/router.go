package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-gateway/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-gateway/api/controllers/cart"
	catalogcontrollers "github.com/angelmondragon/storefront-gateway/api/controllers/catalog"
	checkoutcontrollers "github.com/angelmondragon/storefront-gateway/api/controllers/checkout"
	ordercontrollers "github.com/angelmondragon/storefront-gateway/api/controllers/orders"
	sellercontrollers "github.com/angelmondragon/storefront-gateway/api/controllers/seller"
	"github.com/angelmondragon/storefront-gateway/api/middleware"
	"github.com/angelmondragon/storefront-gateway/internal/analytics"
	"github.com/angelmondragon/storefront-gateway/internal/cart"
	"github.com/angelmondragon/storefront-gateway/internal/catalog"
	"github.com/angelmondragon/storefront-gateway/internal/checkout"
	"github.com/angelmondragon/storefront-gateway/internal/orders"
	"github.com/angelmondragon/storefront-gateway/internal/sellerproducts"
	"github.com/angelmondragon/storefront-gateway/internal/users"
	"github.com/angelmondragon/storefront-gateway/internal/vouchers"
	"github.com/angelmondragon/storefront-gateway/pkg/config"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/metrics"
	"github.com/angelmondragon/storefront-gateway/pkg/redis"
)

// Store is the redis surface the router needs: readiness, auth throttling and idempotency records.
type Store interface {
	redis.Pinger
	redis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store Store,
	sessions middleware.SessionResolver,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	usersService users.Service,
	catalogService catalog.Service,
	vouchersService vouchers.Service,
	cartService cart.Service,
	checkoutService checkout.Service,
	ordersService orders.Service,
	sellerProductsService sellerproducts.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	orderOnce := middleware.Idempotency(store, logg, middleware.CriticalIdempotencyTTL)
	writeOnce := middleware.Idempotency(store, logg, middleware.DefaultIdempotencyTTL)
	loginLimit := middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), store, logg)
	signupLimit := middleware.AuthRateLimit(middleware.SignupRateLimitPolicy(cfg.AuthRateLimit), store, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})

	if cfg.Metrics.Enabled && registry != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimit).Post("/login", controllers.AuthLogin(usersService, logg))
			r.With(signupLimit).Post("/signup", controllers.AuthSignup(usersService, logg))
			r.With(middleware.Auth(sessions, logg)).Post("/logout", controllers.AuthLogout(usersService, logg))
		})

		// Catalog reads are public; a signed-in caller's token is still forwarded.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(sessions, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", catalogcontrollers.List(catalogService, logg))
				r.Get("/search", catalogcontrollers.Search(catalogService, logg))
				r.Get("/categories", catalogcontrollers.Categories(catalogService, logg))
				r.Get("/{productID}", catalogcontrollers.Detail(catalogService, logg))
			})
			r.Get("/recommendations", catalogcontrollers.Recommendations(catalogService, logg))
			r.Route("/vouchers", func(r chi.Router) {
				r.Get("/product/{productID}", catalogcontrollers.ProductVouchers(vouchersService, logg))
				r.Get("/shop/{shopID}", catalogcontrollers.ShopVouchers(vouchersService, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessions, logg))

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", controllers.UsersMe(usersService, logg))
				r.Post("/become-seller", controllers.UsersBecomeSeller(usersService, logg))
				r.Put("/buyer-profile", controllers.UsersUpdateBuyerProfile(usersService, logg))
				r.Put("/seller-profile", controllers.UsersUpdateSellerProfile(usersService, logg))
			})

			r.Route("/views", func(r chi.Router) {
				r.Post("/catalog", catalogcontrollers.MountListing(catalogService, logg))
				r.Get("/catalog", catalogcontrollers.ListingView(catalogService, logg))
				r.Delete("/catalog", catalogcontrollers.UnmountListing(catalogService, logg))
				r.Post("/products/{productID}", catalogcontrollers.MountDetail(catalogService, logg))
				r.Get("/products/{productID}", catalogcontrollers.DetailView(catalogService, logg))
				r.Delete("/products/{productID}", catalogcontrollers.UnmountDetail(catalogService, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(cartService, logg))
				r.Delete("/view", cartcontrollers.CartUnmount(cartService, logg))
				r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
				r.Put("/items/{productID}", cartcontrollers.CartUpdateQuantity(cartService, logg))
				r.Delete("/items/{productID}", cartcontrollers.CartRemoveItem(cartService, logg))
				r.Post("/selection/{productID}/toggle", cartcontrollers.CartToggle(cartService, logg))
				r.Put("/selection", cartcontrollers.CartSelectAll(cartService, logg))
				r.Put("/vouchers/{productID}", cartcontrollers.CartSelectVoucher(cartService, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/draft", checkoutcontrollers.StartFromCart(checkoutService, logg))
				r.Post("/buy-now", checkoutcontrollers.StartBuyNow(checkoutService, logg))
				r.Get("/draft", checkoutcontrollers.GetDraft(checkoutService, logg))
				r.Patch("/draft", checkoutcontrollers.UpdateDraft(checkoutService, logg))
				r.Delete("/draft", checkoutcontrollers.DiscardDraft(checkoutService, logg))
				r.Put("/draft/vouchers/{productID}", checkoutcontrollers.SelectVoucher(checkoutService, logg))
				r.With(orderOnce).Post("/submit", checkoutcontrollers.Submit(checkoutService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(ordersService, logg))
				r.Get("/{orderID}", ordercontrollers.Detail(ordersService, logg))
				r.With(orderOnce).Post("/{orderID}/confirm-delivery", ordercontrollers.ConfirmDelivery(ordersService, logg))
				r.With(orderOnce).Post("/{orderID}/cancel", ordercontrollers.Cancel(ordersService, logg))
			})

			r.Route("/seller", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleSeller, logg))

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", ordercontrollers.SellerList(ordersService, logg))
					r.Get("/statistics", ordercontrollers.SellerStatistics(ordersService, logg))
					r.Get("/{orderID}", ordercontrollers.SellerDetail(ordersService, logg))
					r.With(writeOnce).Put("/{orderID}/status", ordercontrollers.SellerUpdateStatus(ordersService, logg))
				})
				r.Route("/products", func(r chi.Router) {
					r.Get("/", sellercontrollers.ListProducts(sellerProductsService, logg))
					r.With(writeOnce).Post("/", sellercontrollers.CreateProduct(sellerProductsService, logg))
					r.Put("/{productID}", sellercontrollers.UpdateProduct(sellerProductsService, logg))
					r.Delete("/{productID}", sellercontrollers.DeleteProduct(sellerProductsService, logg))
				})
				r.Route("/vouchers", func(r chi.Router) {
					r.Get("/", sellercontrollers.ListVouchers(vouchersService, logg))
					r.With(writeOnce).Post("/", sellercontrollers.CreateVoucher(vouchersService, logg))
					r.Put("/{voucherID}", sellercontrollers.UpdateVoucher(vouchersService, logg))
					r.Delete("/{voucherID}", sellercontrollers.DeleteVoucher(vouchersService, logg))
					r.Put("/{voucherID}/products", sellercontrollers.ApplyVoucherProducts(vouchersService, logg))
					r.Delete("/{voucherID}/products/{productID}", sellercontrollers.RemoveVoucherProduct(vouchersService, logg))
				})
				r.Route("/revenue", func(r chi.Router) {
					r.Get("/overview", sellercontrollers.RevenueOverview(analyticsService, logg))
					r.Get("/chart", sellercontrollers.RevenueChart(analyticsService, logg))
					r.Get("/dashboard", sellercontrollers.RevenueDashboard(analyticsService, logg))
				})
			})
		})
	})

	return r
}
