package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Altair788/DigitalBazaar/pkg/health"
	"github.com/Altair788/DigitalBazaar/pkg/middleware"

	"github.com/Altair788/DigitalBazaar/internal/auth"
	"github.com/Altair788/DigitalBazaar/internal/domain"
	"github.com/Altair788/DigitalBazaar/internal/service"
)

// Services bundles everything the router needs.
type Services struct {
	Users    *service.UserService
	Ads      *service.AdService
	Reviews  *service.ReviewService
	Nodes    *service.NodeService
	Products *service.ProductService
}

// NewRouter creates a chi router with all marketplace routes registered.
func NewRouter(
	svcs Services,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// RequestLogging sets the correlation id, so the request-scoped logger
	// must be built after it. Authenticated groups mount requestLogger a
	// second time to pick up the user id.
	requestLogger := middleware.RequestLogger(logger)

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Tracing("digital-bazaar"))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(requestLogger)
	r.Use(middleware.PrometheusMetrics("bazaar"))

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authHandler := NewAuthHandler(svcs.Users, logger)
	userHandler := NewUserHandler(svcs.Users, logger)
	adHandler := NewAdHandler(svcs.Ads, logger)
	reviewHandler := NewReviewHandler(svcs.Reviews, logger)
	nodeHandler := NewNodeHandler(svcs.Nodes, logger)
	productHandler := NewProductHandler(svcs.Products, logger)

	authenticate := middleware.Auth(jwtManager.MiddlewareValidator())

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Get("/confirm-email/{token}", authHandler.ConfirmEmail)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})
	})

	// User management (auth required; self-or-admin enforced in the service)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authenticate)
		r.Use(requestLogger)

		r.Get("/", userHandler.List)
		r.Get("/{id}", userHandler.Get)
		r.Put("/{id}", userHandler.Update)
		r.Patch("/{id}", userHandler.Update)
		r.Delete("/{id}", userHandler.Delete)
	})

	// Ads: listing is public, everything else requires auth
	r.Route("/api/v1/ads", func(r chi.Router) {
		r.Get("/", adHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(authenticate)
			r.Use(requestLogger)

			r.Post("/", adHandler.Create)
			r.Get("/{adID}", adHandler.Get)
			r.Put("/{adID}", adHandler.Update)
			r.Patch("/{adID}", adHandler.Update)
			r.Delete("/{adID}", adHandler.Delete)

			r.Get("/{adID}/reviews", reviewHandler.ListByAd)
			r.Post("/{adID}/reviews", reviewHandler.Create)
		})
	})

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authenticate)
		r.Use(requestLogger)

		r.Get("/{id}", reviewHandler.Get)
		r.Put("/{id}", reviewHandler.Update)
		r.Patch("/{id}", reviewHandler.Update)
		r.Delete("/{id}", reviewHandler.Delete)
	})

	// Supplier network (auth required; debt write-off is admin only)
	r.Route("/api/v1/nodes", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authenticate)
		r.Use(requestLogger)

		r.Get("/", nodeHandler.List)
		r.Post("/", nodeHandler.Create)

		r.With(middleware.RequireRole(domain.RoleAdmin)).
			Post("/clear-debt", nodeHandler.ClearDebt)

		r.Get("/{nodeID}", nodeHandler.Get)
		r.Put("/{nodeID}", nodeHandler.Update)
		r.Patch("/{nodeID}", nodeHandler.Update)
		r.Delete("/{nodeID}", nodeHandler.Delete)

		r.Get("/{nodeID}/products", productHandler.ListByNode)
		r.Post("/{nodeID}/products", productHandler.Create)
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authenticate)
		r.Use(requestLogger)

		r.Get("/{id}", productHandler.Get)
		r.Put("/{id}", productHandler.Update)
		r.Delete("/{id}", productHandler.Delete)
	})

	return r
}
