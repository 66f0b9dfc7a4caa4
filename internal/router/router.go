package router

import (
	"net/http"

	"inventory-catalog-api/internal/handler"
	"inventory-catalog-api/internal/metrics"
	"inventory-catalog-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	AdminHandler     *handler.AdminHandler
	InventoryHandler *handler.InventoryHandler
	FieldHandler     *handler.FieldHandler
	CustomIDHandler  *handler.CustomIDHandler
	ItemHandler      *handler.ItemHandler
	TokenHandler     *handler.TokenHandler
	APIHandler       *handler.APIHandler

	// AdminAuth guards the management API, APIAuth the token consumer API.
	AdminAuth func(http.Handler) http.Handler
	APIAuth   func(http.Handler) http.Handler

	Logger *zap.Logger
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.NewRecovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.NewLogging(logger))
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Content-Type",
			middleware.RequestIDHeader, middleware.LoginKeyHeader, middleware.APITokenHeader,
		},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:         300,
	}))

	// PUBLIC routes
	r.Handle("/metrics", promhttp.Handler())
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Token consumer routes
		if cfg.APIHandler != nil {
			r.Route("/inventory", func(r chi.Router) {
				if cfg.APIAuth != nil {
					r.Use(cfg.APIAuth)
				}
				r.Get("/info", cfg.APIHandler.Info)
				r.Get("/aggregated", cfg.APIHandler.Aggregated)
				r.Get("/export", cfg.APIHandler.Export)
			})
		}

		// Management routes (X-Login-Key)
		r.Group(func(r chi.Router) {
			if cfg.AdminAuth != nil {
				r.Use(cfg.AdminAuth)
			}

			if cfg.AdminHandler != nil {
				r.Get("/admin/stats", cfg.AdminHandler.GetStats)
			}

			r.Route("/inventories", func(r chi.Router) {
				if cfg.InventoryHandler != nil {
					r.Post("/", cfg.InventoryHandler.CreateInventory)
					r.Get("/", cfg.InventoryHandler.ListInventories)
				}

				r.Route("/{id}", func(r chi.Router) {
					if cfg.InventoryHandler != nil {
						r.Get("/", cfg.InventoryHandler.GetInventory)
					}
					if cfg.FieldHandler != nil {
						r.Get("/fields", cfg.FieldHandler.ListFields)
						r.Put("/fields", cfg.FieldHandler.ReplaceFields)
						r.Delete("/fields", cfg.FieldHandler.ClearFields)
					}
					if cfg.CustomIDHandler != nil {
						r.Get("/custom-id", cfg.CustomIDHandler.GetConfiguration)
						r.Put("/custom-id", cfg.CustomIDHandler.UpdateConfiguration)
						r.Post("/custom-id/preview", cfg.CustomIDHandler.Preview)
						r.Post("/custom-id/validate", cfg.CustomIDHandler.Validate)
					}
					if cfg.ItemHandler != nil {
						r.Get("/items", cfg.ItemHandler.ListItems)
						r.Post("/items", cfg.ItemHandler.CreateItem)
					}
					if cfg.TokenHandler != nil {
						r.Post("/token", cfg.TokenHandler.GenerateToken)
						r.Delete("/token", cfg.TokenHandler.RevokeToken)
					}
				})
			})
		})
	})

	return r
}
