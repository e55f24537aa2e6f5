package httpapi

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"fintrack/internal/log"
)

// RouterConfig wires the router's collaborators.
type RouterConfig struct {
	Handler        *Handler
	JWT            *JWTService
	Logger         *log.Logger
	AllowedOrigins []string
	// RequestsPerSecond and Burst configure the per-IP rate limiter.
	RequestsPerSecond float64
	Burst             int
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 100
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(Recovery(cfg.Logger))
	r.Use(RequestLogger(cfg.Logger))
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(NewRateLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst).Middleware)

	r.Get("/health", cfg.Handler.GetHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", cfg.Handler.IssueToken)

		r.Group(func(r chi.Router) {
			r.Use(JWTMiddleware(cfg.JWT))

			r.Post("/auth/signout", cfg.Handler.SignOut)

			r.Get("/accounts", cfg.Handler.ListAccounts)
			r.Post("/accounts", cfg.Handler.CreateAccount)
			r.Put("/accounts/{id}", cfg.Handler.UpdateAccount)
			r.Delete("/accounts/{id}", cfg.Handler.DeleteAccount)

			r.Get("/transactions", cfg.Handler.ListTransactions)
			r.Post("/transactions", cfg.Handler.CreateTransaction)
			r.Delete("/transactions/{id}", cfg.Handler.DeleteTransaction)

			r.Get("/categories", cfg.Handler.ListCategories)

			r.Get("/reports/summary", cfg.Handler.GetSummary)
			r.Get("/reports/categories", cfg.Handler.GetCategoryBreakdown)
			r.Get("/reports/trend", cfg.Handler.GetTrend)

			r.Post("/advice", cfg.Handler.GetAdvice)
		})
	})

	return r
}
