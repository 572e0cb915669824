/**
 * @description
 * HTTP router setup for the fee service using go-chi/chi.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers fee routes.
func NewRouter(h *FeeHandlers, jwtSecret string, internalKey string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Internal-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Fee service is healthy"))
	})

	r.Route("/internal/fees", func(r chi.Router) {
		r.Use(InternalAuthMiddleware(internalKey))
		r.Get("/users/{userID}/summary", h.InternalUserSummaryHandler)
	})

	r.Route("/api/fees", func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))
		r.Post("/calculate/trading", h.CalculateTradingFeeHandler)
		r.Post("/calculate/withdrawal", h.CalculateWithdrawalFeeHandler)
		r.Post("/calculate/deposit", h.CalculateDepositFeeHandler)
		r.Post("/calculate/payout", h.CalculatePayoutFeeHandler)
		r.Post("/withdrawal", h.CreateWithdrawalHandler)
		r.Post("/payout", h.CreatePayoutHandler)
		r.Get("/summary", h.FeeSummaryHandler)
		r.Get("/schedule", h.FeeScheduleHandler)
	})

	return r
}
