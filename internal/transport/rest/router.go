package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/bosco250/myUrutiSaluni-sub007/internal/payment"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/transport/middleware"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/transport/swagger"
)

func RegisterAllRoutes(router *chi.Mux, paymentHandler *payment.Handler, gateway Pinger, logger *slog.Logger) {
	healthHandler := NewHealthHandler(gateway)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Payment session routes
		r.Route("/payments", func(pr chi.Router) {
			pr.Post("/", paymentHandler.StartPayment)
			pr.Get("/{sessionID}", paymentHandler.GetSession)
			pr.Post("/{sessionID}/retry", paymentHandler.RetrySession)
			pr.Post("/{sessionID}/cancel", paymentHandler.CancelSession)
			pr.Delete("/{sessionID}", paymentHandler.DestroySession)
		})
	})
}
