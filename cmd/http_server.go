package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/bosco250/myUrutiSaluni-sub007/internal"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/core/events"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/gateway"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/payment"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/transport/rest"
	"github.com/bosco250/myUrutiSaluni-sub007/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server that hosts payment sessions for the salon clients`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	Logger   *slog.Logger
	Router   *chi.Mux
	Gateway  *gateway.Client
	EventBus *events.EventBus
	Manager  *payment.SessionManager
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	paymentHandler := payment.NewHandler(deps.Manager, deps.Logger)
	rest.RegisterAllRoutes(deps.Router, paymentHandler, deps.Gateway, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	log := logger.LoggerWrapper()

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:        config.Gateway.BaseURL,
		APIKey:         config.Gateway.APIKey,
		RequestTimeout: config.Gateway.RequestTimeout,
	}, log)

	eventBus := events.NewEventBus(log)
	registerEventHandlers(eventBus, log)

	manager := payment.NewSessionManager(gatewayClient, eventBus, payment.SessionConfig{
		Poll: payment.PollConfig{
			Interval:    config.Payments.PollInterval,
			MaxAttempts: config.Payments.PollMaxAttempts,
		},
		Rules: payment.DefaultProviderRules().Merge(config.Payments.Providers),
		Limits: payment.Limits{
			MinTopUpAmount: config.Payments.MinTopUpAmount,
			MaxAmount:      config.Payments.MaxAmount,
		},
		Logger: log,
	}, log)

	return &Dependencies{
		Config:   config,
		Logger:   log,
		Router:   chi.NewRouter(),
		Gateway:  gatewayClient,
		EventBus: eventBus,
		Manager:  manager,
	}, nil
}

// registerEventHandlers attaches the audit log subscribers for terminal
// payment outcomes. Notification delivery lives in another service; it
// would subscribe here too.
func registerEventHandlers(eventBus *events.EventBus, log *slog.Logger) {
	eventBus.Subscribe(events.EventTypePaymentSucceeded, func(ctx context.Context, event events.Event) error {
		log.Info("payment succeeded",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	eventBus.Subscribe(events.EventTypePaymentFailed, func(ctx context.Context, event events.Event) error {
		log.Warn("payment failed",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	eventBus.Subscribe(events.EventTypePaymentCancelled, func(ctx context.Context, event events.Event) error {
		log.Info("payment cancelled",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
}
