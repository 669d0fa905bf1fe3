package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bosco250/myUrutiSaluni-sub007/internal/gateway/mockgateway"
	"github.com/bosco250/myUrutiSaluni-sub007/pkg/logger"
)

var (
	mockGatewayPort    int
	mockGatewayDelay   time.Duration
	mockGatewayWorkers int
)

var mockGatewayCmd = &cobra.Command{
	Use:   "mock-gateway",
	Short: "Start the in-memory payments gateway simulator",
	Long:  `Serve a stand-in payments backend for local development. Asynchronous payments settle after the configured delay; amounts ending in 999 are declined.`,
	Run: func(cmd *cobra.Command, args []string) {
		startMockGateway()
	},
}

func init() {
	mockGatewayCmd.Flags().IntVar(&mockGatewayPort, "port", 9090, "port to listen on")
	mockGatewayCmd.Flags().DurationVar(&mockGatewayDelay, "delay", 5*time.Second, "settlement delay for asynchronous payments")
	mockGatewayCmd.Flags().IntVar(&mockGatewayWorkers, "workers", 4, "settlement worker count")
}

func startMockGateway() {
	logger.Init("info", "text")
	log := logger.LoggerWrapper()

	srv := mockgateway.NewServer(mockgateway.Config{
		MaxWorkers:      mockGatewayWorkers,
		ProcessingDelay: mockGatewayDelay,
	}, log)

	addr := fmt.Sprintf(":%d", mockGatewayPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("mock gateway listening", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("mock gateway failed to start", "error", err)
			os.Exit(1)
		}
	}

	srv.Shutdown()
	log.Info("mock gateway stopped")
}
