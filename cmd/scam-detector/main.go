package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/scam-detector/internal/core"
	"github.com/mikey/scam-detector/internal/di"
	"github.com/mikey/scam-detector/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	frontends []ports.Frontend,
	service *core.ScamDetectionService,
	completion core.TextCompletionClient,
	cacheRepo core.CacheRepository,
	records core.RecordStore,
) error {
	defer logger.Sync()

	// Start the frontends
	for i, frontend := range frontends {
		if err := frontend.Start(); err != nil {
			logger.Error("Failed to start frontend", zap.Error(err))
			for _, started := range frontends[:i] {
				_ = started.Stop()
			}
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the frontends
	for _, frontend := range frontends {
		if err := frontend.Stop(); err != nil {
			logger.Error("Failed to stop frontend", zap.Error(err))
		}
	}

	// Let pending record writes finish
	service.Wait()

	// Close any resources that need closing
	if closer, ok := completion.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close completion client", zap.Error(err))
		}
	}
	if closer, ok := records.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close record store", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
