package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mikey/scam-detector/internal/adapters/frontend"
	"github.com/mikey/scam-detector/internal/core"
	"github.com/mikey/scam-detector/internal/di"
	"github.com/mikey/scam-detector/internal/factory"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
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

// run analyzes a single message read from a file or stdin
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	frontends *factory.FrontendFactory,
	service *core.ScamDetectionService,
	completion core.TextCompletionClient,
	cacheRepo core.CacheRepository,
	records core.RecordStore,
) error {
	defer logger.Sync()

	// Read message from file or stdin
	var input io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		input = file
		logger.Info("Reading message from file", zap.String("file", flags.InputFile))
	} else {
		input = os.Stdin
		logger.Info("Reading message from stdin")
	}

	raw, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	msg := core.Message{
		Body:        string(raw),
		SubmitterID: flags.Submitter,
		DeviceInfo:  map[string]string{"channel": "cli"},
	}
	if flags.Email {
		subject, text, err := frontend.ParseEmail(raw)
		if err != nil {
			return fmt.Errorf("failed to parse email: %w", err)
		}
		msg.Body = text
		msg.DeviceInfo["subject"] = subject
	}
	if strings.TrimSpace(msg.Body) == "" {
		return fmt.Errorf("message text is empty")
	}

	cli, err := frontends.CreateCLIFrontend(os.Stdout, flags.Verbose)
	if err != nil {
		return err
	}
	if _, err := cli.ProcessMessage(context.Background(), msg); err != nil {
		return err
	}

	// Let the record write finish before exiting
	service.Wait()

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
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	return nil
}
