package factory

import (
	"fmt"
	"io"

	"github.com/mikey/scam-detector/internal/adapters/frontend"
	"github.com/mikey/scam-detector/internal/config"
	"github.com/mikey/scam-detector/internal/ports"
	"go.uber.org/zap"
)

// FrontendFactory creates message intake frontends
type FrontendFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	detector ports.Detector
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, detector ports.Detector) *FrontendFactory {
	return &FrontendFactory{
		cfg:      cfg,
		logger:   logger,
		detector: detector,
	}
}

// CreateFrontends creates the HTTP API and, when enabled, the SMTP intake
func (f *FrontendFactory) CreateFrontends() []ports.Frontend {
	frontends := []ports.Frontend{
		frontend.NewHTTPFrontend(f.detector, f.cfg.GetServer(), f.logger.Named("http")),
	}
	if smtpCfg := f.cfg.GetSMTP(); smtpCfg.Enabled {
		frontends = append(frontends, frontend.NewSMTPFrontend(f.detector, smtpCfg, f.logger.Named("smtp")))
	}
	return frontends
}

// CreateCLIFrontend creates the one-shot command line frontend
func (f *FrontendFactory) CreateCLIFrontend(out io.Writer, verbose bool) (ports.Frontend, error) {
	if out == nil {
		return nil, fmt.Errorf("cli frontend needs an output writer")
	}
	return frontend.NewCLIFrontend(f.detector, out, f.logger, verbose), nil
}
