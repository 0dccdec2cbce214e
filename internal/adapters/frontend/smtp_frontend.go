package frontend

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/emersion/go-smtp"
	"github.com/mikey/scam-detector/internal/config"
	"github.com/mikey/scam-detector/internal/core"
	"github.com/mikey/scam-detector/internal/ports"
	"go.uber.org/zap"
)

// SMTPFrontend is a mailbox users forward suspicious messages to. Each
// accepted message is analyzed and the verdict logged and persisted;
// nothing is relayed.
type SMTPFrontend struct {
	detector ports.Detector
	cfg      config.SMTPConfig
	logger   *zap.Logger
	server   *smtp.Server
}

// NewSMTPFrontend creates a new SMTP intake frontend
func NewSMTPFrontend(detector ports.Detector, cfg config.SMTPConfig, logger *zap.Logger) *SMTPFrontend {
	return &SMTPFrontend{
		detector: detector,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start starts the SMTP listener in the background
func (f *SMTPFrontend) Start() error {
	f.server = smtp.NewServer(&smtpBackend{frontend: f})

	// Configure the server
	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = f.cfg.Domain
	f.server.ReadTimeout = f.cfg.ReadTimeout
	f.server.WriteTimeout = f.cfg.WriteTimeout
	f.server.MaxMessageBytes = f.cfg.MaxMessageBytes
	f.server.MaxRecipients = f.cfg.MaxRecipients

	f.logger.Info("SMTP intake starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (f *SMTPFrontend) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessMessage runs the pipeline directly
func (f *SMTPFrontend) ProcessMessage(ctx context.Context, msg core.Message) (*core.AnalysisRecord, error) {
	return f.detector.Analyze(ctx, msg), nil
}

// processEmail turns a forwarded email into a message and analyzes it
func (f *SMTPFrontend) processEmail(ctx context.Context, sender string, raw []byte) (*core.AnalysisRecord, error) {
	subject, text, err := ParseEmail(raw)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errNoText
	}

	msg := core.Message{
		Body:        text,
		SubmitterID: sender,
		DeviceInfo:  map[string]string{"channel": "smtp"},
	}
	if subject != "" {
		msg.DeviceInfo["subject"] = subject
	}

	record := f.detector.Analyze(ctx, msg)

	f.logger.Info("Forwarded message analyzed",
		zap.String("analysis_id", record.ID),
		zap.String("sender", sender),
		zap.String("subject", subject),
		zap.Int("risk_score", record.RiskScore),
		zap.Bool("is_fraud", record.IsFraud))

	return record, nil
}

var errNoText = &smtp.SMTPError{
	Code:         550,
	EnhancedCode: smtp.EnhancedCode{5, 6, 0},
	Message:      "No text content to analyze",
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	frontend *SMTPFrontend
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{frontend: b.frontend}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	frontend   *SMTPFrontend
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Logout ends the session
func (s *smtpSession) Logout() error {
	return nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = strings.ToLower(strings.TrimSpace(from))
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data reads the forwarded message and analyzes it
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.frontend.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	sender := s.sender
	if sender == "" {
		sender = anonymousSubmitter
	}

	if _, err := s.frontend.processEmail(context.Background(), sender, raw); err != nil {
		s.frontend.logger.Warn("Rejected forwarded message",
			zap.String("sender", sender),
			zap.Error(err))
		return err
	}
	return nil
}
