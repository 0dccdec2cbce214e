package frontend

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mikey/scam-detector/internal/core"
	"github.com/mikey/scam-detector/internal/ports"
	"go.uber.org/zap"
)

const previewLength = 500

// CLIFrontend analyzes one message and prints the verdict
type CLIFrontend struct {
	detector ports.Detector
	out      io.Writer
	logger   *zap.Logger
	verbose  bool
}

// NewCLIFrontend creates a new CLI frontend writing to out
func NewCLIFrontend(detector ports.Detector, out io.Writer, logger *zap.Logger, verbose bool) *CLIFrontend {
	return &CLIFrontend{
		detector: detector,
		out:      out,
		logger:   logger,
		verbose:  verbose,
	}
}

// ProcessMessage analyzes a message and displays the results
func (f *CLIFrontend) ProcessMessage(ctx context.Context, msg core.Message) (*core.AnalysisRecord, error) {
	f.logger.Debug("Processing message", zap.String("submitter", msg.SubmitterID))

	// Print message summary
	fmt.Fprintf(f.out, "\n=== Mensagem ===\n")
	fmt.Fprintf(f.out, "Remetente: %s\n", msg.SubmitterID)
	fmt.Fprintf(f.out, "Tamanho: %d bytes\n", len(msg.Body))
	fmt.Fprintf(f.out, "Links: %d\n", len(core.ExtractURLs(msg.Body)))

	// Print body preview if verbose
	if f.verbose {
		preview := []rune(msg.Body)
		if len(preview) > previewLength {
			preview = append(preview[:previewLength], []rune("...")...)
		}
		fmt.Fprintf(f.out, "\n%s\n", string(preview))
	}

	startTime := time.Now()
	record := f.detector.Analyze(ctx, msg)
	duration := time.Since(startTime)

	f.printRecord(record, duration)
	return record, nil
}

func (f *CLIFrontend) printRecord(record *core.AnalysisRecord, duration time.Duration) {
	verdict := "provavelmente seguro"
	if record.IsFraud {
		verdict = "PROVÁVEL GOLPE"
	}

	fmt.Fprintf(f.out, "\n=== Resultado ===\n")
	fmt.Fprintf(f.out, "Análise: %s\n", record.ID)
	fmt.Fprintf(f.out, "Veredito: %s\n", verdict)
	fmt.Fprintf(f.out, "Pontuação de risco: %d/10\n", record.RiskScore)
	fmt.Fprintf(f.out, "Confiança: %.2f\n", record.Confidence)
	if record.Degraded {
		fmt.Fprintf(f.out, "Aviso: análise parcial, um ou mais serviços estavam indisponíveis\n")
	}
	fmt.Fprintf(f.out, "Explicação: %s\n", record.Explanation)

	if len(record.Recommendations) > 0 {
		fmt.Fprintf(f.out, "\nRecomendações:\n")
		for _, rec := range record.Recommendations {
			fmt.Fprintf(f.out, "  - %s\n", rec)
		}
	}

	if record.EducationalText != "" {
		fmt.Fprintf(f.out, "\n=== Saiba mais: %s ===\n%s\n", record.ScamCategory, record.EducationalText)
		for _, tip := range record.Tips {
			fmt.Fprintf(f.out, "  * %s\n", tip)
		}
	}

	if len(record.ReferenceLinks) > 0 {
		fmt.Fprintf(f.out, "\nLinks úteis:\n")
		for _, link := range record.ReferenceLinks {
			fmt.Fprintf(f.out, "  %s <%s>\n", link.Title, link.URL)
		}
	}

	fmt.Fprintf(f.out, "\nTempo de processamento: %v\n", duration.Round(time.Millisecond))
}

// Start is a no-op for the CLI frontend
func (f *CLIFrontend) Start() error {
	return nil
}

// Stop is a no-op for the CLI frontend
func (f *CLIFrontend) Stop() error {
	return nil
}
