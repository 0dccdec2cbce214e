package frontend

import (
	"context"
	"sync"

	"github.com/mikey/scam-detector/internal/core"
)

// fakeDetector records the messages it is asked to analyze
type fakeDetector struct {
	mu       sync.Mutex
	messages []core.Message
	record   core.AnalysisRecord
}

func (f *fakeDetector) Analyze(ctx context.Context, msg core.Message) *core.AnalysisRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	record := f.record
	record.Message = msg
	return &record
}

func (f *fakeDetector) seen() []core.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Message(nil), f.messages...)
}

func fraudRecord() core.AnalysisRecord {
	return core.AnalysisRecord{
		ID:              "a1b2",
		RiskScore:       8,
		IsFraud:         true,
		Confidence:      0.8,
		Explanation:     "Pedido urgente de Pix.",
		Recommendations: []string{"Não responda"},
		ReferenceLinks:  []core.ReferenceLink{{Title: "BCB", URL: "https://www.bcb.gov.br"}},
		EducationalText: "Golpistas usam o Pix.",
		Tips:            []string{"Desconfie de urgência"},
		ScamCategory:    core.CategoryPix,
	}
}
