package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mikey/scam-detector/internal/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type serviceDeps struct {
	completion TextCompletionClient
	search     WebSearchClient
	records    RecordStore
	logger     *zap.Logger
}

func newTestService(d serviceDeps) *ScamDetectionService {
	logger := d.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	text := utils.NewTextProcessor(nil)
	tuning := DefaultTuning()

	mcfg := DefaultMessageAnalyzerConfig()
	mcfg.SearchTimeout = 100 * time.Millisecond

	messages := NewMessageAnalyzer(d.completion, d.search, text, tuning, mcfg, logger)
	links := NewLinkAnalyzer(nil, nil, d.search, nil, tuning, DefaultLinkAnalyzerConfig(), logger)
	education := NewEducationSynthesizer(d.completion, d.search, newMapCache(), DefaultEducationConfig(), logger)

	return NewScamDetectionService(messages, links, education, d.search, d.records, text, tuning, DefaultServiceConfig(), logger)
}

// recentScamsSearch answers only the recent scams query
func recentScamsSearch(results ...SearchResult) *fakeSearch {
	return &fakeSearch{results: func(query string) ([]SearchResult, error) {
		if query == recentScamsQuery {
			return results, nil
		}
		return nil, nil
	}}
}

func assertRecordInvariants(t *testing.T, rec *AnalysisRecord) {
	t.Helper()
	if rec.ID == "" {
		t.Error("record has no identifier")
	}
	if rec.RiskScore < 0 || rec.RiskScore > 10 {
		t.Errorf("score %d out of range", rec.RiskScore)
	}
	if rec.IsFraud != (rec.RiskScore >= 5) {
		t.Errorf("fraud flag %v does not match score %d", rec.IsFraud, rec.RiskScore)
	}
	if rec.Explanation == "" {
		t.Error("record has no explanation")
	}
	if !reflect.DeepEqual(rec.Recommendations, DedupeStrings(rec.Recommendations)) {
		t.Errorf("duplicate recommendations: %v", rec.Recommendations)
	}
	urls := make(map[string]bool)
	for _, l := range rec.ReferenceLinks {
		if urls[l.URL] {
			t.Errorf("duplicate reference link %q", l.URL)
		}
		urls[l.URL] = true
	}
	if len(rec.ReferenceLinks) > 5 {
		t.Errorf("%d reference links, want at most 5", len(rec.ReferenceLinks))
	}
}

func TestAnalyzeWithoutLinks(t *testing.T) {
	svc := newTestService(serviceDeps{completion: scriptedCompletion("6"), search: recentScamsSearch()})

	rec := svc.Analyze(context.Background(), Message{Body: "Seu cartão foi bloqueado, responda", SubmitterID: "u1"})
	assertRecordInvariants(t, rec)

	if rec.RiskScore != 6 || !rec.IsFraud || rec.Confidence != 0.6 {
		t.Fatalf("unexpected verdict: score=%d fraud=%v confidence=%v", rec.RiskScore, rec.IsFraud, rec.Confidence)
	}
	if len(rec.LinkFindings) != 0 {
		t.Fatalf("link findings = %v", rec.LinkFindings)
	}
	if rec.ScamCategory != CategoryBanking {
		t.Fatalf("category = %q", rec.ScamCategory)
	}
	if rec.EducationalText == "" || len(rec.Tips) == 0 {
		t.Fatal("education missing for a risky message")
	}
}

func TestAnalyzeCompoundingBonus(t *testing.T) {
	svc := newTestService(serviceDeps{completion: scriptedCompletion("4"), search: recentScamsSearch()})

	rec := svc.Analyze(context.Background(), Message{Body: "Resgate agora http://whatsapp-premio.net"})
	assertRecordInvariants(t, rec)

	if len(rec.LinkFindings) != 1 || rec.LinkFindings[0].RiskScore != 3 {
		t.Fatalf("link findings = %+v", rec.LinkFindings)
	}
	if rec.RiskScore != 5 || !rec.IsFraud {
		t.Fatalf("score = %d, want 5 with fraud", rec.RiskScore)
	}
}

func TestAnalyzeNoBonusWithOneWeakSignal(t *testing.T) {
	svc := newTestService(serviceDeps{completion: scriptedCompletion("8"), search: recentScamsSearch()})

	rec := svc.Analyze(context.Background(), Message{Body: "Veja http://example.com/12345678901"})
	assertRecordInvariants(t, rec)

	if rec.RiskScore != 8 {
		t.Fatalf("score = %d, want 8", rec.RiskScore)
	}
	if rec.Explanation != "Parece um golpe." {
		t.Fatalf("weaker link should not extend the explanation, got %q", rec.Explanation)
	}
}

func TestAnalyzeLinkDominates(t *testing.T) {
	svc := newTestService(serviceDeps{completion: scriptedCompletion("1"), search: recentScamsSearch()})

	rec := svc.Analyze(context.Background(), Message{Body: "oi http://bit.ly/abc http://bit.ly/abc"})
	assertRecordInvariants(t, rec)

	if len(rec.LinkFindings) != 2 {
		t.Fatalf("every URL occurrence should be analyzed, got %d", len(rec.LinkFindings))
	}
	if rec.RiskScore != 4 {
		t.Fatalf("score = %d, want 4", rec.RiskScore)
	}
	if !strings.Contains(rec.Explanation, "encurtador") {
		t.Fatalf("explanation should mention the shortener, got %q", rec.Explanation)
	}
}

func TestAnalyzeSkipsEducationBelowThreshold(t *testing.T) {
	completion := scriptedCompletion("2")
	svc := newTestService(serviceDeps{completion: completion, search: recentScamsSearch()})

	rec := svc.Analyze(context.Background(), Message{Body: "Bom dia, reunião às 10h"})
	assertRecordInvariants(t, rec)

	if rec.EducationalText != "" || len(rec.Tips) != 0 || rec.ScamCategory != "" {
		t.Fatalf("education generated for score %d", rec.RiskScore)
	}
	if n := completion.education.Load(); n != 0 {
		t.Fatalf("education prompts = %d, want 0", n)
	}
}

func TestAnalyzeGeneratesEducationOncePerCategory(t *testing.T) {
	completion := scriptedCompletion("7")
	svc := newTestService(serviceDeps{completion: completion, search: recentScamsSearch()})

	for _, body := range []string{"Pague o pix agora", "Faça um pix urgente", "Seu pix falhou"} {
		rec := svc.Analyze(context.Background(), Message{Body: body})
		if rec.ScamCategory != CategoryPix {
			t.Fatalf("category = %q", rec.ScamCategory)
		}
	}
	if n := completion.education.Load(); n != 1 {
		t.Fatalf("education prompts = %d, want 1", n)
	}
}

func TestAnalyzeMergesReferenceLinks(t *testing.T) {
	search := recentScamsSearch(
		SearchResult{Title: "BCB de novo", Link: DefaultReferenceLinks[1].URL},
		SearchResult{Title: "Notícia", Link: "https://news.example/golpes"},
		SearchResult{Title: "Terceira", Link: "https://news.example/ignored"},
	)
	svc := newTestService(serviceDeps{completion: scriptedCompletion("5"), search: search})

	rec := svc.Analyze(context.Background(), Message{Body: "Seu cartão foi bloqueado"})
	want := []ReferenceLink{
		DefaultReferenceLinks[0],
		DefaultReferenceLinks[1],
		{Title: "Notícia", URL: "https://news.example/golpes"},
	}
	if !reflect.DeepEqual(rec.ReferenceLinks, want) {
		t.Fatalf("links = %v, want %v", rec.ReferenceLinks, want)
	}
}

func TestAnalyzeWithEveryCapabilityFailing(t *testing.T) {
	search := &fakeSearch{results: func(string) ([]SearchResult, error) { return nil, errUnavailable }}
	svc := newTestService(serviceDeps{completion: failingCompletion(), search: search})

	rec := svc.Analyze(context.Background(), Message{Body: "URGENTE: seu CARTÃO foi bloqueado http://bit.ly/x"})
	assertRecordInvariants(t, rec)

	if !rec.Degraded {
		t.Fatal("expected a degraded record")
	}
	// heuristic 3 and shortener 4 compound to 5
	if rec.RiskScore != 5 || !rec.IsFraud {
		t.Fatalf("score = %d, want 5", rec.RiskScore)
	}
	if !strings.HasPrefix(rec.EducationalText, "Cuidado com") {
		t.Fatalf("expected template education, got %q", rec.EducationalText)
	}
}

func TestAnalyzeCancelledContextReturnsDegradedRecord(t *testing.T) {
	records := &fakeRecords{}
	svc := newTestService(serviceDeps{completion: scriptedCompletion("9"), search: recentScamsSearch(), records: records})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := svc.Analyze(ctx, Message{Body: "Seu cartão foi bloqueado http://bit.ly/x"})
	svc.Wait()
	assertRecordInvariants(t, rec)

	if rec.RiskScore != 0 || rec.IsFraud || !rec.Degraded {
		t.Fatalf("unexpected degraded record %+v", rec)
	}
	if !strings.Contains(rec.Explanation, "cancelada") {
		t.Fatalf("explanation = %q", rec.Explanation)
	}
	if len(rec.Recommendations) == 0 {
		t.Fatal("degraded record has no recommendations")
	}
	if records.count() != 1 {
		t.Fatalf("saved %d records, want 1", records.count())
	}
}

// panickyBlacklist fails every lookup
type panickyBlacklist struct{}

func (panickyBlacklist) Lookup(string) (string, bool) { panic("blacklist unavailable") }

// heldSearch blocks until its context ends and reports that it did
type heldSearch struct {
	released chan struct{}
}

func (h *heldSearch) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	<-ctx.Done()
	if query == recentScamsQuery {
		close(h.released)
	}
	return nil, ctx.Err()
}

func TestAnalyzeReleasesPendingCallsOnFailure(t *testing.T) {
	text := utils.NewTextProcessor(nil)
	tuning := DefaultTuning()
	search := &heldSearch{released: make(chan struct{})}

	cfg := DefaultServiceConfig()
	cfg.RecentScamsTimeout = time.Minute

	svc := NewScamDetectionService(
		NewMessageAnalyzer(scriptedCompletion("2"), nil, text, tuning, DefaultMessageAnalyzerConfig(), zap.NewNop()),
		NewLinkAnalyzer(panickyBlacklist{}, nil, nil, nil, tuning, DefaultLinkAnalyzerConfig(), zap.NewNop()),
		NewEducationSynthesizer(scriptedCompletion("2"), nil, nil, DefaultEducationConfig(), zap.NewNop()),
		search, nil, text, tuning, cfg, zap.NewNop(),
	)

	rec := svc.Analyze(context.Background(), Message{Body: "veja http://example.com/promo"})
	if !rec.Degraded {
		t.Fatalf("expected a degraded record, got %+v", rec)
	}

	select {
	case <-search.released:
	case <-time.After(2 * time.Second):
		t.Fatal("recent scams search still running after the analysis failed")
	}
}

func TestAnalyzePersistsInBackground(t *testing.T) {
	records := &fakeRecords{}
	svc := newTestService(serviceDeps{completion: scriptedCompletion("3"), search: recentScamsSearch(), records: records})

	first := svc.Analyze(context.Background(), Message{Body: "um"})
	second := svc.Analyze(context.Background(), Message{Body: "dois"})
	svc.Wait()

	if first.ID == second.ID {
		t.Fatal("analysis identifiers must be unique")
	}
	if records.count() != 2 {
		t.Fatalf("saved %d records, want 2", records.count())
	}
}

func TestAnalyzePersistenceFailureIsOnlyLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	records := &fakeRecords{err: errors.New("disk full")}
	svc := newTestService(serviceDeps{
		completion: scriptedCompletion("6"),
		search:     recentScamsSearch(),
		records:    records,
		logger:     zap.New(core),
	})

	rec := svc.Analyze(context.Background(), Message{Body: "Seu cartão foi bloqueado"})
	svc.Wait()

	if rec.RiskScore != 6 {
		t.Fatalf("score = %d, want 6", rec.RiskScore)
	}
	if logs.FilterMessage("Failed to save analysis record").Len() != 1 {
		t.Fatalf("expected one persistence warning, got %v", logs.All())
	}
}

func TestAnalyzeInvariantsAcrossInputs(t *testing.T) {
	bodies := []string{
		"",
		"sem links",
		"http://bit.ly/a http://google-login.example.com/bradesco http://a.b.c.d.example.com",
		"http://",
		"Mãe, mudei de número. Faz um pix urgente? https://whatsapp-suporte.net/12345678901234",
	}
	for _, score := range []string{"0", "4", "10"} {
		svc := newTestService(serviceDeps{completion: scriptedCompletion(score), search: recentScamsSearch()})
		for _, body := range bodies {
			rec := svc.Analyze(context.Background(), Message{Body: body})
			assertRecordInvariants(t, rec)

			messageScore := rec.MessageAnalysis.RiskScore
			if rec.RiskScore < messageScore || rec.RiskScore < MaxLinkScore(rec.LinkFindings) {
				t.Errorf("%q: final %d below a component score", body, rec.RiskScore)
			}
		}
	}
}
