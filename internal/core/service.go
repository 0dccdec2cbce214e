package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/scam-detector/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentScamsQuery = "golpes financeiros recentes Brasil"

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

var degradedRecommendations = []string{
	"Tente novamente mais tarde.",
	"Enquanto isso, não clique em links nem compartilhe dados pessoais ou bancários.",
	"Em caso de dúvida, contate a instituição pelos canais oficiais.",
}

// ServiceConfig holds the orchestration limits
type ServiceConfig struct {
	RecentScamsTimeout time.Duration
	LinkConcurrency    int
	PersistTimeout     time.Duration
}

// DefaultServiceConfig returns the stock limits
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		RecentScamsTimeout: 5 * time.Second,
		LinkConcurrency:    4,
		PersistTimeout:     10 * time.Second,
	}
}

// ScamDetectionService is the core service: it runs the analyzers for one
// message and fuses their output into a single verdict
type ScamDetectionService struct {
	messages  *MessageAnalyzer
	links     *LinkAnalyzer
	education *EducationSynthesizer
	search    WebSearchClient
	records   RecordStore
	text      *utils.TextProcessor
	tuning    Tuning
	cfg       ServiceConfig
	logger    *zap.Logger

	persisting sync.WaitGroup
	newID      func() string
	now        func() time.Time
}

// NewScamDetectionService creates a new scam detection service.
// search and records may be nil.
func NewScamDetectionService(
	messages *MessageAnalyzer,
	links *LinkAnalyzer,
	education *EducationSynthesizer,
	search WebSearchClient,
	records RecordStore,
	text *utils.TextProcessor,
	tuning Tuning,
	cfg ServiceConfig,
	logger *zap.Logger,
) *ScamDetectionService {
	return &ScamDetectionService{
		messages:  messages,
		links:     links,
		education: education,
		search:    search,
		records:   records,
		text:      text,
		tuning:    tuning,
		cfg:       cfg,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// ExtractURLs returns every http(s) URL in the text, in order of appearance
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// Analyze runs the pipeline for one message. It always returns a complete
// record; failures produce a degraded one. The record is persisted in the
// background.
func (s *ScamDetectionService) Analyze(ctx context.Context, msg Message) *AnalysisRecord {
	id := s.newID()
	start := s.now()

	record, err := s.safeAnalyze(ctx, id, msg)
	if err != nil {
		s.logger.Error("Analysis failed, returning degraded result",
			zap.String("analysis_id", id),
			zap.Error(err))
		record = s.degradedRecord(id, msg, err)
	}

	s.logger.Info("Message analyzed",
		zap.String("analysis_id", id),
		zap.String("user_id", msg.SubmitterID),
		zap.Int("risk_score", record.RiskScore),
		zap.Bool("is_fraud", record.IsFraud),
		zap.Bool("degraded", record.Degraded),
		zap.Int("links", len(record.LinkFindings)),
		zap.Duration("elapsed", s.now().Sub(start)))

	s.persist(record)
	return record
}

// Wait blocks until every background persistence write has finished
func (s *ScamDetectionService) Wait() {
	s.persisting.Wait()
}

func (s *ScamDetectionService) safeAnalyze(ctx context.Context, id string, msg Message) (record *AnalysisRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record, err = nil, fmt.Errorf("pipeline panic: %v", r)
		}
	}()
	return s.analyze(ctx, id, msg)
}

func (s *ScamDetectionService) analyze(ctx context.Context, id string, msg Message) (*AnalysisRecord, error) {
	var recent *future[[]SearchResult]
	if s.search != nil {
		recent = goBounded(ctx, s.cfg.RecentScamsTimeout, func(ctx context.Context) ([]SearchResult, error) {
			return s.search.Search(ctx, recentScamsQuery, searchHint)
		})
		defer recent.cancel()
	}

	message := goBounded(ctx, 0, func(ctx context.Context) (*MessageAssessment, error) {
		return s.messages.Analyze(ctx, msg.Body), nil
	})
	defer message.cancel()

	findings, err := s.analyzeLinks(ctx, ExtractURLs(msg.Body))
	if err != nil {
		return nil, fmt.Errorf("link analysis: %w", err)
	}

	assessment, err := message.Await()
	if err != nil {
		return nil, fmt.Errorf("message analysis: %w", err)
	}

	var recentResults []SearchResult
	if recent != nil {
		if recentResults, err = recent.Await(); err != nil {
			s.logger.Debug("Recent scams search dropped", zap.String("analysis_id", id), zap.Error(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	messageScore := assessment.RiskScore
	linkScore := MaxLinkScore(findings)
	final := s.tuning.Fuse(messageScore, linkScore)

	record := &AnalysisRecord{
		ID:              id,
		RiskScore:       final,
		IsFraud:         s.tuning.IsFraud(final),
		Confidence:      float64(final) / float64(s.tuning.MaxScore),
		Explanation:     s.explanation(assessment, findings),
		Recommendations: s.recommendations(assessment, findings),
		Tips:            []string{},
		Degraded:        assessment.Degraded,
		CreatedAt:       s.now().UTC(),
		Message:         msg,
		MessageAnalysis: assessment,
		LinkFindings:    findings,
	}

	if final >= s.tuning.EducationThreshold && s.education != nil {
		record.ScamCategory = Categorize(s.text.Fold(msg.Body))
		bundle := s.education.Synthesize(ctx, record.ScamCategory)
		record.EducationalText = bundle.EducationalText
		record.Tips = bundle.Tips
	}

	recentLinks := make([]ReferenceLink, 0, s.tuning.RecentScamLinks)
	for _, r := range capResults(recentResults, s.tuning.RecentScamLinks) {
		recentLinks = append(recentLinks, searchResultLink(r))
	}
	record.ReferenceLinks = MergeLinks(s.tuning.MaxReferenceLinks, assessment.ReferenceLinks, recentLinks)

	s.logger.Debug("Scores fused",
		zap.String("analysis_id", id),
		zap.Int("message_score", messageScore),
		zap.Int("link_score", linkScore),
		zap.Int("final_score", final))

	return record, nil
}

// analyzeLinks checks every URL concurrently and waits for all of them
func (s *ScamDetectionService) analyzeLinks(ctx context.Context, urls []string) ([]LinkFinding, error) {
	findings := make([]LinkFinding, len(urls))
	if len(urls) == 0 {
		return findings, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.LinkConcurrency > 0 {
		g.SetLimit(s.cfg.LinkConcurrency)
	}
	for i, u := range urls {
		i, u := i, u
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic analyzing %q: %v", u, r)
				}
			}()
			findings[i] = *s.links.Analyze(gctx, u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return findings, nil
}

// explanation is the message explanation, extended with the riskiest link's
// findings when that link outscored the message
func (s *ScamDetectionService) explanation(assessment *MessageAssessment, findings []LinkFinding) string {
	explanation := assessment.Explanation
	top := -1
	for i := range findings {
		if findings[i].RiskScore > assessment.RiskScore && (top < 0 || findings[i].RiskScore > findings[top].RiskScore) {
			top = i
		}
	}
	if top >= 0 {
		linkText := strings.Join(findings[top].Explanations, " ")
		if explanation == "" {
			return linkText
		}
		explanation += " " + linkText
	}
	return explanation
}

// recommendations merges the message recommendations with those of the
// suspicious links, dropping duplicates
func (s *ScamDetectionService) recommendations(assessment *MessageAssessment, findings []LinkFinding) []string {
	all := append([]string(nil), assessment.Recommendations...)
	for _, f := range findings {
		if f.Suspicious {
			all = append(all, f.Recommendations...)
		}
	}
	return DedupeStrings(all)
}

func (s *ScamDetectionService) degradedRecord(id string, msg Message, err error) *AnalysisRecord {
	reason := "erro interno"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "tempo limite excedido"
	case errors.Is(err, context.Canceled):
		reason = "requisição cancelada"
	}

	return &AnalysisRecord{
		ID:              id,
		RiskScore:       0,
		IsFraud:         false,
		Confidence:      0,
		Explanation:     fmt.Sprintf("Não foi possível concluir a análise desta mensagem (%s).", reason),
		Recommendations: append([]string(nil), degradedRecommendations...),
		ReferenceLinks:  append([]ReferenceLink(nil), DefaultReferenceLinks...),
		Tips:            []string{},
		Degraded:        true,
		CreatedAt:       s.now().UTC(),
		Message:         msg,
	}
}

// persist saves the record in the background; failures are only logged
func (s *ScamDetectionService) persist(record *AnalysisRecord) {
	if s.records == nil {
		return
	}

	s.persisting.Add(1)
	go func() {
		defer s.persisting.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Panic while saving analysis record",
					zap.String("analysis_id", record.ID),
					zap.Any("panic", r))
			}
		}()

		ctx := context.Background()
		if s.cfg.PersistTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.PersistTimeout)
			defer cancel()
		}

		if err := s.records.Save(ctx, record); err != nil {
			s.logger.Warn("Failed to save analysis record",
				zap.String("analysis_id", record.ID),
				zap.Error(err))
		}
	}()
}
