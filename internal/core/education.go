package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Labels the education prompts ask the model to use
const (
	LabelEducationalText = "TEXTO EDUCATIVO:"
	LabelSafetyTips      = "DICAS DE SEGURANÇA:"
)

const educationCachePrefix = "education:"

const educationPromptFormat = `Você é um agente educacional focado em segurança digital para usuários leigos.
Crie um texto educativo sobre %s.

O texto deve:
1. Ser claro e acessível para o público geral
2. Explicar de forma simples como funciona este tipo de golpe
3. Destacar os sinais de alerta mais comuns
4. Ser conciso, com no máximo 250 palavras

Também liste 5 dicas práticas para se proteger deste tipo de golpe.

Formato da resposta:
TEXTO EDUCATIVO: [seu texto aqui]

DICAS DE SEGURANÇA:
- Dica 1
- Dica 2
- Dica 3
- Dica 4
- Dica 5
`

const enrichmentPromptFormat = `Analise o seguinte texto educativo sobre %s:

%s

Agora, melhore e atualize este conteúdo com base nestas informações recentes:

%s

Mantenha o formato original, mas adicione informações relevantes e atualizadas.
O texto final não deve ultrapassar 300 palavras.

Formato da resposta:
TEXTO EDUCATIVO: [seu texto melhorado aqui]

DICAS DE SEGURANÇA:
- Dica 1 (atualizada se necessário)
- Dica 2
- Dica 3
- Dica 4
- Dica 5
`

const fallbackEducationFormat = `TEXTO EDUCATIVO: Cuidado com %s! Este tipo de golpe é comum e pode causar prejuízos financeiros. Os golpistas usam técnicas de engenharia social para enganar as vítimas.

DICAS DE SEGURANÇA:
- Sempre verifique a identidade de quem entra em contato
- Nunca compartilhe senhas ou dados bancários
- Desconfie de ofertas muito vantajosas
- Em caso de dúvida, entre em contato pelo telefone oficial
- Mantenha-se informado sobre golpes recentes
`

var genericTips = []string{
	"Sempre verifique a identidade de quem entra em contato",
	"Nunca compartilhe senhas, códigos ou dados bancários",
	"Desconfie de pedidos urgentes de dinheiro ou informações",
	"Em caso de dúvida, entre em contato diretamente com a instituição pelos canais oficiais",
	"Mantenha-se informado sobre golpes recentes",
}

// EducationConfig bounds the calls made on a cache miss
type EducationConfig struct {
	SearchTimeout     time.Duration
	BaseTimeout       time.Duration
	EnrichTimeout     time.Duration
	MinEnrichedLength int
}

// DefaultEducationConfig returns the stock limits
func DefaultEducationConfig() EducationConfig {
	return EducationConfig{
		SearchTimeout:     5 * time.Second,
		BaseTimeout:       10 * time.Second,
		EnrichTimeout:     10 * time.Second,
		MinEnrichedLength: 50,
	}
}

// EducationSynthesizer writes educational content per scam category,
// memoized in the shared cache by the exact label.
type EducationSynthesizer struct {
	completion TextCompletionClient
	search     WebSearchClient
	cache      CacheRepository
	parser     *ResponseParser
	inflight   singleflight.Group
	cfg        EducationConfig
	logger     *zap.Logger
}

// NewEducationSynthesizer creates a new education synthesizer
func NewEducationSynthesizer(
	completion TextCompletionClient,
	search WebSearchClient,
	cache CacheRepository,
	cfg EducationConfig,
	logger *zap.Logger,
) *EducationSynthesizer {
	return &EducationSynthesizer{
		completion: completion,
		search:     search,
		cache:      cache,
		parser: NewResponseParser(
			Field{Label: LabelEducationalText, Kind: FieldText},
			Field{Label: LabelSafetyTips, Kind: FieldList, DefaultList: genericTips},
		),
		cfg:    cfg,
		logger: logger.Named("education"),
	}
}

// Synthesize returns the bundle for label, generating it on the first request
func (e *EducationSynthesizer) Synthesize(ctx context.Context, label string) *EducationBundle {
	if bundle, ok := e.cached(ctx, label); ok {
		e.logger.Debug("Education cache hit", zap.String("label", label))
		return bundle
	}

	v, _, _ := e.inflight.Do(label, func() (interface{}, error) {
		// Waiters share this generation, so one caller leaving must not cut it short
		genCtx := context.WithoutCancel(ctx)
		if bundle, ok := e.cached(genCtx, label); ok {
			return bundle, nil
		}
		bundle := e.generate(genCtx, label)
		e.store(genCtx, label, bundle)
		return bundle, nil
	})

	bundle := v.(*EducationBundle)
	return &EducationBundle{
		EducationalText: bundle.EducationalText,
		Tips:            append([]string(nil), bundle.Tips...),
	}
}

// generate builds a bundle, substituting the template when the base text fails
func (e *EducationSynthesizer) generate(ctx context.Context, label string) *EducationBundle {
	var search *future[[]SearchResult]
	if e.search != nil {
		query := fmt.Sprintf("como se proteger de %s dicas", label)
		search = goBounded(ctx, e.cfg.SearchTimeout, func(ctx context.Context) ([]SearchResult, error) {
			return e.search.Search(ctx, query, searchHint)
		})
	}
	base := goBounded(ctx, e.cfg.BaseTimeout, func(ctx context.Context) (string, error) {
		return e.completion.Complete(ctx, fmt.Sprintf(educationPromptFormat, label))
	})

	var results []SearchResult
	if search != nil {
		var err error
		if results, err = search.Await(); err != nil {
			e.logger.Debug("Education search dropped", zap.String("label", label), zap.Error(err))
		}
	}

	text, err := base.Await()
	if err != nil {
		e.logger.Warn("Education base text failed, using template", zap.String("label", label), zap.Error(err))
		text = fmt.Sprintf(fallbackEducationFormat, label)
	} else if len(results) > 0 {
		text = e.enrich(ctx, label, text, results)
	}

	parsed := e.parser.Parse(text)
	educational := parsed.Text(LabelEducationalText)
	if educational == "" {
		educational = fmt.Sprintf("Tenha cuidado com %s. Estes golpes são comuns e podem causar prejuízos. "+
			"Sempre verifique a identidade de quem solicita informações ou dinheiro.", label)
	}

	return &EducationBundle{
		EducationalText: educational,
		Tips:            parsed.List(LabelSafetyTips),
	}
}

// enrich asks the model to update the base text with search snippets,
// keeping the base text on failure or a too-short answer
func (e *EducationSynthesizer) enrich(ctx context.Context, label, base string, results []SearchResult) string {
	var sb strings.Builder
	sb.WriteString("Informações atualizadas encontradas:\n\n")
	for i, r := range capResults(results, 3) {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n\n", i+1, r.Title, r.Snippet)
	}

	call := goBounded(ctx, e.cfg.EnrichTimeout, func(ctx context.Context) (string, error) {
		return e.completion.Complete(ctx, fmt.Sprintf(enrichmentPromptFormat, label, base, sb.String()))
	})
	enriched, err := call.Await()
	if err != nil {
		e.logger.Debug("Education enrichment failed", zap.String("label", label), zap.Error(err))
		return base
	}
	if len(strings.TrimSpace(enriched)) <= e.cfg.MinEnrichedLength {
		return base
	}
	return enriched
}

func (e *EducationSynthesizer) cached(ctx context.Context, label string) (*EducationBundle, bool) {
	if e.cache == nil {
		return nil, false
	}
	raw, err := e.cache.Get(ctx, educationCachePrefix+label)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			e.logger.Warn("Education cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var bundle EducationBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		e.logger.Warn("Discarding unreadable education cache entry", zap.String("label", label), zap.Error(err))
		return nil, false
	}
	return &bundle, true
}

func (e *EducationSynthesizer) store(ctx context.Context, label string, bundle *EducationBundle) {
	if e.cache == nil {
		return
	}
	raw, err := json.Marshal(bundle)
	if err != nil {
		e.logger.Error("Failed to encode education bundle", zap.Error(err))
		return
	}
	if err := e.cache.Set(ctx, educationCachePrefix+label, raw, 0); err != nil {
		e.logger.Warn("Failed to cache education bundle", zap.String("label", label), zap.Error(err))
	}
}
