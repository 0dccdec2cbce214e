package core

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mikey/scam-detector/internal/utils"
	"go.uber.org/zap"
)

// Labels the analysis prompt asks the model to use
const (
	LabelAnalysis        = "ANÁLISE DETALHADA:"
	LabelRiskScore       = "PONTUAÇÃO DE RISCO:"
	LabelExplanation     = "EXPLICAÇÃO PARA O USUÁRIO:"
	LabelRecommendations = "RECOMENDAÇÕES:"
)

const (
	defaultLinkTitle = "Informação sobre golpes"
	defaultLinkURL   = "https://www.gov.br/pt-br"
	searchHint       = 5
)

const analysisPromptFormat = `Você é um agente especializado em detectar golpes financeiros em mensagens de texto.
Analise a mensagem abaixo e diga se ela tem características de golpe financeiro, com atenção
a golpes comuns como coleta de cartões por falsos funcionários do banco, falsos prêmios e
pedidos urgentes de dados.

Mensagem a ser analisada:
"%s"

Avalie os pontos a seguir citando trechos da mensagem quando possível:
1. Urgência indevida ou pressão para agir imediatamente.
2. Pedido de dados sensíveis (cartão, senha, CVV, dados bancários, CPF).
3. Erros gramaticais ou ortográficos incomuns em comunicação oficial.
4. Links suspeitos ou encurtados.
5. Remetente suspeito ou impossível de verificar.
6. Ofertas irreais ou vantajosas demais.
7. Tom informal demais, ameaçador ou que tenta causar pânico.

Responda exatamente neste formato:
ANÁLISE DETALHADA: ...
PONTUAÇÃO DE RISCO: [apenas um número de 0 a 10]
EXPLICAÇÃO PARA O USUÁRIO: ...
RECOMENDAÇÕES:
- Recomendação 1
- Recomendação 2
`

const keywordPromptFormat = `Extraia de 3 a 5 palavras-chave que ajudem a identificar possíveis golpes no texto abaixo:

"%s"

Responda apenas com uma lista JSON de palavras-chave, sem comentários.
Exemplo: ["banco", "atualização", "urgente"]
`

var (
	jsonListPattern = regexp.MustCompile(`(?s)\[.*\]`)
	wordPattern     = regexp.MustCompile(`\p{L}{4,}`)

	keywordStopwords = map[string]bool{
		"para": true, "como": true, "esse": true, "esta": true, "isso": true,
		"aqui": true, "você": true, "muito": true, "seus": true, "pelo": true,
	}

	// DefaultReferenceLinks are used when no search result supplied links
	DefaultReferenceLinks = []ReferenceLink{
		{Title: "Febraban - Cartilha de Segurança", URL: "https://portal.febraban.org.br/pagina/3055/33/pt-br/cartilha"},
		{Title: "Banco Central - Golpes Financeiros", URL: "https://www.bcb.gov.br/estabilidadefinanceira/golpesefinanciamentos"},
	}

	fallbackRecommendations = []string{
		"Nunca forneça dados bancários por mensagem ou telefone",
		"Contate diretamente sua instituição bancária pelos canais oficiais para verificar",
		"Não clique em links recebidos por mensagem",
	}
)

// MessageAnalyzerConfig bounds the external calls made per message
type MessageAnalyzerConfig struct {
	MaxMessageSize  int
	ExtractKeywords bool
	KeywordTimeout  time.Duration
	SearchTimeout   time.Duration
	// AnalysisTimeout of zero leaves the model call to the client's own limits
	AnalysisTimeout time.Duration
}

// DefaultMessageAnalyzerConfig returns the stock limits
func DefaultMessageAnalyzerConfig() MessageAnalyzerConfig {
	return MessageAnalyzerConfig{
		MaxMessageSize:  4096,
		ExtractKeywords: true,
		KeywordTimeout:  5 * time.Second,
		SearchTimeout:   5 * time.Second,
		AnalysisTimeout: 60 * time.Second,
	}
}

// MessageAnalyzer rates the message text itself
type MessageAnalyzer struct {
	completion TextCompletionClient
	search     WebSearchClient
	heuristics *HeuristicScorer
	parser     *ResponseParser
	text       *utils.TextProcessor
	tuning     Tuning
	cfg        MessageAnalyzerConfig
	logger     *zap.Logger
}

// NewMessageAnalyzer creates a new message analyzer
func NewMessageAnalyzer(
	completion TextCompletionClient,
	search WebSearchClient,
	text *utils.TextProcessor,
	tuning Tuning,
	cfg MessageAnalyzerConfig,
	logger *zap.Logger,
) *MessageAnalyzer {
	return &MessageAnalyzer{
		completion: completion,
		search:     search,
		heuristics: NewHeuristicScorer(tuning, text.Fold),
		parser: NewResponseParser(
			Field{Label: LabelAnalysis, Kind: FieldText, DefaultText: "Detalhes da análise não disponíveis."},
			Field{Label: LabelRiskScore, Kind: FieldNumber, DefaultNumber: 0},
			Field{Label: LabelExplanation, Kind: FieldText, DefaultText: "Explicação não disponível."},
			Field{Label: LabelRecommendations, Kind: FieldList, DefaultList: []string{"Recomendação não disponível."}},
		),
		text:   text,
		tuning: tuning,
		cfg:    cfg,
		logger: logger.Named("message_analyzer"),
	}
}

// Analyze returns a risk assessment for the message. It never fails: a model
// error falls back to the keyword heuristic.
func (a *MessageAnalyzer) Analyze(ctx context.Context, message string) *MessageAssessment {
	if strings.TrimSpace(message) == "" {
		return &MessageAssessment{
			Analysis:        "Nenhuma mensagem fornecida para análise.",
			RiskScore:       0,
			Explanation:     "Por favor, forneça uma mensagem para verificar.",
			Recommendations: []string{},
			ReferenceLinks:  []ReferenceLink{},
		}
	}

	body := a.text.ProcessText(message, a.cfg.MaxMessageSize)

	var search *future[[]SearchResult]
	if a.cfg.ExtractKeywords && a.search != nil {
		keywords := a.extractKeywords(ctx, body)
		if len(keywords) > 0 {
			if len(keywords) > 3 {
				keywords = keywords[:3]
			}
			query := strings.Join(keywords, " ") + " golpe fraude"
			a.logger.Debug("Starting keyword search", zap.Strings("keywords", keywords))
			search = goBounded(ctx, a.cfg.SearchTimeout, func(ctx context.Context) ([]SearchResult, error) {
				return a.search.Search(ctx, query, searchHint)
			})
		}
	}

	analysis := goBounded(ctx, a.cfg.AnalysisTimeout, func(ctx context.Context) (string, error) {
		return a.completion.Complete(ctx, fmt.Sprintf(analysisPromptFormat, body))
	})
	responseText, err := analysis.Await()

	results := a.awaitSearch(search)

	if err != nil {
		a.logger.Warn("Model analysis failed, using heuristic scorer", zap.Error(err))
		return a.fallbackAssessment(message, results)
	}

	parsed := a.parser.Parse(responseText)
	score := a.tuning.Clamp(parsed.Number(LabelRiskScore))

	explanation := parsed.Text(LabelExplanation)
	if !parsed.Found(LabelExplanation) {
		explanation = a.bandExplanation(score)
	}

	recommendations := parsed.List(LabelRecommendations)
	if !parsed.Found(LabelRecommendations) {
		recommendations = a.bandRecommendations(score)
	}

	return &MessageAssessment{
		Analysis:        parsed.Text(LabelAnalysis),
		RiskScore:       score,
		Explanation:     explanation,
		Recommendations: recommendations,
		ReferenceLinks:  a.referenceLinks(results),
		SearchResults:   capResults(results, a.tuning.MaxSearchResults),
	}
}

// fallbackAssessment scores the message locally after a model failure
func (a *MessageAnalyzer) fallbackAssessment(message string, results []SearchResult) *MessageAssessment {
	score := a.heuristics.Score(message)
	return &MessageAssessment{
		Analysis:        "Não foi possível concluir a análise com o modelo; a pontuação vem de uma verificação local por palavras-chave.",
		RiskScore:       score,
		Explanation:     a.bandExplanation(score),
		Recommendations: append([]string(nil), fallbackRecommendations...),
		ReferenceLinks:  a.referenceLinks(results),
		SearchResults:   capResults(results, a.tuning.MaxSearchResults),
		Degraded:        true,
	}
}

func (a *MessageAnalyzer) awaitSearch(search *future[[]SearchResult]) []SearchResult {
	if search == nil {
		return nil
	}
	results, err := search.Await()
	if err != nil {
		a.logger.Debug("Keyword search dropped", zap.Error(err))
		return nil
	}
	return results
}

// extractKeywords asks the model for keywords, falling back to word frequency
func (a *MessageAnalyzer) extractKeywords(ctx context.Context, message string) []string {
	call := goBounded(ctx, a.cfg.KeywordTimeout, func(ctx context.Context) (string, error) {
		return a.completion.Complete(ctx, fmt.Sprintf(keywordPromptFormat, message))
	})
	response, err := call.Await()
	if err == nil {
		if match := jsonListPattern.FindString(response); match != "" {
			var keywords []string
			if err := json.Unmarshal([]byte(match), &keywords); err == nil && len(keywords) > 0 {
				return keywords
			}
		}
	} else {
		a.logger.Debug("Keyword extraction failed, using word frequency", zap.Error(err))
	}
	return FrequentWords(message, 5)
}

// FrequentWords returns the n most frequent non-stopword words of four or more
// letters; ties keep first-seen order.
func FrequentWords(text string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if keywordStopwords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func (a *MessageAnalyzer) referenceLinks(results []SearchResult) []ReferenceLink {
	links := make([]ReferenceLink, 0, a.tuning.MaxSearchResults)
	for _, r := range capResults(results, a.tuning.MaxSearchResults) {
		links = append(links, searchResultLink(r))
	}
	if len(links) == 0 {
		links = append(links, DefaultReferenceLinks...)
	}
	return links
}

func (a *MessageAnalyzer) bandExplanation(score int) string {
	switch {
	case score >= a.tuning.HighRiskBand:
		return "Esta mensagem apresenta fortes indícios de ser um golpe. Tenha muito cuidado."
	case score >= a.tuning.MediumRiskBand:
		return "Esta mensagem contém elementos suspeitos que podem indicar uma tentativa de golpe."
	default:
		return "Esta mensagem não apresenta sinais claros de golpe, mas sempre mantenha atenção."
	}
}

func (a *MessageAnalyzer) bandRecommendations(score int) []string {
	switch {
	case score >= a.tuning.HighRiskBand:
		return []string{
			"Não responda à mensagem",
			"Não compartilhe dados pessoais ou bancários",
			"Bloqueie o remetente",
			"Reporte a tentativa de golpe às autoridades",
		}
	case score >= a.tuning.MediumRiskBand:
		return []string{
			"Verifique a autenticidade da solicitação por canais oficiais",
			"Não compartilhe dados sensíveis",
			"Entre em contato diretamente com a instituição mencionada",
		}
	default:
		return []string{
			"Mantenha-se vigilante com comunicações não solicitadas",
			"Verifique sempre a identidade do remetente",
		}
	}
}

// searchResultLink converts a hit into a reference link, filling gaps with defaults
func searchResultLink(r SearchResult) ReferenceLink {
	link := ReferenceLink{Title: r.Title, URL: r.Link}
	if link.Title == "" {
		link.Title = defaultLinkTitle
	}
	if link.URL == "" {
		link.URL = defaultLinkURL
	}
	return link
}

func capResults(results []SearchResult, n int) []SearchResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}
