package core

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	shortenerDomains = []string{
		"bit.ly", "goo.gl", "tinyurl.com", "t.co", "is.gd", "buff.ly",
		"ow.ly", "rebrand.ly", "cutt.ly", "shorturl.at", "tiny.one",
	}

	financialTerms = []string{"banco", "bank", "caixa", "santander", "bradesco", "itau", "nubank", "inter"}

	// Brands commonly impersonated, with their canonical domain
	brandDomains = []struct {
		brand  string
		domain string
	}{
		{"google", "google.com"},
		{"facebook", "facebook.com"},
		{"whatsapp", "whatsapp.com"},
		{"instagram", "instagram.com"},
		{"microsoft", "microsoft.com"},
		{"apple", "apple.com"},
	}

	digitPattern = regexp.MustCompile(`\d`)

	genericLinkRecommendations = []string{
		"Sempre verifique a URL completa antes de clicar.",
		"Tenha certeza da fonte do link antes de fornecer informações pessoais.",
		"Use um antivírus atualizado que inclua proteção de navegação.",
	}
)

// LinkAnalyzerConfig bounds the external lookups made per link
type LinkAnalyzerConfig struct {
	ScamReportSearch  bool
	SearchTimeout     time.Duration
	ReputationTimeout time.Duration
}

// DefaultLinkAnalyzerConfig returns the stock limits
func DefaultLinkAnalyzerConfig() LinkAnalyzerConfig {
	return LinkAnalyzerConfig{
		ScamReportSearch:  true,
		SearchTimeout:     5 * time.Second,
		ReputationTimeout: 15 * time.Second,
	}
}

// LinkAnalyzer rates a single URL
type LinkAnalyzer struct {
	blacklist  Blacklist
	reputation ReputationClient
	search     WebSearchClient
	trusted    DomainAllowlist
	tuning     Tuning
	cfg        LinkAnalyzerConfig
	logger     *zap.Logger
}

// NewLinkAnalyzer creates a new link analyzer. Any of blacklist, reputation,
// search and trusted may be nil, which disables the matching step.
func NewLinkAnalyzer(
	blacklist Blacklist,
	reputation ReputationClient,
	search WebSearchClient,
	trusted DomainAllowlist,
	tuning Tuning,
	cfg LinkAnalyzerConfig,
	logger *zap.Logger,
) *LinkAnalyzer {
	return &LinkAnalyzer{
		blacklist:  blacklist,
		reputation: reputation,
		search:     search,
		trusted:    trusted,
		tuning:     tuning,
		cfg:        cfg,
		logger:     logger.Named("link_analyzer"),
	}
}

// ExtractDomain returns the lowercased host of an absolute URL
func ExtractDomain(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", false
	}
	return host, true
}

// linkScore accumulates the fired steps for one URL
type linkScore struct {
	points          int
	explanations    []string
	recommendations []string
}

func (s *linkScore) add(points int, explanation string, recommendations ...string) {
	s.points += points
	s.explanations = append(s.explanations, explanation)
	s.recommendations = append(s.recommendations, recommendations...)
}

// Analyze scores the URL. It never fails: unavailable lookups are skipped.
func (a *LinkAnalyzer) Analyze(ctx context.Context, rawURL string) *LinkFinding {
	if strings.TrimSpace(rawURL) == "" {
		return &LinkFinding{
			URL:             rawURL,
			Explanations:    []string{"Nenhum link fornecido para análise."},
			Recommendations: []string{},
		}
	}

	domain, ok := ExtractDomain(rawURL)
	if !ok {
		score := a.tuning.Clamp(a.tuning.MalformedLinkScore)
		return &LinkFinding{
			URL:             rawURL,
			RiskScore:       score,
			Suspicious:      false,
			Explanations:    []string{"Não foi possível extrair o domínio do link."},
			Recommendations: []string{"Verifique se o formato do link está correto."},
		}
	}

	var s linkScore

	if isShortener(domain) {
		s.add(a.tuning.ShortenerPoints,
			"Este link usa um encurtador, o que pode esconder um destino malicioso.",
			"Evite clicar em links encurtados recebidos de fontes desconhecidas.",
			"Use um serviço para expandir links encurtados antes de clicar.")
	}

	blacklisted := false
	if a.blacklist != nil {
		if category, listed := a.blacklist.Lookup(domain); listed {
			blacklisted = true
			s.add(a.tuning.BlacklistPoints,
				fmt.Sprintf("Este site está em nossa lista de %s.", category),
				"Não acesse este site sob nenhuma circunstância.")
		}
	}

	var counts *ReputationCounts
	if !blacklisted {
		counts = a.checkReputation(ctx, rawURL, domain)
		if counts != nil && counts.Malicious > 0 {
			s.add(min(counts.Malicious, a.tuning.ReputationCap),
				fmt.Sprintf("Este link foi marcado como malicioso por %d serviços de segurança.", counts.Malicious))
		}
	}

	if !blacklisted && s.points < a.tuning.ScamReportScoreCeiling && a.hasScamReports(ctx, domain) {
		s.add(a.tuning.ScamReportPoints,
			"Encontramos relatórios online que podem indicar que este site está envolvido em golpes.")
	}

	a.analyzeCharacteristics(rawURL, domain, &s)

	score := a.tuning.Clamp(s.points)
	finding := &LinkFinding{
		URL:             rawURL,
		Domain:          domain,
		RiskScore:       score,
		Suspicious:      a.tuning.IsFraud(score),
		Explanations:    s.explanations,
		Recommendations: s.recommendations,
		Reputation:      counts,
	}
	if len(finding.Explanations) == 0 {
		finding.Explanations = []string{"Não foram encontrados sinais claros de que este link seja malicioso."}
	}
	if len(finding.Recommendations) == 0 {
		finding.Recommendations = append([]string(nil), genericLinkRecommendations...)
	}

	a.logger.Debug("Link analyzed",
		zap.String("domain", domain),
		zap.Int("risk_score", score),
		zap.Bool("blacklisted", blacklisted))

	return finding
}

func (a *LinkAnalyzer) checkReputation(ctx context.Context, rawURL, domain string) *ReputationCounts {
	if a.reputation == nil || !a.reputation.Enabled() {
		return nil
	}
	if a.trusted != nil && a.trusted.IsTrusted(domain) {
		a.logger.Debug("Skipping reputation lookup for trusted domain", zap.String("domain", domain))
		return nil
	}

	call := goBounded(ctx, a.cfg.ReputationTimeout, func(ctx context.Context) (*ReputationCounts, error) {
		return a.reputation.CheckURL(ctx, rawURL)
	})
	counts, err := call.Await()
	if err != nil {
		a.logger.Warn("Reputation lookup failed", zap.String("domain", domain), zap.Error(err))
		return nil
	}
	return counts
}

// hasScamReports searches for reports about the domain. Canned fallback
// results say nothing about the domain and are not counted.
func (a *LinkAnalyzer) hasScamReports(ctx context.Context, domain string) bool {
	if a.search == nil || !a.cfg.ScamReportSearch {
		return false
	}

	call := goBounded(ctx, a.cfg.SearchTimeout, func(ctx context.Context) ([]SearchResult, error) {
		return a.search.Search(ctx, "golpe fraude "+domain, searchHint)
	})
	results, err := call.Await()
	if err != nil {
		a.logger.Debug("Scam report search dropped", zap.String("domain", domain), zap.Error(err))
		return false
	}

	reports := 0
	for _, r := range results {
		if r.Source != SearchSourceFallback {
			reports++
		}
	}
	return reports >= a.tuning.ScamReportMinResults
}

func (a *LinkAnalyzer) analyzeCharacteristics(rawURL, domain string, s *linkScore) {
	if len(digitPattern.FindAllString(rawURL, -1)) > a.tuning.ExcessDigitsLimit {
		s.add(a.tuning.ExcessDigitsPoints,
			"A URL contém muitos números, o que é incomum para sites legítimos.")
	}

	lowerURL := strings.ToLower(rawURL)
	for _, term := range financialTerms {
		if strings.Contains(lowerURL, term) && !strings.Contains(domain, term) {
			s.add(a.tuning.FinancialTermPoints,
				fmt.Sprintf("A URL contém a palavra '%s', mas não está no domínio oficial. Pode ser uma tentativa de phishing.", term),
				"Bancos legítimos usam apenas seus domínios oficiais. Acesse o site digitando o endereço diretamente no navegador.")
			break
		}
	}

	for _, b := range brandDomains {
		if strings.Contains(domain, b.brand) && !matchesDomain(domain, b.domain) {
			s.add(a.tuning.BrandImpersonationPoints,
				fmt.Sprintf("Esta URL parece imitar o site da %s, mas não é o domínio oficial (%s).", b.brand, b.domain),
				fmt.Sprintf("O site oficial da %s é %s. Acesse apenas este domínio.", b.brand, b.domain))
		}
	}

	if strings.Count(domain, ".") > a.tuning.SubdomainDotLimit {
		s.add(a.tuning.SubdomainPoints,
			"Esta URL tem uma estrutura de subdomínios complexa, o que pode ser uma tentativa de confundir o usuário.")
	}
}

func isShortener(domain string) bool {
	for _, d := range shortenerDomains {
		if matchesDomain(domain, d) {
			return true
		}
	}
	return false
}

// matchesDomain reports whether domain is parent or one of its subdomains
func matchesDomain(domain, parent string) bool {
	return domain == parent || strings.HasSuffix(domain, "."+parent)
}
