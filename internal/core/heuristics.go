package core

import (
	"strings"
)

// keywordGroup awards its points once when any of its words is present
type keywordGroup struct {
	words  []string
	points int
}

var (
	urgencyWords = []string{"urgente", "imediato", "agora", "rápido", "emergência", "imediatamente"}
	moneyWords   = []string{"dinheiro", "reais", "r$", "pagamento", "transferir", "depósito"}
	familyWords  = []string{"filho", "filha", "mãe", "pai", "número novo", "mudei de número", "celular novo"}
	prizeWords   = []string{"prêmio", "sorteio", "ganhou", "contemplado", "promoção"}

	// Banking terms score once per category, so "senha" and "código" together count once
	bankingCategories = [][]string{
		{"banco"},
		{"cartão"},
		{"senha", "código"},
		{"pix", "transferência"},
		{"atualização", "cadastro"},
	}

	courierWords   = []string{"motoboy"}
	courierCoTerms = []string{"cartão", "buscar"}
)

// HeuristicScorer scores a message from fixed keyword groups when no model is available
type HeuristicScorer struct {
	tuning Tuning
	fold   func(string) string
}

// NewHeuristicScorer creates a scorer; fold lowercases text before matching
func NewHeuristicScorer(tuning Tuning, fold func(string) string) *HeuristicScorer {
	if fold == nil {
		fold = strings.ToLower
	}
	return &HeuristicScorer{tuning: tuning, fold: fold}
}

// Score returns the additive keyword score, saturated at the maximum score
func (h *HeuristicScorer) Score(message string) int {
	text := h.fold(message)
	score := 0

	groups := []keywordGroup{
		{words: urgencyWords, points: h.tuning.UrgencyPoints},
		{words: moneyWords, points: h.tuning.MoneyPoints},
		{words: familyWords, points: h.tuning.FamilyPoints},
		{words: prizeWords, points: h.tuning.PrizePoints},
	}
	for _, g := range groups {
		if containsAny(text, g.words) {
			score += g.points
		}
	}

	for _, category := range bankingCategories {
		if containsAny(text, category) {
			score += h.tuning.BankingPoints
		}
	}

	if containsAny(text, courierWords) && containsAny(text, courierCoTerms) {
		score += h.tuning.CourierPoints
	}

	return h.tuning.Clamp(score)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
