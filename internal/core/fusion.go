package core

// Scam category labels passed to the education synthesizer
const (
	CategoryPix           = "golpes financeiros com pix"
	CategoryBanking       = "golpes financeiros bancários"
	CategoryPrize         = "golpes financeiros de falsos prêmios"
	CategoryImpersonation = "golpes financeiros do falso familiar"
	CategoryGeneric       = "golpes financeiros"
)

// Trigger words per category, checked in priority order
var categoryTriggers = []struct {
	label string
	words []string
}{
	{CategoryPix, []string{"pix"}},
	{CategoryBanking, []string{"banco", "cartão", "motoboy"}},
	{CategoryPrize, []string{"prêmio", "sorteio"}},
	{CategoryImpersonation, []string{"familiar", "filho", "filha", "urgente", "dinheiro"}},
}

// Fuse combines the message score and the highest link score into the final
// score. Both signals at or above the compounding threshold earn a bonus.
func (t Tuning) Fuse(messageScore, maxLinkScore int) int {
	final := max(messageScore, maxLinkScore)
	if messageScore >= t.CompoundingThreshold && maxLinkScore >= t.CompoundingThreshold {
		final += t.CompoundingBonus
	}
	return t.Clamp(final)
}

// MaxLinkScore returns the highest finding score, 0 without findings
func MaxLinkScore(findings []LinkFinding) int {
	highest := 0
	for _, f := range findings {
		highest = max(highest, f.RiskScore)
	}
	return highest
}

// Categorize picks the scam category from already folded message text
func Categorize(folded string) string {
	for _, c := range categoryTriggers {
		if containsAny(folded, c.words) {
			return c.label
		}
	}
	return CategoryGeneric
}

// DedupeStrings drops repeated entries, keeping the first occurrence
func DedupeStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// MergeLinks concatenates link lists, drops empty and repeated URLs (first
// wins) and keeps at most limit entries
func MergeLinks(limit int, lists ...[]ReferenceLink) []ReferenceLink {
	seen := make(map[string]bool)
	out := make([]ReferenceLink, 0, limit)
	for _, list := range lists {
		for _, link := range list {
			if len(out) >= limit {
				return out
			}
			if link.URL == "" || seen[link.URL] {
				continue
			}
			seen[link.URL] = true
			out = append(out, link)
		}
	}
	return out
}
