package core

// Tuning holds every point value and threshold used by the scorers.
// The values are calibration targets, not derived constants.
type Tuning struct {
	// Score bounds and verdicts
	MaxScore       int `mapstructure:"max_score"`
	FraudThreshold int `mapstructure:"fraud_threshold"`

	// Fusion
	CompoundingThreshold int `mapstructure:"compounding_threshold"`
	CompoundingBonus     int `mapstructure:"compounding_bonus"`
	EducationThreshold   int `mapstructure:"education_threshold"`
	MaxReferenceLinks    int `mapstructure:"max_reference_links"`
	RecentScamLinks      int `mapstructure:"recent_scam_links"`

	// Heuristic message scorer
	UrgencyPoints    int `mapstructure:"urgency_points"`
	BankingPoints    int `mapstructure:"banking_points"`
	MoneyPoints      int `mapstructure:"money_points"`
	FamilyPoints     int `mapstructure:"family_points"`
	CourierPoints    int `mapstructure:"courier_points"`
	PrizePoints      int `mapstructure:"prize_points"`
	HighRiskBand     int `mapstructure:"high_risk_band"`
	MediumRiskBand   int `mapstructure:"medium_risk_band"`
	MaxSearchResults int `mapstructure:"max_search_results"`

	// Link analyzer
	MalformedLinkScore       int `mapstructure:"malformed_link_score"`
	ShortenerPoints          int `mapstructure:"shortener_points"`
	BlacklistPoints          int `mapstructure:"blacklist_points"`
	ReputationCap            int `mapstructure:"reputation_cap"`
	ScamReportPoints         int `mapstructure:"scam_report_points"`
	ScamReportMinResults     int `mapstructure:"scam_report_min_results"`
	ScamReportScoreCeiling   int `mapstructure:"scam_report_score_ceiling"`
	ExcessDigitsPoints       int `mapstructure:"excess_digits_points"`
	ExcessDigitsLimit        int `mapstructure:"excess_digits_limit"`
	FinancialTermPoints      int `mapstructure:"financial_term_points"`
	BrandImpersonationPoints int `mapstructure:"brand_impersonation_points"`
	SubdomainPoints          int `mapstructure:"subdomain_points"`
	SubdomainDotLimit        int `mapstructure:"subdomain_dot_limit"`
}

// DefaultTuning returns the stock calibration
func DefaultTuning() Tuning {
	return Tuning{
		MaxScore:       10,
		FraudThreshold: 5,

		CompoundingThreshold: 3,
		CompoundingBonus:     1,
		EducationThreshold:   3,
		MaxReferenceLinks:    5,
		RecentScamLinks:      2,

		UrgencyPoints:    2,
		BankingPoints:    1,
		MoneyPoints:      1,
		FamilyPoints:     3,
		CourierPoints:    4,
		PrizePoints:      3,
		HighRiskBand:     7,
		MediumRiskBand:   4,
		MaxSearchResults: 3,

		MalformedLinkScore:       3,
		ShortenerPoints:          4,
		BlacklistPoints:          6,
		ReputationCap:            5,
		ScamReportPoints:         2,
		ScamReportMinResults:     3,
		ScamReportScoreCeiling:   7,
		ExcessDigitsPoints:       2,
		ExcessDigitsLimit:        10,
		FinancialTermPoints:      4,
		BrandImpersonationPoints: 3,
		SubdomainPoints:          2,
		SubdomainDotLimit:        2,
	}
}

// Clamp bounds a score to [0, MaxScore]
func (t Tuning) Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > t.MaxScore {
		return t.MaxScore
	}
	return score
}

// IsFraud is the verdict for a final score
func (t Tuning) IsFraud(score int) bool {
	return score >= t.FraudThreshold
}
