package core

import (
	"time"
)

// Message represents a user-submitted text to be checked
type Message struct {
	Body        string            `json:"message"`
	SubmitterID string            `json:"user_id"`
	DeviceInfo  map[string]string `json:"device_info,omitempty"`
}

// ReferenceLink is a titled link to supporting material
type ReferenceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SearchResult is one ranked hit returned by a web search
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	// Source is "live" for backend results and "fallback" for canned ones
	Source string `json:"source,omitempty"`
}

// Search result sources
const (
	SearchSourceLive     = "live"
	SearchSourceFallback = "fallback"
)

// ReputationCounts holds per-engine verdict counts for a URL
type ReputationCounts struct {
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Harmless   int `json:"harmless"`
	Undetected int `json:"undetected"`
}

// MessageAssessment is the MessageAnalyzer output
type MessageAssessment struct {
	Analysis        string          `json:"analysis"`
	RiskScore       int             `json:"risk_score"`
	Explanation     string          `json:"explanation"`
	Recommendations []string        `json:"recommendations"`
	ReferenceLinks  []ReferenceLink `json:"education_links"`
	SearchResults   []SearchResult  `json:"web_search_results,omitempty"`
	// Degraded is set when the heuristic scorer replaced the model
	Degraded bool `json:"degraded,omitempty"`
}

// LinkFinding is the LinkAnalyzer output for a single URL
type LinkFinding struct {
	URL             string            `json:"url"`
	Domain          string            `json:"domain,omitempty"`
	RiskScore       int               `json:"risk_score"`
	Suspicious      bool              `json:"is_fraud"`
	Explanations    []string          `json:"explanations"`
	Recommendations []string          `json:"recommendations"`
	Reputation      *ReputationCounts `json:"technical_details,omitempty"`
}

// EducationBundle is educational content for a scam category
type EducationBundle struct {
	EducationalText string   `json:"educational_text"`
	Tips            []string `json:"tips"`
}

// AnalysisRecord is the outcome of one pipeline run
type AnalysisRecord struct {
	ID              string          `json:"analysis_id"`
	RiskScore       int             `json:"risk_score"`
	IsFraud         bool            `json:"is_fraud"`
	Confidence      float64         `json:"confidence"`
	Explanation     string          `json:"explanation"`
	Recommendations []string        `json:"recommendations"`
	ReferenceLinks  []ReferenceLink `json:"education_links"`
	EducationalText string          `json:"educational_text"`
	Tips            []string        `json:"education_tips"`
	ScamCategory    string          `json:"scam_category,omitempty"`
	Degraded        bool            `json:"degraded,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`

	// Details kept for persistence only
	Message         Message            `json:"query"`
	MessageAnalysis *MessageAssessment `json:"message_analysis,omitempty"`
	LinkFindings    []LinkFinding      `json:"link_analyses,omitempty"`
}

// Feedback is free-text feedback about a previous analysis
type Feedback struct {
	AnalysisID   string `json:"analysis_id"`
	FeedbackType string `json:"feedback_type"`
	Comment      string `json:"comment,omitempty"`
}

// CacheEntry is a raw value held by a CacheRepository
type CacheEntry struct {
	Key       string
	Value     []byte
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its expiry. A zero ExpiresAt never expires.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
