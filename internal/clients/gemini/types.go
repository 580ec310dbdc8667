package gemini

// Every result type carries LatencyMS and an Error field. Error non-empty
// means the rest of the struct holds the documented fallback values.

// BuyerQAResult answers a buyer question with ledger evidence.
type BuyerQAResult struct {
	Answer        string   `json:"answer"`
	EvidenceTxIDs []string `json:"evidenceTxIds"`
	LatencyMS     int64    `json:"ms"`
	Error         string   `json:"error,omitempty"`
}

// TranslateMarketingResult is the French translation plus short blurbs.
type TranslateMarketingResult struct {
	SummaryFR string `json:"summary_fr"`
	BlurbEN   string `json:"blurb_en"`
	BlurbFR   string `json:"blurb_fr"`
	LatencyMS int64  `json:"ms"`
	Error     string `json:"error,omitempty"`
}

// PriceSuggestionInput describes the lot being priced.
type PriceSuggestionInput struct {
	Commodity   string   `json:"commodity"`
	Region      string   `json:"region"`
	QualityTags []string `json:"qualityTags"`
	TrustScore  int      `json:"trustScore"`
}

// PriceSuggestionResult is the suggested uplift over the base market price.
type PriceSuggestionResult struct {
	UpliftPct int    `json:"upliftPct"`
	Rationale string `json:"rationale"`
	LatencyMS int64  `json:"ms"`
	Error     string `json:"error,omitempty"`
}

// DashboardInsightResult is a one-line bilingual analyst note for the
// operator dashboard.
type DashboardInsightResult struct {
	InsightEN string `json:"insight_en"`
	InsightFR string `json:"insight_fr"`
	LatencyMS int64  `json:"ms"`
	Error     string `json:"error,omitempty"`
}

// HealthResult reports whether the model answered a minimal ping.
type HealthResult struct {
	OK        bool   `json:"ok"`
	Model     string `json:"model"`
	LatencyMS int64  `json:"ms"`
	Error     string `json:"error,omitempty"`
}
