package types

// TimelineEvent is one entry of the chronological trail handed to the
// narrative generator. Order is submission order, not arrival order.
type TimelineEvent struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	TxID      string `json:"txId"`
	Location  string `json:"location,omitempty"`
	Operator  string `json:"operator,omitempty"`
}

// NarrativeSummary is the AI provenance summary embedded in a Batch or a
// VerificationRecord trace. Error non-empty means every other field holds
// the documented fallback value, not model output.
type NarrativeSummary struct {
	SummaryEN        string          `json:"summary_en"`
	SummaryFR        string          `json:"summary_fr"`
	Timeline         []TimelineEvent `json:"timeline"`
	TrustScore       *int            `json:"trustScore"`
	TrustExplanation string          `json:"trustExplanation"`
	GeneratedAt      string          `json:"generatedAt,omitempty"`
	LatencyMS        int64           `json:"ms"`
	Error            string          `json:"error,omitempty"`
}

// ImageAnalysis is the AI snapshot attached to a Batch at registration.
type ImageAnalysis struct {
	Caption     string   `json:"caption"`
	Anomalies   []string `json:"anomalies"`
	Confidence  float64  `json:"confidence"`
	Tags        []string `json:"tags"`
	GeneratedAt string   `json:"generatedAt,omitempty"`
	LatencyMS   int64    `json:"ms"`
	Error       string   `json:"error,omitempty"`
}

// LedgerMessage is one resolved consensus message of an event trail.
type LedgerMessage struct {
	TransactionID      string         `json:"transactionId"`
	ConsensusTimestamp string         `json:"consensusTimestamp,omitempty"`
	SequenceNumber     int64          `json:"sequenceNumber,omitempty"`
	Payload            map[string]any `json:"payload,omitempty"`
	Note               string         `json:"note,omitempty"`
}

// VerificationTrace is the persisted shape of one verification outcome.
type VerificationTrace struct {
	TokenID           string            `json:"tokenId"`
	SerialNumber      string            `json:"serialNumber"`
	NFTMetadata       map[string]any    `json:"nftMetadata"`
	HCSTransactionIDs []string          `json:"hcsTransactionIds"`
	HCSMessages       []LedgerMessage   `json:"hcsMessages"`
	AI                *NarrativeSummary `json:"ai"`
	VerifiedAt        string            `json:"verifiedAt"`
	Status            string            `json:"status"`
}
