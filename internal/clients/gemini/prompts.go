package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agrodex/agrodex-backend/internal/types"
)

// Prompts are designed to return strict JSON for reliable parsing. Each kind
// has one typed render function so call sites cannot mix up placeholders.

const analyzeImagePrompt = `You are an agricultural quality inspector analyzing crop/product images.

Analyze the provided image and return ONLY valid JSON in this exact format:
{
  "caption": "brief description of what you see",
  "anomalies": ["array", "of", "detected", "issues"],
  "confidence": 0.85,
  "tags": ["organic", "fresh", "ripe"]
}

Rules:
- caption: 1-2 sentences max
- anomalies: select from whitelist [discoloration, mold, damage, contamination, pest-damage, wilting, bruising, rot] or empty array
- confidence: 0.0 to 1.0 based on image quality and clarity
- tags: select from [organic, conventional, fresh, dried, ripe, unripe, premium, standard, damaged, processed]
- Return ONLY the JSON object, no markdown, no explanation`

const summarizeProvenancePrompt = `You are a blockchain traceability analyst. Given a timeline of agricultural events recorded on Hedera HCS, create a comprehensive provenance summary.

Input format:
{
  "events": [
    {"timestamp": "ISO8601", "event": "description", "txId": "0.0.123@1234567890.123456789", "location": "GPS coords", "operator": "account"}
  ]
}

Return ONLY valid JSON in this exact format:
{
  "summary_en": "English summary paragraph citing transaction IDs",
  "summary_fr": "French summary paragraph citing transaction IDs",
  "timeline": [
    {"timestamp": "ISO8601", "event": "brief event", "txId": "0.0.123@1234567890.123456789"}
  ],
  "trustScore": 85,
  "trustExplanation": "Explanation of trust score calculation"
}

Rules:
- summary_en/fr: 2-4 sentences, must reference specific txIds when making claims
- timeline: chronological array of key events with txIds
- trustScore: 0-100 based on: completeness (all stages present), consistency (no gaps), verification (GPS/photos), timeliness
- trustExplanation: 1-2 sentences explaining the score
- Return ONLY the JSON object, no markdown`

const buyerQAPrompt = `You are an agricultural traceability assistant helping buyers understand product provenance.

Context: You have access to a complete blockchain timeline of events for this agricultural product.

Timeline:
%s

Question: %s

Return ONLY valid JSON in this exact format:
{
  "answer": "Clear, factual answer to the question",
  "evidenceTxIds": ["0.0.123@1234567890.123456789", "0.0.456@9876543210.987654321"]
}

Rules:
- answer: 2-4 sentences, factual, cite specific events from timeline
- evidenceTxIds: array of transaction IDs that support your answer (minimum 1 if making factual claims)
- If question cannot be answered from timeline, say so clearly and suggest what info is missing
- Return ONLY the JSON object, no markdown`

const translateMarketingPrompt = `You are a marketing translator for agricultural products.

Input summary (English): %s

Return ONLY valid JSON in this exact format:
{
  "summary_fr": "French translation of the summary",
  "blurb_en": "Short marketing blurb in English (1-2 sentences)",
  "blurb_fr": "Short marketing blurb in French (1-2 sentences)"
}

Rules:
- summary_fr: accurate translation maintaining technical terms
- blurb_en: compelling, consumer-friendly, highlights quality/traceability
- blurb_fr: same as blurb_en but in French
- Return ONLY the JSON object, no markdown`

const priceSuggestionPrompt = `You are an agricultural pricing analyst. Based on product quality and traceability data, suggest a price uplift percentage.

Input:
{
  "commodity": "product type",
  "region": "geographic region",
  "qualityTags": ["organic", "premium"],
  "trustScore": 85
}

Base rules:
- trustScore > 80 AND "organic" tag: 15-25% uplift
- trustScore > 90 AND "premium" tag: 20-30% uplift
- trustScore > 70 with complete traceability: 10-15% uplift
- trustScore < 50: 0-5% uplift

Return ONLY valid JSON in this exact format:
{
  "upliftPct": 20,
  "rationale": "Brief explanation of the suggested uplift"
}

Rules:
- upliftPct: integer percentage (0-50)
- rationale: 1-2 sentences explaining the recommendation
- Return ONLY the JSON object, no markdown`

const healthPrompt = `Return JSON: {"pong": true}`

func renderAnalyzeImage(photoURL string) string {
	return fmt.Sprintf("%s\n\nImage URL: %s\n\nNote: Analyze based on URL context and filename.", analyzeImagePrompt, photoURL)
}

func renderSummarizeProvenance(timeline []types.TimelineEvent) string {
	eventsJSON, _ := json.MarshalIndent(map[string]any{"events": timeline}, "", "  ")
	return fmt.Sprintf("%s\n\nTimeline data:\n%s", summarizeProvenancePrompt, eventsJSON)
}

func renderBuyerQA(question string, timeline []types.TimelineEvent) string {
	timelineJSON, _ := json.MarshalIndent(timeline, "", "  ")
	return fmt.Sprintf(buyerQAPrompt, timelineJSON, question)
}

func renderTranslateMarketing(summaryEN string) string {
	return fmt.Sprintf(translateMarketingPrompt, summaryEN)
}

func renderPriceSuggestion(in PriceSuggestionInput) string {
	inputJSON, _ := json.MarshalIndent(in, "", "  ")
	return fmt.Sprintf("%s\n\nInput:\n%s", priceSuggestionPrompt, inputJSON)
}

func renderDashboardInsight(stats map[string]any) string {
	data, _ := json.Marshal(stats)
	var b strings.Builder
	b.WriteString("You are the Chief Analyst for an agricultural traceability ledger.\n")
	b.WriteString("Analyze these dashboard statistics: ")
	b.Write(data)
	b.WriteString("\nYour task is to provide a single, professional insight (1-2 sentences) for the dashboard.\n")
	b.WriteString(`Analyze the *business data* (e.g., "Activity is increasing, but 20% of new lots require review.").` + "\n")
	b.WriteString("Provide the insight in both English and French.\n\n")
	b.WriteString("Respond ONLY with this valid JSON format:\n")
	b.WriteString("{\n  \"insight_en\": \"<Your insight in English>\",\n  \"insight_fr\": \"<Votre aperçu en Français>\"\n}")
	return b.String()
}
