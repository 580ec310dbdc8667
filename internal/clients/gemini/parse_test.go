package gemini

import "testing"

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```json{\"a\":1}```  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestDecodeIntoKeepsFallbackForOmittedFields(t *testing.T) {
	out := TranslateMarketingResult{
		SummaryFR: "Traduction non disponible",
		BlurbEN:   "Premium traceable product",
		BlurbFR:   "Produit traçable premium",
	}
	if errMsg := decodeInto(`{"summary_fr":"Bonjour"}`, &out); errMsg != "" {
		t.Fatalf("unexpected decode failure: %s", errMsg)
	}
	if out.SummaryFR != "Bonjour" {
		t.Errorf("summary_fr: want=%q got=%q", "Bonjour", out.SummaryFR)
	}
	if out.BlurbEN != "Premium traceable product" {
		t.Errorf("omitted blurb_en should keep fallback, got %q", out.BlurbEN)
	}
}

func TestDecodeIntoTypeMismatchLeavesTargetUntouched(t *testing.T) {
	out := TranslateMarketingResult{
		SummaryFR: "Traduction non disponible",
		BlurbEN:   "Premium traceable product",
		BlurbFR:   "Produit traçable premium",
	}
	// blurb_en decodes before the mismatched summary_fr would surface; none
	// of it may stick.
	if got := decodeInto(`{"blurb_en":"MODEL TEXT","summary_fr":12}`, &out); got != errInvalidJSON {
		t.Fatalf("error: want=%q got=%q", errInvalidJSON, got)
	}
	if out.BlurbEN != "Premium traceable product" {
		t.Errorf("blurb_en should keep fallback after failed decode, got %q", out.BlurbEN)
	}
	if out.SummaryFR != "Traduction non disponible" {
		t.Errorf("summary_fr should keep fallback after failed decode, got %q", out.SummaryFR)
	}
}

func TestDecodeIntoFailureReasons(t *testing.T) {
	var out map[string]any
	if got := decodeInto("", &out); got != errNoResponse {
		t.Errorf("empty text: want=%q got=%q", errNoResponse, got)
	}
	if got := decodeInto("the model rambled instead of emitting json", &out); got != errInvalidJSON {
		t.Errorf("garbage text: want=%q got=%q", errInvalidJSON, got)
	}
}

func TestDecodeIntoNullTrustScore(t *testing.T) {
	score := 50
	out := struct {
		TrustScore *int `json:"trustScore"`
	}{TrustScore: &score}
	if errMsg := decodeInto(`{"trustScore": null}`, &out); errMsg != "" {
		t.Fatalf("unexpected decode failure: %s", errMsg)
	}
	if out.TrustScore != nil {
		t.Errorf("explicit null should clear trustScore, got %v", *out.TrustScore)
	}
}
