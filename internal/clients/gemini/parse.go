package gemini

import (
	"encoding/json"
	"reflect"
	"strings"
)

const (
	errNoResponse  = "No response from AI"
	errInvalidJSON = "Invalid JSON response"
)

// stripFences removes the markdown code fences models sometimes wrap JSON in
// despite being told not to.
func stripFences(text string) string {
	cleaned := strings.ReplaceAll(text, "```json\n", "")
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```\n", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// decodeInto parses model output into out, a non-nil struct pointer already
// holding the fallback values: fields the model omitted keep them. Decoding
// goes through a scratch copy so a malformed reply leaves out untouched:
// a degraded result must never carry partial model output. The returned
// string is empty on success or one of the fixed parse-failure reasons.
func decodeInto(text string, out any) string {
	if text == "" {
		return errNoResponse
	}
	target := reflect.ValueOf(out).Elem()
	scratch := reflect.New(target.Type())
	scratch.Elem().Set(target)
	if err := json.Unmarshal([]byte(stripFences(text)), scratch.Interface()); err != nil {
		return errInvalidJSON
	}
	target.Set(scratch.Elem())
	return ""
}
