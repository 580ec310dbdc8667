package hedera

import (
	"fmt"
	"regexp"
	"strings"

	hiero "github.com/hashgraph/hedera-sdk-go/v2"
)

var (
	derPrefixRe  = regexp.MustCompile(`^(302e|3030|3081)`)
	hex64Re      = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SanitizeKey strips whitespace and newlines that tend to sneak into keys
// pasted through deployment UIs.
func SanitizeKey(raw string) string {
	return whitespaceRe.ReplaceAllString(raw, "")
}

const (
	keyFormatDER     = "der"
	keyFormatHex64   = "hex64"
	keyFormatGeneric = "generic"
)

func detectKeyFormat(cleaned string) string {
	switch {
	case derPrefixRe.MatchString(cleaned):
		return keyFormatDER
	case hex64Re.MatchString(cleaned):
		return keyFormatHex64
	default:
		return keyFormatGeneric
	}
}

// LoadPrivateKeyAny parses an operator key in any of the accepted encodings:
// DER-encoded hex, raw 64-char hex (ECDSA tried first, then ED25519), or
// whatever the SDK's generic parser accepts.
func LoadPrivateKeyAny(raw string) (hiero.PrivateKey, error) {
	if raw == "" {
		return hiero.PrivateKey{}, fmt.Errorf("HEDERA_OPERATOR_KEY is required")
	}

	cleaned := strings.TrimPrefix(SanitizeKey(raw), "0x")

	var key hiero.PrivateKey
	var err error
	switch detectKeyFormat(cleaned) {
	case keyFormatDER:
		key, err = hiero.PrivateKeyFromStringDer(cleaned)
	case keyFormatHex64:
		key, err = hiero.PrivateKeyFromStringECDSA(cleaned)
		if err != nil {
			key, err = hiero.PrivateKeyFromStringEd25519(cleaned)
		}
	default:
		key, err = hiero.PrivateKeyFromString(cleaned)
	}
	if err != nil {
		return hiero.PrivateKey{}, fmt.Errorf(
			"failed to parse HEDERA_OPERATOR_KEY (%d chars, starts with %q): expected 64-char hex (ED25519/ECDSA) or DER-encoded hex (302e/3030/3081): %w",
			len(cleaned), prefixOf(cleaned, 10), err)
	}
	return key, nil
}

func prefixOf(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
