package hedera

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// MaxOnLedgerMetadataBytes is the ledger's fixed NFT metadata size ceiling.
const MaxOnLedgerMetadataBytes = 100

// CompactMetadata is what actually goes on-ledger: a hash prefix pointing at
// the full metadata in the off-ledger side store, plus the event count.
type CompactMetadata struct {
	Hash  string `json:"h"`
	Count int    `json:"n"`
}

// BuildCompactMetadata hashes the full metadata document and returns the
// on-ledger bytes together with the full sha-256 hex digest used as the
// side-store key. The returned bytes are guaranteed to fit the ceiling.
func BuildCompactMetadata(full map[string]any, eventCount int) ([]byte, string, error) {
	payload, err := json.Marshal(full)
	if err != nil {
		return nil, "", fmt.Errorf("marshal metadata: %w", err)
	}
	sum := sha256.Sum256(payload)
	digest := hex.EncodeToString(sum[:])

	compact, err := json.Marshal(CompactMetadata{Hash: digest[:32], Count: eventCount})
	if err != nil {
		return nil, "", fmt.Errorf("marshal compact metadata: %w", err)
	}
	if len(compact) > MaxOnLedgerMetadataBytes {
		return nil, "", ErrMetadataTooLarge
	}
	return compact, digest, nil
}
