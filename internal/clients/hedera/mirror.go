package hedera

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/types"
)

// mirrorClient reads public ledger state from a mirror node's REST API.
type mirrorClient struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func newMirrorClient(log *logger.Logger, baseURL string, timeout time.Duration) *mirrorClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &mirrorClient{
		log:        log.With("client", "MirrorNode"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type mirrorNFT struct {
	TokenID      string `json:"token_id"`
	SerialNumber int64  `json:"serial_number"`
	AccountID    string `json:"account_id"`
	Metadata     string `json:"metadata"`
}

type mirrorTransactionList struct {
	Transactions []struct {
		TransactionID      string `json:"transaction_id"`
		ConsensusTimestamp string `json:"consensus_timestamp"`
		Result             string `json:"result"`
	} `json:"transactions"`
}

type mirrorTopicMessages struct {
	Messages []struct {
		ConsensusTimestamp string `json:"consensus_timestamp"`
		Message            string `json:"message"`
		SequenceNumber     int64  `json:"sequence_number"`
	} `json:"messages"`
}

func (m *mirrorClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrLedgerUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: mirror node http %d: %s", ErrLedgerUnavailable, resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode mirror response: %v", ErrLedgerUnavailable, err)
	}
	return nil
}

// fetchNFT returns the on-ledger NFT record with its metadata bytes decoded.
func (m *mirrorClient) fetchNFT(ctx context.Context, tokenID, serialNumber string) (map[string]any, error) {
	var nft mirrorNFT
	path := fmt.Sprintf("/api/v1/tokens/%s/nfts/%s", tokenID, serialNumber)
	if err := m.getJSON(ctx, path, &nft); err != nil {
		return nil, err
	}

	out := map[string]any{
		"tokenId":      nft.TokenID,
		"serialNumber": nft.SerialNumber,
		"accountId":    nft.AccountID,
	}
	if nft.Metadata != "" {
		raw, err := base64.StdEncoding.DecodeString(nft.Metadata)
		if err == nil {
			var decoded map[string]any
			if json.Unmarshal(raw, &decoded) == nil {
				for k, v := range decoded {
					out[k] = v
				}
			} else {
				out["metadataRaw"] = string(raw)
			}
		}
	}
	return out, nil
}

// fetchTrail resolves each submitted transaction id to its consensus message.
// Best effort: refs that cannot be resolved are dropped with a warning.
func (m *mirrorClient) fetchTrail(ctx context.Context, topicID string, txIDs []string) []types.LedgerMessage {
	messages := make([]types.LedgerMessage, 0, len(txIDs))
	for _, txID := range txIDs {
		msg, err := m.fetchMessage(ctx, topicID, txID)
		if err != nil {
			m.log.Warn("event trail entry unresolved, dropping", "tx_id", txID, "error", err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

func (m *mirrorClient) fetchMessage(ctx context.Context, topicID, txID string) (types.LedgerMessage, error) {
	var txs mirrorTransactionList
	path := "/api/v1/transactions/" + mirrorTxID(txID)
	if err := m.getJSON(ctx, path, &txs); err != nil {
		return types.LedgerMessage{}, err
	}
	if len(txs.Transactions) == 0 {
		return types.LedgerMessage{}, ErrNotFound
	}
	ts := txs.Transactions[0].ConsensusTimestamp

	var topicMsgs mirrorTopicMessages
	path = fmt.Sprintf("/api/v1/topics/%s/messages?timestamp=%s", topicID, ts)
	if err := m.getJSON(ctx, path, &topicMsgs); err != nil {
		return types.LedgerMessage{}, err
	}
	if len(topicMsgs.Messages) == 0 {
		return types.LedgerMessage{}, ErrNotFound
	}

	entry := topicMsgs.Messages[0]
	msg := types.LedgerMessage{
		TransactionID:      txID,
		ConsensusTimestamp: entry.ConsensusTimestamp,
		SequenceNumber:     entry.SequenceNumber,
	}
	if raw, err := base64.StdEncoding.DecodeString(entry.Message); err == nil {
		var payload map[string]any
		if json.Unmarshal(raw, &payload) == nil {
			msg.Payload = payload
		} else {
			msg.Note = truncate(string(raw), 200)
		}
	}
	return msg, nil
}

func (m *mirrorClient) pingTopic(ctx context.Context, topicID string) error {
	var out map[string]any
	return m.getJSON(ctx, "/api/v1/topics/"+topicID, &out)
}

// mirrorTxID converts the SDK's "0.0.123@1700000000.000000001" transaction id
// form into the "0.0.123-1700000000-000000001" form the mirror REST API uses.
func mirrorTxID(txID string) string {
	at := strings.IndexByte(txID, '@')
	if at < 0 {
		return txID
	}
	return txID[:at] + "-" + strings.ReplaceAll(txID[at+1:], ".", "-")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
