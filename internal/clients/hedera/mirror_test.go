package hedera

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agrodex/agrodex-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

func TestMirrorTxID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0.0.123@1700000000.000000001", "0.0.123-1700000000-000000001"},
		{"0.0.9@5.7", "0.0.9-5-7"},
		{"already-converted", "already-converted"},
	}
	for _, tc := range cases {
		if got := mirrorTxID(tc.in); got != tc.want {
			t.Errorf("mirrorTxID(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestFetchNFTDecodesMetadata(t *testing.T) {
	meta := base64.StdEncoding.EncodeToString([]byte(`{"h":"abc123","n":2}`))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tokens/0.0.5005/nfts/1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_id":"0.0.5005","serial_number":1,"account_id":"0.0.2002","metadata":"` + meta + `"}`))
	}))
	defer srv.Close()

	m := newMirrorClient(testLogger(t), srv.URL, 5*time.Second)
	got, err := m.fetchNFT(context.Background(), "0.0.5005", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["tokenId"] != "0.0.5005" {
		t.Errorf("tokenId: want=%q got=%v", "0.0.5005", got["tokenId"])
	}
	if got["h"] != "abc123" {
		t.Errorf("decoded metadata hash: want=%q got=%v", "abc123", got["h"])
	}
	if got["n"] != float64(2) {
		t.Errorf("decoded metadata count: want=2 got=%v", got["n"])
	}
}

func TestFetchNFTNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"_status":{"messages":[{"message":"Not found"}]}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	m := newMirrorClient(testLogger(t), srv.URL, 5*time.Second)
	_, err := m.fetchNFT(context.Background(), "0.0.5005", "99")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFetchTrailResolvesAndDropsUnresolved(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(`{"event":"REGISTER_BATCH","batchName":"Lot A"}`))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/transactions/0.0.7-100-000000001":
			w.Write([]byte(`{"transactions":[{"transaction_id":"0.0.7-100-000000001","consensus_timestamp":"100.000000005","result":"SUCCESS"}]}`))
		case "/api/v1/topics/0.0.9001/messages":
			if r.URL.Query().Get("timestamp") != "100.000000005" {
				t.Errorf("unexpected timestamp filter %q", r.URL.Query().Get("timestamp"))
			}
			w.Write([]byte(`{"messages":[{"consensus_timestamp":"100.000000005","message":"` + payload + `","sequence_number":41}]}`))
		default:
			http.Error(w, `{}`, http.StatusNotFound)
		}
	}))
	defer srv.Close()

	m := newMirrorClient(testLogger(t), srv.URL, 5*time.Second)
	trail := m.fetchTrail(context.Background(), "0.0.9001", []string{
		"0.0.7@100.000000001",
		"0.0.7@200.000000001", // mirror has no record of this one
	})
	if len(trail) != 1 {
		t.Fatalf("want 1 resolved message, got %d", len(trail))
	}
	msg := trail[0]
	if msg.TransactionID != "0.0.7@100.000000001" {
		t.Errorf("transaction id: want=%q got=%q", "0.0.7@100.000000001", msg.TransactionID)
	}
	if msg.SequenceNumber != 41 {
		t.Errorf("sequence number: want=41 got=%d", msg.SequenceNumber)
	}
	if msg.Payload["event"] != "REGISTER_BATCH" {
		t.Errorf("payload event: want=REGISTER_BATCH got=%v", msg.Payload["event"])
	}
}

func TestPingTopic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/topics/0.0.9001" {
			http.Error(w, `{}`, http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"topic_id":"0.0.9001"}`))
	}))
	defer srv.Close()

	m := newMirrorClient(testLogger(t), srv.URL, 5*time.Second)
	if err := m.pingTopic(context.Background(), "0.0.9001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.pingTopic(context.Background(), "0.0.404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown topic, got %v", err)
	}
}
