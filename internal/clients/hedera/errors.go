package hedera

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the mirror node has no record for the queried entity.
	ErrNotFound = errors.New("not found on ledger")
	// ErrLedgerUnavailable: transport failure or timeout talking to the network.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	// ErrLedgerRejected: the network processed the request and said no.
	ErrLedgerRejected = errors.New("ledger rejected")
	// ErrMetadataTooLarge: caller-supplied mint metadata exceeds the on-ledger ceiling.
	ErrMetadataTooLarge = errors.New("metadata exceeds 100 byte ledger ceiling")
)

// GatewayError carries a remediation hint alongside the classified cause so
// handlers can surface both without string-matching.
type GatewayError struct {
	Op   string
	Hint string
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Hint)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// HintOf returns the remediation hint buried in err, or "".
func HintOf(err error) string {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Hint
	}
	return ""
}
