package hedera

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	hiero "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/agrodex/agrodex-backend/internal/config"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/types"
)

// SubmitResult is the consensus acknowledgement for one provenance event.
type SubmitResult struct {
	TransactionID string
	TopicID       string
	Status        string
}

// MintResult identifies a freshly minted batch certificate.
type MintResult struct {
	TokenID      string
	SerialNumber string
	CreateTxID   string
	MintTxID     string
}

// Gateway is everything the services need from the ledger. Consensus writes
// go through the network SDK; reads come from the mirror node REST API.
type Gateway interface {
	SubmitEvent(ctx context.Context, payload map[string]any) (SubmitResult, error)
	MintCertificate(ctx context.Context, metadata []byte) (MintResult, error)
	QueryCertificateMetadata(ctx context.Context, tokenID, serialNumber string) (map[string]any, error)
	QueryEventTrail(ctx context.Context, txIDs []string) []types.LedgerMessage
	PingTopic(ctx context.Context) error
	Close() error
}

type client struct {
	log     *logger.Logger
	sdk     *hiero.Client
	mirror  *mirrorClient
	topicID hiero.TopicID

	submitKey   *hiero.PrivateKey
	supplyKey   hiero.PrivateKey
	timeout     time.Duration
	tokenName   string
	tokenSymbol string
}

// NewClient builds a Gateway from the environment-driven configuration. The
// operator key is parsed leniently (DER hex, raw 64-char hex, or the SDK's
// generic form) and never logged.
func NewClient(log *logger.Logger, cfg config.Config) (Gateway, error) {
	log = log.With("client", "HederaGateway")

	if cfg.HederaOperatorID == "" {
		return nil, fmt.Errorf("HEDERA_OPERATOR_ID is required")
	}
	if cfg.HederaTopicID == "" {
		return nil, fmt.Errorf("HEDERA_TOPIC_ID is required")
	}

	operatorID, err := hiero.AccountIDFromString(cfg.HederaOperatorID)
	if err != nil {
		return nil, fmt.Errorf("parse HEDERA_OPERATOR_ID: %w", err)
	}
	operatorKey, err := LoadPrivateKeyAny(cfg.HederaOperatorKey)
	if err != nil {
		return nil, err
	}
	topicID, err := hiero.TopicIDFromString(cfg.HederaTopicID)
	if err != nil {
		return nil, fmt.Errorf("parse HEDERA_TOPIC_ID: %w", err)
	}

	var sdk *hiero.Client
	if cfg.HederaNetwork == "mainnet" {
		sdk = hiero.ClientForMainnet()
	} else {
		sdk = hiero.ClientForTestnet()
	}
	sdk.SetOperator(operatorID, operatorKey)
	if cfg.LedgerTimeout > 0 {
		sdk.SetRequestTimeout(&cfg.LedgerTimeout)
	}

	c := &client{
		log:         log,
		sdk:         sdk,
		mirror:      newMirrorClient(log, cfg.MirrorNodeURL, cfg.LedgerTimeout),
		topicID:     topicID,
		supplyKey:   operatorKey,
		timeout:     cfg.LedgerTimeout,
		tokenName:   "AgroDex Batch Certificate",
		tokenSymbol: "AGRI",
	}

	if cfg.HederaSubmitKey != "" {
		submitKey, err := LoadPrivateKeyAny(cfg.HederaSubmitKey)
		if err != nil {
			return nil, fmt.Errorf("parse HEDERA_SUBMIT_KEY: %w", err)
		}
		c.submitKey = &submitKey
	}

	log.Info("ledger gateway initialized",
		"network", cfg.HederaNetwork,
		"topic_id", cfg.HederaTopicID,
		"operator_id", cfg.HederaOperatorID,
		"submit_key_configured", c.submitKey != nil)
	return c, nil
}

func (c *client) SubmitEvent(ctx context.Context, payload map[string]any) (SubmitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return SubmitResult{}, &GatewayError{Op: "submit event", Err: err}
	}

	tx, err := hiero.NewTopicMessageSubmitTransaction().
		SetTopicID(c.topicID).
		SetMessage(body).
		FreezeWith(c.sdk)
	if err != nil {
		return SubmitResult{}, c.classify("submit event", err)
	}
	if c.submitKey != nil {
		tx = tx.Sign(*c.submitKey)
	}

	resp, err := tx.Execute(c.sdk)
	if err != nil {
		return SubmitResult{}, c.classify("submit event", err)
	}
	receipt, err := resp.GetReceipt(c.sdk)
	if err != nil {
		return SubmitResult{}, c.classify("submit event", err)
	}
	if receipt.Status != hiero.StatusSuccess {
		return SubmitResult{}, c.classify("submit event", fmt.Errorf("%w: %s", ErrLedgerRejected, receipt.Status))
	}

	result := SubmitResult{
		TransactionID: resp.TransactionID.String(),
		TopicID:       c.topicID.String(),
		Status:        receipt.Status.String(),
	}
	c.log.Info("provenance event submitted", "tx_id", result.TransactionID, "status", result.Status)
	return result, nil
}

// MintCertificate runs the two-phase mint: create a fresh unique-token class,
// then mint serial 1 into it carrying the compact metadata.
func (c *client) MintCertificate(ctx context.Context, metadata []byte) (MintResult, error) {
	if len(metadata) > MaxOnLedgerMetadataBytes {
		return MintResult{}, &GatewayError{Op: "mint certificate", Err: ErrMetadataTooLarge}
	}

	createResp, err := hiero.NewTokenCreateTransaction().
		SetTokenName(c.tokenName).
		SetTokenSymbol(c.tokenSymbol).
		SetTokenType(hiero.TokenTypeNonFungibleUnique).
		SetSupplyType(hiero.TokenSupplyTypeInfinite).
		SetTreasuryAccountID(c.sdk.GetOperatorAccountID()).
		SetSupplyKey(c.supplyKey.PublicKey()).
		SetMaxTransactionFee(hiero.NewHbar(20)).
		Execute(c.sdk)
	if err != nil {
		return MintResult{}, c.classify("create token", err)
	}
	createReceipt, err := createResp.GetReceipt(c.sdk)
	if err != nil {
		return MintResult{}, c.classify("create token", err)
	}
	if createReceipt.TokenID == nil {
		return MintResult{}, &GatewayError{Op: "create token", Err: fmt.Errorf("%w: receipt carried no token id", ErrLedgerRejected)}
	}
	tokenID := *createReceipt.TokenID

	mintResp, err := hiero.NewTokenMintTransaction().
		SetTokenID(tokenID).
		SetMetadata(metadata).
		Execute(c.sdk)
	if err != nil {
		return MintResult{}, c.classify("mint certificate", err)
	}
	mintReceipt, err := mintResp.GetReceipt(c.sdk)
	if err != nil {
		return MintResult{}, c.classify("mint certificate", err)
	}
	if len(mintReceipt.SerialNumbers) == 0 {
		return MintResult{}, &GatewayError{Op: "mint certificate", Err: fmt.Errorf("%w: receipt carried no serial numbers", ErrLedgerRejected)}
	}

	result := MintResult{
		TokenID:      tokenID.String(),
		SerialNumber: fmt.Sprintf("%d", mintReceipt.SerialNumbers[0]),
		CreateTxID:   createResp.TransactionID.String(),
		MintTxID:     mintResp.TransactionID.String(),
	}
	c.log.Info("certificate minted", "token_id", result.TokenID, "serial_number", result.SerialNumber)
	return result, nil
}

func (c *client) QueryCertificateMetadata(ctx context.Context, tokenID, serialNumber string) (map[string]any, error) {
	return c.mirror.fetchNFT(ctx, tokenID, serialNumber)
}

func (c *client) QueryEventTrail(ctx context.Context, txIDs []string) []types.LedgerMessage {
	return c.mirror.fetchTrail(ctx, c.topicID.String(), txIDs)
}

func (c *client) PingTopic(ctx context.Context) error {
	return c.mirror.pingTopic(ctx, c.topicID.String())
}

func (c *client) Close() error {
	return c.sdk.Close()
}

// classify attaches a remediation hint for the network statuses operators
// most often hit through misconfiguration.
func (c *client) classify(op string, err error) error {
	msg := err.Error()
	hint := ""
	switch {
	case strings.Contains(msg, "INVALID_SIGNATURE"):
		hint = "signature rejected: check that HEDERA_OPERATOR_KEY matches the operator account, and that HEDERA_SUBMIT_KEY is set when the topic requires one"
	case strings.Contains(msg, "INVALID_TOPIC_ID"):
		hint = "HEDERA_TOPIC_ID does not exist on the configured network"
	case strings.Contains(msg, "UNAUTHORIZED"):
		hint = "the operator account is not authorized for this topic"
	case strings.Contains(msg, "INSUFFICIENT_PAYER_BALANCE") || strings.Contains(msg, "INSUFFICIENT_TX_FEE"):
		hint = "the operator account balance cannot cover the transaction fee"
	}

	wrapped := err
	if !errors.Is(err, ErrLedgerRejected) && !errors.Is(err, ErrLedgerUnavailable) {
		if strings.Contains(msg, "deadline") || strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") {
			wrapped = fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		} else {
			wrapped = fmt.Errorf("%w: %v", ErrLedgerRejected, err)
		}
	}
	ge := &GatewayError{Op: op, Hint: hint, Err: wrapped}
	c.log.Error("ledger operation failed", "op", op, "error", err, "hint", hint)
	return ge
}
