// Package ledger wraps the signing identity and the connection to the external
// anchor ledger. It exposes two primitives: Submit, which sends a
// state-changing operation and waits for confirmation within a bound, and
// Read, which performs a non-mutating lookup of current ledger state.
//
// Every Submit is a real, fee-costing, externally visible operation. The
// client attempts each logical submission exactly once and never retries on
// its own: a retry after an unknown outcome could double-attest or
// double-vote. On timeout the eventual outcome of the submission is not
// tracked; callers must re-query state instead of trusting the receipt.
package ledger

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	dErrors "lifeledger/pkg/domain-errors"
)

// Receipt is the confirmation evidence for an accepted submission. Result
// carries the operation's ledger-assigned return value, if any (for example
// the proposal ID assigned by createProposalOnBehalf).
type Receipt struct {
	TxID        string          `json:"txId"`
	ConfirmedAt time.Time       `json:"confirmedAt"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Config holds the connection and identity parameters. Endpoint and
// SigningKey are required; the rest default sensibly.
type Config struct {
	// Endpoint is the anchor gateway base URL.
	Endpoint string
	// SigningKey is the hex-encoded ed25519 seed of the shared platform
	// identity. All submissions are signed with it.
	SigningKey string
	// ConfirmTimeout bounds the wait for submission confirmation.
	ConfirmTimeout time.Duration
	// ReadTimeout bounds non-mutating lookups.
	ReadTimeout time.Duration
	// PollInterval is the receipt polling cadence.
	PollInterval time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

const (
	defaultConfirmTimeout = 30 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultPollInterval   = 500 * time.Millisecond
)

// Client is safe for concurrent use. Reads run in parallel; submissions are
// dispatched one at a time because the ledger orders transactions from a
// single identity by sequence number.
type Client struct {
	endpoint       string
	key            ed25519.PrivateKey
	signer         string
	http           *http.Client
	confirmTimeout time.Duration
	readTimeout    time.Duration
	pollInterval   time.Duration
	tracer         trace.Tracer

	submitMu sync.Mutex
}

// New constructs a Client, failing fast when connection or identity
// parameters are absent or malformed. The connection itself is lazy: no
// network traffic happens until the first Submit or Read.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, dErrors.New(dErrors.CodeConfiguration, "ledger endpoint is required")
	}
	if cfg.SigningKey == "" {
		return nil, dErrors.New(dErrors.CodeConfiguration, "ledger signing key is required")
	}
	seed, err := hex.DecodeString(cfg.SigningKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "ledger signing key is not valid hex")
	}
	if len(seed) != ed25519.SeedSize {
		return nil, dErrors.Newf(dErrors.CodeConfiguration, "ledger signing key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	key := ed25519.NewKeyFromSeed(seed)
	c := &Client{
		endpoint:       cfg.Endpoint,
		key:            key,
		signer:         "0x" + hex.EncodeToString(key.Public().(ed25519.PublicKey)),
		http:           cfg.HTTPClient,
		confirmTimeout: cfg.ConfirmTimeout,
		readTimeout:    cfg.ReadTimeout,
		pollInterval:   cfg.PollInterval,
		tracer:         otel.Tracer("lifeledger/ledger"),
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.confirmTimeout <= 0 {
		c.confirmTimeout = defaultConfirmTimeout
	}
	if c.readTimeout <= 0 {
		c.readTimeout = defaultReadTimeout
	}
	if c.pollInterval <= 0 {
		c.pollInterval = defaultPollInterval
	}
	return c, nil
}

// Signer returns the identity that signs all submissions, in canonical hex.
func (c *Client) Signer() string { return c.signer }

// Submit sends a state-changing operation and blocks until the ledger
// confirms it, rejects it, or the confirmation bound expires. A timeout
// leaves the outcome unknown: the returned error carries the timeout code and
// the submission is not retried.
func (c *Client) Submit(ctx context.Context, operation string, args ...any) (Receipt, error) {
	ctx, span := c.tracer.Start(ctx, "ledger.submit",
		trace.WithAttributes(attribute.String("ledger.operation", operation)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	if args == nil {
		args = []any{}
	}
	params := submitParams{
		Operation:   operation,
		Args:        args,
		Signer:      c.signer,
		SubmittedAt: time.Now().Unix(),
	}
	sig, err := c.sign(params)
	if err != nil {
		span.RecordError(err)
		return Receipt{}, err
	}
	params.Signature = sig

	var submitted struct {
		TxID string `json:"txId"`
	}
	c.submitMu.Lock()
	err = c.call(ctx, methodSubmit, params, &submitted)
	c.submitMu.Unlock()
	if err != nil {
		err = c.classifySubmitErr(ctx, operation, err)
		span.RecordError(err)
		return Receipt{}, err
	}
	span.SetAttributes(attribute.String("ledger.tx_id", submitted.TxID))

	receipt, err := c.awaitReceipt(ctx, operation, submitted.TxID)
	if err != nil {
		span.RecordError(err)
		return Receipt{}, err
	}
	return receipt, nil
}

// Read performs a non-mutating lookup. Absence of the target record is
// reported with the not-found code so callers can distinguish "never
// attested" from a transient failure.
func (c *Client) Read(ctx context.Context, query string, args ...any) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "ledger.read",
		trace.WithAttributes(attribute.String("ledger.query", query)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	if args == nil {
		args = []any{}
	}
	var value json.RawMessage
	err := c.call(ctx, methodRead, readParams{Query: query, Args: args}, &value)
	if err != nil {
		if rpcErr, ok := err.(*rpcError); ok {
			if rpcErr.Code == rpcCodeNotFound {
				return nil, dErrors.Newf(dErrors.CodeNotFound, "%s: no record on ledger", query)
			}
			err = dErrors.Wrap(rpcErr, dErrors.CodeRead, query+" failed")
		} else {
			err = dErrors.Wrap(err, dErrors.CodeRead, query+" failed")
		}
		span.RecordError(err)
		return nil, err
	}
	return value, nil
}

// awaitReceipt polls for the submission's receipt until the ledger reports a
// terminal status or ctx expires.
func (c *Client) awaitReceipt(ctx context.Context, operation, txID string) (Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var rcpt receiptResult
		err := c.call(ctx, methodReceipt, []string{txID}, &rcpt)
		switch {
		case err == nil && rcpt.Status == receiptConfirmed:
			return Receipt{
				TxID:        txID,
				ConfirmedAt: time.Unix(rcpt.ConfirmedAt, 0).UTC(),
				Result:      rcpt.Result,
			}, nil
		case err == nil && rcpt.Status == receiptRejected:
			return Receipt{}, dErrors.Newf(dErrors.CodeSubmission, "%s rejected by ledger: %s", operation, rcpt.Reason)
		case err != nil && ctx.Err() == nil:
			// Transient polling failure. The submission is already in flight,
			// so keep waiting until the bound expires.
		}

		select {
		case <-ctx.Done():
			return Receipt{}, dErrors.Newf(dErrors.CodeTimeout,
				"%s: confirmation for tx %s not observed within bound; outcome unknown", operation, txID)
		case <-ticker.C:
		}
	}
}

func (c *Client) classifySubmitErr(ctx context.Context, operation string, err error) error {
	if ctx.Err() != nil {
		// The request may have reached the ledger before the deadline hit.
		return dErrors.Wrap(err, dErrors.CodeTimeout, operation+": submission outcome unknown")
	}
	if rpcErr, ok := err.(*rpcError); ok {
		return dErrors.Wrap(rpcErr, dErrors.CodeSubmission, operation+" rejected by ledger")
	}
	return dErrors.Wrap(err, dErrors.CodeSubmission, operation+" submission failed")
}

// sign produces the identity's signature over the keccak digest of the
// canonical submission payload, excluding the signature field itself.
func (c *Client) sign(params submitParams) (string, error) {
	params.Signature = ""
	payload, err := json.Marshal(params)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeSubmission, "encode submission payload")
	}
	return "0x" + hex.EncodeToString(ed25519.Sign(c.key, digest(payload))), nil
}
