// Package service implements the attestation manager: it validates inputs,
// submits attestation operations through the ledger client, and reads the
// latest record per fingerprint. The manager keeps no state of its own; the
// ledger is the only state owner.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lifeledger/internal/attestation"
	"lifeledger/internal/ledger"
	"lifeledger/internal/platform/metrics"
	"lifeledger/internal/validate"
	dErrors "lifeledger/pkg/domain-errors"
	"lifeledger/pkg/fingerprint"
)

// Ledger is the slice of the ledger client the manager needs.
type Ledger interface {
	Submit(ctx context.Context, operation string, args ...any) (ledger.Receipt, error)
	Read(ctx context.Context, query string, args ...any) (json.RawMessage, error)
}

// Service validates and submits document-verification attestations.
type Service struct {
	ledger  Ledger
	metrics *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates the attestation manager.
func New(l Ledger, opts ...Option) (*Service, error) {
	if l == nil {
		return nil, errors.New("ledger client is required")
	}
	s := &Service{ledger: l}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AttestRequest carries one verification outcome to anchor.
type AttestRequest struct {
	DocHash   string
	ContentID string
	OCRScore  int64
	Verified  bool
}

// Attest anchors a verification outcome for a document fingerprint. Every
// successful call creates a new record version, so callers must invoke it
// once per logical verification event. Concurrent attestations for the same
// fingerprint may interleave; the highest confirmed version wins, not the
// first submitted.
func (s *Service) Attest(ctx context.Context, req AttestRequest) (ledger.Receipt, error) {
	if err := s.validateAttest(req); err != nil {
		return ledger.Receipt{}, err
	}

	start := time.Now()
	receipt, err := s.ledger.Submit(ctx, "attestOcr",
		fingerprint.Normalize(req.DocHash), req.ContentID, req.OCRScore, req.Verified)
	if err != nil {
		s.metrics.ObserveSubmission("attestOcr", "failure", time.Since(start))
		return ledger.Receipt{}, dErrors.WrapOp(err, "attest "+req.DocHash)
	}
	s.metrics.ObserveSubmission("attestOcr", "success", time.Since(start))
	return receipt, nil
}

// GetLatest returns the highest-version attestation record for a fingerprint.
// A fingerprint that was never attested yields a not-found error, which is an
// expected outcome distinct from a read failure.
func (s *Service) GetLatest(ctx context.Context, docHash string) (*attestation.Record, error) {
	if err := validate.DocHash("docHash", docHash); err != nil {
		s.metrics.ObserveValidationRejection(dErrors.FieldOf(err))
		return nil, err
	}

	value, err := s.ledger.Read(ctx, "getLatest", fingerprint.Normalize(docHash))
	if err != nil {
		s.metrics.ObserveRead("getLatest", string(dErrors.CodeOf(err)))
		return nil, dErrors.WrapOp(err, "getLatest "+docHash)
	}

	var record attestation.Record
	if err := json.Unmarshal(value, &record); err != nil {
		s.metrics.ObserveRead("getLatest", "decode_failure")
		return nil, dErrors.Wrap(err, dErrors.CodeRead, "decode attestation record")
	}
	s.metrics.ObserveRead("getLatest", "success")
	return &record, nil
}

func (s *Service) validateAttest(req AttestRequest) error {
	checks := []error{
		validate.DocHash("docHash", req.DocHash),
		validate.NonEmpty("contentId", req.ContentID),
		validate.IntInRange("ocrScore", req.OCRScore, 0, attestation.MaxOCRScore),
	}
	for _, err := range checks {
		if err != nil {
			s.metrics.ObserveValidationRejection(dErrors.FieldOf(err))
			return err
		}
	}
	return nil
}
