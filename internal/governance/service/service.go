// Package service implements the proposal manager: proposal creation, vote
// casting and finalization against the ledger. The manager is stateless and
// does not re-derive whether a proposal is active: wall-clock comparisons
// against ledger time race, so the ledger's judgment on voting windows,
// one-vote-per-organization and finalization order is authoritative and its
// rejections are surfaced as submission failures.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"lifeledger/internal/governance"
	"lifeledger/internal/ledger"
	"lifeledger/internal/platform/metrics"
	"lifeledger/internal/validate"
	dErrors "lifeledger/pkg/domain-errors"
)

// Ledger is the slice of the ledger client the manager needs.
type Ledger interface {
	Submit(ctx context.Context, operation string, args ...any) (ledger.Receipt, error)
	Read(ctx context.Context, query string, args ...any) (json.RawMessage, error)
}

// Service validates and submits proposal lifecycle operations.
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

// New creates the proposal manager.
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

// CreateProposalRequest carries a new proposal.
type CreateProposalRequest struct {
	ProposerOrgID int64
	ContentID     string
	StartTime     int64
	EndTime       int64
}

// CreateProposalResult pairs the ledger-assigned proposal ID with the
// submission receipt.
type CreateProposalResult struct {
	ProposalID int64
	Receipt    ledger.Receipt
}

// CreateProposal submits a proposal on behalf of an organization. The
// proposal ID is assigned by the ledger and extracted from the confirmed
// result.
func (s *Service) CreateProposal(ctx context.Context, req CreateProposalRequest) (CreateProposalResult, error) {
	checks := []error{
		validate.PositiveInt("proposerOrgId", req.ProposerOrgID),
		validate.NonEmpty("contentId", req.ContentID),
		validate.TimeWindow("startTime", "endTime", req.StartTime, req.EndTime),
	}
	for _, err := range checks {
		if err != nil {
			s.metrics.ObserveValidationRejection(dErrors.FieldOf(err))
			return CreateProposalResult{}, err
		}
	}

	start := time.Now()
	receipt, err := s.ledger.Submit(ctx, "createProposalOnBehalf",
		req.ProposerOrgID, req.ContentID, req.StartTime, req.EndTime)
	if err != nil {
		s.metrics.ObserveSubmission("createProposalOnBehalf", "failure", time.Since(start))
		return CreateProposalResult{}, dErrors.WrapOp(err, "createProposal org "+strconv.FormatInt(req.ProposerOrgID, 10))
	}
	s.metrics.ObserveSubmission("createProposalOnBehalf", "success", time.Since(start))

	proposalID, err := extractProposalID(receipt.Result)
	if err != nil {
		return CreateProposalResult{}, err
	}
	return CreateProposalResult{ProposalID: proposalID, Receipt: receipt}, nil
}

// CastVote submits one organization's vote. Window enforcement and
// one-vote-per-organization uniqueness live on the ledger; a closed window or
// duplicate vote comes back as a submission failure.
func (s *Service) CastVote(ctx context.Context, proposalID, voterOrgID int64, choice governance.Choice) (ledger.Receipt, error) {
	checks := []error{
		validate.PositiveInt("proposalId", proposalID),
		validate.PositiveInt("voterOrgId", voterOrgID),
		validate.Choice("choice", int(choice)),
	}
	for _, err := range checks {
		if err != nil {
			s.metrics.ObserveValidationRejection(dErrors.FieldOf(err))
			return ledger.Receipt{}, err
		}
	}

	start := time.Now()
	receipt, err := s.ledger.Submit(ctx, "castVoteOnBehalf", proposalID, voterOrgID, int64(choice))
	if err != nil {
		s.metrics.ObserveSubmission("castVoteOnBehalf", "failure", time.Since(start))
		return ledger.Receipt{}, dErrors.WrapOp(err, "castVote proposal "+strconv.FormatInt(proposalID, 10))
	}
	s.metrics.ObserveSubmission("castVoteOnBehalf", "success", time.Since(start))
	return receipt, nil
}

// Finalize closes a proposal after its voting window. The ledger rejects
// finalization before endTime or on an already finalized proposal; the
// manager tracks no local state and simply reports the verdict.
func (s *Service) Finalize(ctx context.Context, proposalID int64) (ledger.Receipt, error) {
	if err := validate.PositiveInt("proposalId", proposalID); err != nil {
		s.metrics.ObserveValidationRejection(dErrors.FieldOf(err))
		return ledger.Receipt{}, err
	}

	start := time.Now()
	receipt, err := s.ledger.Submit(ctx, "finalize", proposalID)
	if err != nil {
		s.metrics.ObserveSubmission("finalize", "failure", time.Since(start))
		return ledger.Receipt{}, dErrors.WrapOp(err, "finalize proposal "+strconv.FormatInt(proposalID, 10))
	}
	s.metrics.ObserveSubmission("finalize", "success", time.Since(start))
	return receipt, nil
}

// GetProposal reads a proposal's current ledger state, including its tally.
// Callers whose submission timed out should use this to learn the actual
// outcome before retrying anything.
func (s *Service) GetProposal(ctx context.Context, proposalID int64) (*governance.Proposal, error) {
	if err := validate.PositiveInt("proposalId", proposalID); err != nil {
		s.metrics.ObserveValidationRejection(dErrors.FieldOf(err))
		return nil, err
	}

	value, err := s.ledger.Read(ctx, "getProposal", proposalID)
	if err != nil {
		s.metrics.ObserveRead("getProposal", string(dErrors.CodeOf(err)))
		return nil, dErrors.WrapOp(err, "getProposal "+strconv.FormatInt(proposalID, 10))
	}

	var proposal governance.Proposal
	if err := json.Unmarshal(value, &proposal); err != nil {
		s.metrics.ObserveRead("getProposal", "decode_failure")
		return nil, dErrors.Wrap(err, dErrors.CodeRead, "decode proposal")
	}
	s.metrics.ObserveRead("getProposal", "success")
	return &proposal, nil
}

func extractProposalID(result json.RawMessage) (int64, error) {
	var assigned struct {
		ProposalID int64 `json:"proposalId"`
	}
	if err := json.Unmarshal(result, &assigned); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "decode proposal id from confirmed result")
	}
	if assigned.ProposalID <= 0 {
		return 0, dErrors.New(dErrors.CodeInternal, "confirmed result carries no proposal id")
	}
	return assigned.ProposalID, nil
}
