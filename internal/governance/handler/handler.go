package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lifeledger/internal/governance"
	govservice "lifeledger/internal/governance/service"
	"lifeledger/internal/journal"
	"lifeledger/internal/ledger"
	"lifeledger/internal/notify"
	"lifeledger/internal/platform/middleware"
	"lifeledger/internal/transport/http/shared"
	dErrors "lifeledger/pkg/domain-errors"
)

// Service defines the interface for proposal lifecycle operations.
type Service interface {
	CreateProposal(ctx context.Context, req govservice.CreateProposalRequest) (govservice.CreateProposalResult, error)
	CastVote(ctx context.Context, proposalID, voterOrgID int64, choice governance.Choice) (ledger.Receipt, error)
	Finalize(ctx context.Context, proposalID int64) (ledger.Receipt, error)
	GetProposal(ctx context.Context, proposalID int64) (*governance.Proposal, error)
}

// Notifier publishes domain events after successful submissions.
type Notifier interface {
	Publish(ctx context.Context, event notify.Event) error
}

// Handler handles proposal and vote endpoints.
type Handler struct {
	logger    *slog.Logger
	proposals Service
	journal   journal.Store
	notifier  Notifier
	validator middleware.TokenValidator
	limit     func(http.Handler) http.Handler
}

// Option configures the Handler.
type Option func(*Handler)

// WithJournal records confirmed receipts for later reconciliation.
func WithJournal(store journal.Store) Option {
	return func(h *Handler) { h.journal = store }
}

// WithNotifier publishes events after successful submissions.
func WithNotifier(n Notifier) Option {
	return func(h *Handler) { h.notifier = n }
}

// WithSubmitLimit rate-limits the fee-costing submission routes.
func WithSubmitLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.limit = mw }
}

// New creates a governance Handler.
func New(proposals Service, logger *slog.Logger, validator middleware.TokenValidator, opts ...Option) *Handler {
	h := &Handler{
		logger:    logger,
		proposals: proposals,
		validator: validator,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the governance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.Recovery(h.logger))
		router.Use(middleware.RequestID)
		router.Use(middleware.Logger(h.logger))
		router.Use(middleware.Timeout(60 * time.Second))
		router.Use(middleware.ContentTypeJSON)
		router.Use(middleware.RequireAuth(h.validator, h.logger))

		router.Get("/proposals/{proposalID}", h.handleGetProposal)

		submit := router.With()
		if h.limit != nil {
			submit = router.With(h.limit)
		}
		submit.Post("/proposals", h.handleCreateProposal)
		submit.Post("/proposals/{proposalID}/votes", h.handleCastVote)
		submit.Post("/proposals/{proposalID}/finalize", h.handleFinalize)
	})
}

type createProposalRequest struct {
	ProposerOrgID int64  `json:"proposerOrgId"`
	ContentID     string `json:"contentId"`
	StartTime     int64  `json:"startTime"`
	EndTime       int64  `json:"endTime"`
}

type createProposalResponse struct {
	ProposalID  int64  `json:"proposalId"`
	TxID        string `json:"txId"`
	ConfirmedAt int64  `json:"confirmedAt"`
}

func (h *Handler) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.proposals.CreateProposal(ctx, govservice.CreateProposalRequest{
		ProposerOrgID: req.ProposerOrgID,
		ContentID:     req.ContentID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	})
	if err != nil {
		h.logSubmissionFailure(ctx, "createProposal failed", err)
		shared.WriteError(w, err)
		return
	}

	reference := strconv.FormatInt(result.ProposalID, 10)
	h.recordAndNotify(ctx, journal.Entry{
		ID:          uuid.New(),
		Kind:        journal.KindProposal,
		Reference:   reference,
		TxID:        result.Receipt.TxID,
		ConfirmedAt: result.Receipt.ConfirmedAt,
	}, notify.Event{
		Type:    notify.TypeProposalCreated,
		Key:     reference,
		TxID:    result.Receipt.TxID,
		Payload: map[string]int64{"proposerOrgId": req.ProposerOrgID},
	})

	shared.WriteJSON(w, http.StatusCreated, createProposalResponse{
		ProposalID:  result.ProposalID,
		TxID:        result.Receipt.TxID,
		ConfirmedAt: result.Receipt.ConfirmedAt.Unix(),
	})
}

type castVoteRequest struct {
	VoterOrgID int64 `json:"voterOrgId"`
	Choice     int   `json:"choice"`
}

type receiptResponse struct {
	TxID        string `json:"txId"`
	ConfirmedAt int64  `json:"confirmedAt"`
}

func (h *Handler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proposalID, err := proposalIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	receipt, err := h.proposals.CastVote(ctx, proposalID, req.VoterOrgID, governance.Choice(req.Choice))
	if err != nil {
		h.logSubmissionFailure(ctx, "castVote failed", err)
		shared.WriteError(w, err)
		return
	}

	reference := strconv.FormatInt(proposalID, 10)
	h.recordAndNotify(ctx, journal.Entry{
		ID:          uuid.New(),
		Kind:        journal.KindVote,
		Reference:   reference,
		TxID:        receipt.TxID,
		ConfirmedAt: receipt.ConfirmedAt,
	}, notify.Event{
		Type:    notify.TypeVoteCast,
		Key:     reference,
		TxID:    receipt.TxID,
		Payload: map[string]int64{"voterOrgId": req.VoterOrgID},
	})

	shared.WriteJSON(w, http.StatusCreated, receiptResponse{
		TxID:        receipt.TxID,
		ConfirmedAt: receipt.ConfirmedAt.Unix(),
	})
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proposalID, err := proposalIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	receipt, err := h.proposals.Finalize(ctx, proposalID)
	if err != nil {
		h.logSubmissionFailure(ctx, "finalize failed", err)
		shared.WriteError(w, err)
		return
	}

	reference := strconv.FormatInt(proposalID, 10)
	h.recordAndNotify(ctx, journal.Entry{
		ID:          uuid.New(),
		Kind:        journal.KindFinalize,
		Reference:   reference,
		TxID:        receipt.TxID,
		ConfirmedAt: receipt.ConfirmedAt,
	}, notify.Event{
		Type: notify.TypeProposalFinalized,
		Key:  reference,
		TxID: receipt.TxID,
	})

	shared.WriteJSON(w, http.StatusOK, receiptResponse{
		TxID:        receipt.TxID,
		ConfirmedAt: receipt.ConfirmedAt.Unix(),
	})
}

type proposalResponse struct {
	*governance.Proposal
	State governance.State `json:"state"`
}

func (h *Handler) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, err := proposalIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	proposal, err := h.proposals.GetProposal(r.Context(), proposalID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) && !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(r.Context(), "getProposal failed",
				"request_id", middleware.GetRequestID(r.Context()),
				"proposal_id", proposalID,
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, proposalResponse{
		Proposal: proposal,
		State:    proposal.State(time.Now()),
	})
}

func proposalIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "proposalID"), 10, 64)
	if err != nil {
		return 0, dErrors.NewValidation("proposalId", "must be a positive integer")
	}
	return id, nil
}

func (h *Handler) logSubmissionFailure(ctx context.Context, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation:
		h.logger.WarnContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
}

// recordAndNotify journals the receipt and publishes the event. Both are
// fail-open: the submission already succeeded on the ledger.
func (h *Handler) recordAndNotify(ctx context.Context, entry journal.Entry, event notify.Event) {
	if h.journal != nil {
		if err := h.journal.Append(ctx, entry); err != nil {
			h.logger.WarnContext(ctx, "journal append failed",
				"tx_id", entry.TxID,
				"error", err.Error(),
			)
		}
	}
	if h.notifier != nil {
		if err := h.notifier.Publish(ctx, event); err != nil {
			h.logger.WarnContext(ctx, "event publish failed",
				"event_type", event.Type,
				"error", err.Error(),
			)
		}
	}
}
