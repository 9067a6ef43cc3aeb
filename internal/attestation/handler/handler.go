package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lifeledger/internal/attestation"
	attestservice "lifeledger/internal/attestation/service"
	"lifeledger/internal/journal"
	"lifeledger/internal/ledger"
	"lifeledger/internal/notify"
	"lifeledger/internal/platform/middleware"
	"lifeledger/internal/transport/http/shared"
	dErrors "lifeledger/pkg/domain-errors"
	"lifeledger/pkg/fingerprint"
)

// Service defines the interface for attestation operations.
type Service interface {
	Attest(ctx context.Context, req attestservice.AttestRequest) (ledger.Receipt, error)
	GetLatest(ctx context.Context, docHash string) (*attestation.Record, error)
}

// Notifier publishes domain events after successful submissions.
type Notifier interface {
	Publish(ctx context.Context, event notify.Event) error
}

// Handler handles attestation endpoints.
type Handler struct {
	logger       *slog.Logger
	attestations Service
	journal      journal.Store
	notifier     Notifier
	validator    middleware.TokenValidator
	limit        func(http.Handler) http.Handler
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

// WithSubmitLimit rate-limits the fee-costing submission route.
func WithSubmitLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.limit = mw }
}

// New creates an attestation Handler.
func New(attestations Service, logger *slog.Logger, validator middleware.TokenValidator, opts ...Option) *Handler {
	h := &Handler{
		logger:       logger,
		attestations: attestations,
		validator:    validator,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the attestation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.Recovery(h.logger))
		router.Use(middleware.RequestID)
		router.Use(middleware.Logger(h.logger))
		router.Use(middleware.Timeout(60 * time.Second))
		router.Use(middleware.ContentTypeJSON)
		router.Use(middleware.RequireAuth(h.validator, h.logger))

		router.Get("/attestations/{docHash}", h.handleGetLatest)
		router.Post("/documents/digest", h.handleDigest)
		if h.limit != nil {
			router.With(h.limit).Post("/attestations", h.handleAttest)
		} else {
			router.Post("/attestations", h.handleAttest)
		}
	})
}

type attestRequest struct {
	DocHash     string `json:"docHash"`
	ContentID   string `json:"contentId"`
	OCRScore    int64  `json:"ocrScore"`
	OCRVerified bool   `json:"ocrVerified"`
}

type receiptResponse struct {
	TxID        string `json:"txId"`
	ConfirmedAt int64  `json:"confirmedAt"`
}

// handleAttest anchors a verification outcome. Each successful call creates a
// new record version on the ledger; the portal backend deduplicates
// verification events before calling here.
func (h *Handler) handleAttest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req attestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	receipt, err := h.attestations.Attest(ctx, attestservice.AttestRequest{
		DocHash:   req.DocHash,
		ContentID: req.ContentID,
		OCRScore:  req.OCRScore,
		Verified:  req.OCRVerified,
	})
	if err != nil {
		h.logSubmissionFailure(ctx, "attest failed", requestID, err)
		shared.WriteError(w, err)
		return
	}

	h.recordAndNotify(ctx, journal.Entry{
		ID:          uuid.New(),
		Kind:        journal.KindAttestation,
		Reference:   fingerprint.Normalize(req.DocHash),
		TxID:        receipt.TxID,
		ConfirmedAt: receipt.ConfirmedAt,
	}, notify.Event{
		Type: notify.TypeAttestationRecorded,
		Key:  fingerprint.Normalize(req.DocHash),
		TxID: receipt.TxID,
	})

	shared.WriteJSON(w, http.StatusCreated, receiptResponse{
		TxID:        receipt.TxID,
		ConfirmedAt: receipt.ConfirmedAt.Unix(),
	})
}

func (h *Handler) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	docHash := chi.URLParam(r, "docHash")

	record, err := h.attestations.GetLatest(r.Context(), docHash)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) && !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(r.Context(), "getLatest failed",
				"request_id", middleware.GetRequestID(r.Context()),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

type digestRequest struct {
	// Content is the raw document, base64-encoded in transit.
	Content []byte `json:"content"`
}

type digestResponse struct {
	DocHash string `json:"docHash"`
}

// handleDigest computes the canonical fingerprint the portals attest under.
func (h *Handler) handleDigest(w http.ResponseWriter, r *http.Request) {
	var req digestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.Content) == 0 {
		shared.WriteError(w, dErrors.NewValidation("content", "must not be empty"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, digestResponse{DocHash: fingerprint.Sum(req.Content)})
}

func (h *Handler) logSubmissionFailure(ctx context.Context, msg, requestID string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation:
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err.Error())
	default:
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err.Error())
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
