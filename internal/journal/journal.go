// Package journal keeps a local, append-only record of confirmed ledger
// receipts. When a submission times out its outcome is unknown; operators
// reconcile by comparing the journal against ledger state. Journal writes are
// fail-open: a failed append never fails the submission it records.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind labels the submission a journal entry records.
type Kind string

const (
	KindAttestation Kind = "attestation"
	KindProposal    Kind = "proposal"
	KindVote        Kind = "vote"
	KindFinalize    Kind = "finalize"
)

// Entry is one confirmed receipt. Reference is the domain key the submission
// targeted: a document fingerprint or a proposal ID.
type Entry struct {
	ID          uuid.UUID
	Kind        Kind
	Reference   string
	TxID        string
	ConfirmedAt time.Time
	RecordedAt  time.Time
}

// Store persists journal entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByReference(ctx context.Context, reference string) ([]Entry, error)
}
