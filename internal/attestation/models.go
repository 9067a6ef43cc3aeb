// Package attestation defines the versioned document-verification record
// anchored on the ledger.
package attestation

// MaxOCRScore is the upper bound of the confidence score in basis points
// (10000 = 100%).
const MaxOCRScore = 10000

// Record is one attestation for a document fingerprint as stored on the
// ledger. Records are append-only and versioned: every successful attestation
// for the same fingerprint increments Version, and only the highest version
// is observable through lookups.
type Record struct {
	// DocHash is the canonical fingerprint and the record's primary key.
	DocHash string `json:"docHash"`
	// ContentID references the externally stored document content.
	ContentID string `json:"contentId"`
	// OCRVerified reports whether automated verification passed.
	OCRVerified bool `json:"ocrVerified"`
	// OCRScore is the verification confidence in basis points.
	OCRScore int64 `json:"ocrScore"`
	// SignatureVerified and ClaimedSigner describe the optional document
	// signature check; ClaimedSigner may be empty.
	SignatureVerified bool   `json:"signatureVerified"`
	ClaimedSigner     string `json:"claimedSigner,omitempty"`
	// Status is a ledger-defined code passed through uninterpreted.
	Status uint8 `json:"status"`
	// AttestedAt is the ledger timestamp in seconds since epoch.
	AttestedAt int64 `json:"attestedAt"`
	// AttestedBy is the signing identity that submitted this version.
	AttestedBy string `json:"attestedBy"`
	// Version increases monotonically per fingerprint.
	Version uint64 `json:"version"`
}
