// Package fingerprint produces and checks canonical document fingerprints: the
// keccak-256 digest of the document bytes, rendered as a lowercase hex string
// prefixed with 0x. The fingerprint is the primary key of an attestation
// record and is immutable once first attested.
package fingerprint

import (
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Length is the canonical string length: "0x" plus 64 hex digits.
const Length = 66

var pattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Sum computes the canonical fingerprint of content.
func Sum(content []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(content)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// Valid reports whether s has the canonical 32-byte hex shape. Case of the
// hex digits is accepted; Normalize produces the canonical form.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Normalize lowercases the hex digits of a fingerprint. Callers must check
// Valid first; Normalize does not re-validate.
func Normalize(s string) string {
	return strings.ToLower(s)
}
