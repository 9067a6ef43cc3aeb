// Package validate holds the pure input checks shared by the attestation and
// proposal managers. Every check either passes or returns a validation error
// naming the offending field; nothing here touches the ledger, so a failed
// check never costs a fee. Checks stop at the first failure.
package validate

import (
	"fmt"

	dErrors "lifeledger/pkg/domain-errors"
	"lifeledger/pkg/fingerprint"
)

// DocHash checks the canonical 32-byte hex fingerprint shape.
func DocHash(field, value string) error {
	if !fingerprint.Valid(value) {
		return dErrors.NewValidation(field, "must be 0x followed by exactly 64 hex digits")
	}
	return nil
}

// NonEmpty rejects empty strings.
func NonEmpty(field, value string) error {
	if value == "" {
		return dErrors.NewValidation(field, "must not be empty")
	}
	return nil
}

// PositiveInt rejects zero and negative values.
func PositiveInt(field string, value int64) error {
	if value <= 0 {
		return dErrors.NewValidation(field, "must be a positive integer")
	}
	return nil
}

// NonNegativeInt rejects negative values.
func NonNegativeInt(field string, value int64) error {
	if value < 0 {
		return dErrors.NewValidation(field, "must not be negative")
	}
	return nil
}

// IntInRange checks an inclusive bound.
func IntInRange(field string, value, min, max int64) error {
	if value < min || value > max {
		return dErrors.NewValidation(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
	return nil
}

// Choice checks a vote choice against the enumerated set {1, 2, 3}.
func Choice(field string, value int) error {
	if value < 1 || value > 3 {
		return dErrors.NewValidation(field, "must be 1 (for), 2 (against) or 3 (abstain)")
	}
	return nil
}

// TimeWindow checks that both bounds are non-negative and that the window is
// non-empty (end strictly after start).
func TimeWindow(startField, endField string, start, end int64) error {
	if err := NonNegativeInt(startField, start); err != nil {
		return err
	}
	if err := NonNegativeInt(endField, end); err != nil {
		return err
	}
	if end <= start {
		return dErrors.NewValidation(endField, "must be strictly after "+startField)
	}
	return nil
}
