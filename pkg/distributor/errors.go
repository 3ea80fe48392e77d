package distributor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProof is returned when a published claim does not verify against its root
	ErrInvalidProof = errors.New("claim proof does not verify against merkle root")

	// ErrTotalMismatch is returned when a published token total differs from the sum of its claims
	ErrTotalMismatch = errors.New("token total does not equal the sum of claim amounts")

	// ErrMalformedArtifact is returned when a published artifact cannot be decoded
	ErrMalformedArtifact = errors.New("malformed distribution artifact")
)

// recordLabel formats the position of an input record; negative positions are unknown.
func recordLabel(record int) string {
	if record < 0 {
		return ""
	}
	return fmt.Sprintf(" in record %d", record)
}

// InvalidAddressError is returned when an input address is not a valid 20-byte hex address
type InvalidAddressError struct {
	Record  int
	Address string
	Reason  string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q%s: %s", e.Address, recordLabel(e.Record), e.Reason)
}

// InvalidAmountError is returned when a balance is not a non-negative integer
type InvalidAmountError struct {
	Record  int
	Address string
	Balance string
	Reason  string
}

func (e *InvalidAmountError) Error() string {
	if e.Address == "" {
		return fmt.Sprintf("invalid balance %q%s: %s", e.Balance, recordLabel(e.Record), e.Reason)
	}
	return fmt.Sprintf("invalid balance %q for %s%s: %s", e.Balance, e.Address, recordLabel(e.Record), e.Reason)
}

// DuplicateAddressError is returned when the same canonical address appears twice
type DuplicateAddressError struct {
	Record      int
	FirstRecord int
	Address     string
}

func (e *DuplicateAddressError) Error() string {
	return fmt.Sprintf("duplicate address %s in record %d (first seen in record %d)", e.Address, e.Record, e.FirstRecord)
}
