package merkle

import (
	"errors"
	"fmt"
)

// ErrEmptyTree is returned when building a tree from an empty leaf list
var ErrEmptyTree = errors.New("cannot build merkle tree from empty leaf list")

// IndexOutOfRangeError is returned when a proof is requested for a leaf that does not exist
type IndexOutOfRangeError struct {
	Index int
	Size  int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("leaf index %d out of bounds (tree has %d leaves)", e.Index, e.Size)
}

// EncodingError is returned when a value does not fit the fixed width it is packed into
type EncodingError struct {
	Field  string
	Value  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %s %q: %s", e.Field, e.Value, e.Reason)
}
