// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package list

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

var (
	// ErrAllocation marks errors returned when storage for a node could not
	// be obtained. The list is unchanged when such an error is returned.
	ErrAllocation = errors.New("node allocation failed")
	// ErrStaleHandle marks errors returned when a handle does not refer to a
	// live node of the list. It indicates a programming error.
	ErrStaleHandle = errors.New("stale handle")
	// ErrClosed marks errors returned when inserting into a closed list.
	ErrClosed = errors.New("list closed")
)

// allocationWarningInterval rate limits the warning logged when a list
// refuses an insertion.
const allocationWarningInterval = 10 * time.Second

// AllocationError is returned when a node cannot be allocated, either
// because the list reached Config.MaxNodes or because Config.Account refused
// to grow. In the latter case the account's error is the cause.
type AllocationError struct {
	List     redact.SafeString
	Nodes    int
	MaxNodes int
	cause    error
}

var _ error = &AllocationError{}
var _ fmt.Formatter = &AllocationError{}
var _ errors.SafeFormatter = &AllocationError{}

func newAllocationError(name redact.SafeString, nodes, maxNodes int, cause error) error {
	return errors.Mark(&AllocationError{List: name, Nodes: nodes, MaxNodes: maxNodes, cause: cause}, ErrAllocation)
}

// Error is part of the error interface, which AllocationError implements.
func (e *AllocationError) Error() string {
	return fmt.Sprint(e)
}

// Unwrap returns the account error that caused the failure, if any.
func (e *AllocationError) Unwrap() error {
	return e.cause
}

// Format is part of the fmt.Formatter interface, which AllocationError
// implements.
func (e *AllocationError) Format(s fmt.State, verb rune) {
	errors.FormatError(e, s, verb)
}

// SafeFormatError is part of the errors.SafeFormatter interface, which
// AllocationError implements.
func (e *AllocationError) SafeFormatError(p errors.Printer) (next error) {
	if e.cause == nil {
		p.Printf("list %s: cannot allocate node: limit of %d nodes reached",
			e.List, redact.Safe(e.MaxNodes))
		return nil
	}
	p.Printf("list %s: cannot allocate node %d", e.List, redact.Safe(e.Nodes+1))
	return e.cause
}
