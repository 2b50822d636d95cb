package settlement

import "gitlab.com/distributed_lab/logan/v3/errors"

// Invariant violations caught client-side before any mutation is issued. The
// ledger re-checks all of them; catching them here is defense in depth and
// gives the operator a specific message instead of a reverted transaction.
var (
	ErrUnknownOrder      = errors.New("order is not present in the current snapshot")
	ErrNotFunded         = errors.New("order is not in the funded state")
	ErrProofMissing      = errors.New("order has no submitted proof")
	ErrDeadlineNotPassed = errors.New("settlement deadline has not passed, review is not open yet")
	ErrStateUnknown      = errors.New("project settlement state could not be loaded")
	ErrAlreadyAccepted   = errors.New("proof is already accepted, rejection is no longer possible")
	ErrEmptyReason       = errors.New("rejection requires a non-empty reason")
	ErrNothingSelected   = errors.New("selection contains no reviewable approved proofs")
)
