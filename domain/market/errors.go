package market

import "errors"

var (
	// Identifier failures. Rejected before any state is touched.
	ErrBadIdentifier    = errors.New("malformed identifier")
	ErrUnknownPartition = errors.New("unknown partition key")

	// Admin failures.
	ErrCrossPartition = errors.New("share belongs to another partition")
	ErrDuplicateShare = errors.New("share already exists")
	ErrShareNotFound  = errors.New("share not found")

	// Purchase failures.
	ErrAlreadyPurchasedToday = errors.New("already purchased this share type today")
	ErrCrossPartitionLimit   = errors.New("cross-partition weekly limit exceeded")
	ErrCapacityExceeded      = errors.New("share capacity exhausted")
	ErrAlreadyHeld           = errors.New("account already holds this share")

	// Sell / swap failures.
	ErrNotOwned           = errors.New("account does not own this share")
	ErrSwapAborted        = errors.New("swap aborted")
	ErrCompensationFailed = errors.New("swap compensation failed")

	// Channel failures.
	ErrRemoteTimeout = errors.New("no reply from remote partition")
)
