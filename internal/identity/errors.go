package identity

import "errors"

// #region errors
// Every rejection is a distinct, enumerable kind so callers can branch
// on cause. None are fatal to the record: a rejected call leaves it
// valid and usable.
var (
	// Input-shape errors.
	ErrDimensionWeightMismatch = errors.New("identity: dimension and weight counts differ")
	ErrTooManyDimensions       = errors.New("identity: more than 16 dimensions")
	ErrNoDimensions            = errors.New("identity: at least one dimension required")
	ErrDimensionNameTooLong    = errors.New("identity: dimension name exceeds 16 bytes")
	ErrSignalLengthMismatch    = errors.New("identity: experience signal length differs from dimension count")

	// Range errors.
	ErrWeightOutOfRange = errors.New("identity: weight outside [0, 10000]")

	// Index errors.
	ErrInvalidDimensionIndex = errors.New("identity: dimension index out of range")

	// Rate errors.
	ErrRateLimited = errors.New("identity: declaration attempted before minimum slot gap")

	// Capacity errors.
	ErrPivotalCapacity = errors.New("identity: pivotal experience storage full")
)

// #endregion errors
