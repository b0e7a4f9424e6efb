package production

import "errors"

var (
	// ErrNotFound: the operation, or a material required by id, does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation: a draft is missing required fields; nothing was written.
	ErrValidation = errors.New("validation failed")

	// ErrPrecondition: confirming an already-confirmed operation or deleting
	// a confirmed one. Rejected without side effects.
	ErrPrecondition = errors.New("precondition failed")

	// ErrStockConflict: the conditional stock write kept losing to concurrent
	// writers and the retry budget ran out.
	ErrStockConflict = errors.New("stock update conflict")
)
