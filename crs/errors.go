package crs

import "errors"

// Error taxonomy. Each failure mode the core can produce surfaces as one of
// these, or as a wrapped combination via fmt.Errorf("...: %w", ...) — callers
// should match with errors.Is, never string comparison.
var (
	// ErrInvalidParameters covers k+m > 256, block_bytes % 8 != 0, k == 0,
	// m == 0, or a decode call that was not given exactly k blocks.
	ErrInvalidParameters = errors.New("crs: invalid parameters")

	// ErrVersionMismatch is returned by Init when the caller's expected
	// version does not match this package's Version.
	ErrVersionMismatch = errors.New("crs: version mismatch")

	// ErrDuplicateRowID is returned by Decode when two input blocks carry
	// the same row id — a caller bug, since the wire contract requires
	// distinct ids. A singular coefficient matrix cannot occur under valid
	// input; this is the clean failure for invalid input that would
	// otherwise produce one.
	ErrDuplicateRowID = errors.New("crs: duplicate row id")

	// ErrSingularMatrix is returned if Gaussian elimination fails to find a
	// pivot. Given the Cauchy matrix's invertibility guarantee this is
	// unreachable for valid, distinct row ids; it exists as a clean failure
	// path rather than an out-of-bounds read if that guarantee is ever
	// violated by a caller.
	ErrSingularMatrix = errors.New("crs: singular recovery matrix")
)
