package valuegeneration

import "github.com/pkg/errors"

// These are the error kinds surfaced by the Generator. They are returned wrapped with request context, so callers
// should compare with errors.Is. None of them are retried by the Generator other than ErrGenerationExhausted, which
// is only returned once the configured attempt bound has been spent.
var (
	// ErrInvalidRange indicates a range request whose minimum exceeds its maximum.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidWidth indicates a byte width outside [1, 32] or a bit length outside [1, 256].
	ErrInvalidWidth = errors.New("invalid width")

	// ErrGenerationExhausted indicates the address exclusion constraint could not be satisfied within the attempt
	// bound.
	ErrGenerationExhausted = errors.New("generation exhausted")

	// ErrInvalidLength indicates a negative or oversized byte sequence length.
	ErrInvalidLength = errors.New("invalid length")
)
