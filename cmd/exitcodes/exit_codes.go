package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ExitCodeHandledError indicates an error occurred and was already reported to the user, so it should not be
	// printed again.
	ExitCodeHandledError = 2

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 3-5 are often used for common use cases, so we avoid them.

	// ExitCodeInvalidInput indicates a request could not be served because its input was invalid, such as a malformed
	// seed, an inverted range or an out-of-bounds width.
	ExitCodeInvalidInput = 6

	// ExitCodeGenerationFailed indicates a value could not be generated within the configured bounds, such as an
	// address request whose exclusions could not be satisfied.
	ExitCodeGenerationFailed = 7
)
