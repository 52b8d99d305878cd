package engine

import "errors"

// Sentinel errors returned by the engine's public API. Callers branch with
// errors.Is; wrapped detail carries the underlying cause.
var (
	// ErrRepositoryInvalid means the requested root does not exist or is
	// not a directory. Submit never creates a job in this case.
	ErrRepositoryInvalid = errors.New("repository invalid")

	// ErrJobNotFound means the job id is unknown or has been evicted.
	ErrJobNotFound = errors.New("job not found")

	// ErrCancelled means the analysis context was cancelled before the
	// pipeline finished.
	ErrCancelled = errors.New("analysis cancelled")

	// ErrTimeout means the analysis context deadline expired.
	ErrTimeout = errors.New("analysis timed out")
)
