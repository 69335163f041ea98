package interceptor

import "errors"

// Configuration errors, returned from New. These are fatal at
// construction time; an interceptor is never partially valid.
var (
	ErrInvalidBloomSize      = errors.New("interceptor: bloom filter size must be >= 1")
	ErrInvalidBloomErrorRate = errors.New("interceptor: bloom filter error rate must be in (0, 1)")
	ErrInvalidMaxResponse    = errors.New("interceptor: max response size must be > 0")
	ErrMissingCollectorURL   = errors.New("interceptor: traffic inspector url is required")
	ErrInvalidMatchingDomain = errors.New("interceptor: matchingDomains entries must be non-empty strings")
)
