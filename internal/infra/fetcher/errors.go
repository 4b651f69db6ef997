package fetcher

import "errors"

// Sentinel errors. PermanentFetchError-kind conditions (invalid URL,
// private IP, disallowed scheme, robots-disallowed, non-retryable 4xx)
// result in Fetch returning (nil, nil) to the engine per spec semantics --
// these sentinels are for internal plumbing and test assertions, not the
// Fetch contract itself.
var (
	// ErrInvalidURL indicates the URL format is invalid or uses an
	// unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a private, loopback, or
	// link-local IP address (SSRF prevention).
	ErrPrivateIP = errors.New("private IP access denied")

	// ErrTooManyRedirects indicates a fetch exceeded Config.MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates a response exceeded Config.MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrRobotsDisallowed indicates robots.txt forbids fetching the URL.
	ErrRobotsDisallowed = errors.New("robots.txt disallows this url")

	// ErrTimeout indicates the request exceeded Config.Timeout.
	ErrTimeout = errors.New("request timed out")
)
