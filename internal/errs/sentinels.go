// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrUpstreamUnavailable indicates the feed or catalog API failed at
	// transport level, returned a non-success status, or produced an
	// unparseable body.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotFound indicates the requested entity does not exist: a store
	// miss, an unknown retailer domain, or an empty catalog result.
	ErrNotFound = errors.New("not found")

	// ErrMalformedURL indicates a retail URL from which no product slug
	// can be extracted.
	ErrMalformedURL = errors.New("malformed url")

	// ErrPersistenceFailure indicates a store write error.
	ErrPersistenceFailure = errors.New("persistence failure")
)
