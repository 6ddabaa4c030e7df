package service

import "errors"

// Failure taxonomy exposed to the transport layer. Each is wrapped with the
// offending identifier at the point of failure and matched with errors.Is.
var (
	// ErrCatalogItemNotFound: the catalog has no entry for the id. Not retryable.
	ErrCatalogItemNotFound = errors.New("catalog item not found")
	// ErrCatalogUnavailable: network failure, timeout, or 5xx from the catalog.
	// The caller may retry.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrRatingNotFound: delete of a rating that does not exist.
	ErrRatingNotFound = errors.New("rating not found")
	// ErrAlreadyInList: add of a (user, movie) pair already on the list.
	ErrAlreadyInList = errors.New("movie already in list")
	// ErrNotInList: remove of a (user, movie) pair not on the list.
	ErrNotInList = errors.New("movie not in list")
	// ErrValidation: malformed input value, rejected before any I/O.
	ErrValidation = errors.New("validation failed")
)
