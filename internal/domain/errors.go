package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product is not in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidCatalog is returned when the catalog configuration is inconsistent
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrRateLimited is returned when the completion service throttles us
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when a product name is blank
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrNoSnapshot is returned when no price check has been run for a product yet
	ErrNoSnapshot = errors.New("no price snapshot available")

	// ErrCompletionFailure is returned when the completion service request fails
	ErrCompletionFailure = errors.New("completion API request failed")

	// ErrUnauthorized is returned when the completion service rejects the API key
	ErrUnauthorized = errors.New("completion API rejected credentials")

	// ErrNotConfigured is returned when no completion API key is configured
	ErrNotConfigured = errors.New("completion API key not configured")
)
