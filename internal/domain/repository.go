package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are stored JSON-encoded; Get returns the encoded bytes.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CompletionClient submits a prompt to the natural-language completion service
// and returns the text of its answer
type CompletionClient interface {
	SubmitQuery(ctx context.Context, prompt string) (string, error)
}
