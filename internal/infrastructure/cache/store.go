// Package cache stores replayable responses for Idempotency-Key requests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrStoreClosed is returned by operations on a closed store
var ErrStoreClosed = errors.New("cache: store closed")

// Entry is the state kept for one idempotency key.
// A pending entry marks a request that is still running.
type Entry struct {
	Fingerprint string `json:"fingerprint"`
	Pending     bool   `json:"pending"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// ResponseStore keeps idempotency entries with a TTL
type ResponseStore interface {
	// Reserve claims key for the request identified by fingerprint.
	// It returns nil when the claim succeeded, or the entry already held
	// under key (pending or completed).
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*Entry, error)
	// Complete replaces the pending entry with the finished response
	Complete(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	// Release drops the key so the request can be retried
	Release(ctx context.Context, key string) error
	Close() error
}
