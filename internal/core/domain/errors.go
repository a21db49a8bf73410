package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown connector type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync run is already active for the
	// source. Triggers are rejected, never queued.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrAuthenticationFailed is fatal to a sync run: no retry, no cursor
	// mutation.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrRateLimited is a transient provider error, retried with bounded
	// backoff before degrading to a recorded per-item error.
	ErrRateLimited = errors.New("rate limited")

	// ErrTokenExpired means the continuation token is no longer usable
	// (history window exceeded). The orchestrator falls back to a full
	// pass transparently.
	ErrTokenExpired = errors.New("continuation token expired")

	// ErrContentUnavailable means an item has no extractable content.
	// Not a failure: the item is skipped.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not
	// configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
