// Package embedding provides the batching glue between the core and an
// embedding provider. It is shared by the sync write path (many chunks) and
// the search read path (one query): texts are truncated to the provider's
// length ceiling, grouped into bounded batches, paced by a token bucket and
// retried with backoff on rate limits.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/siftlabs/sift/internal/backoff"
	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/ports/driven"
	"github.com/siftlabs/sift/internal/logger"
)

// Provider ceilings. Conservative defaults that fit both the OpenAI and
// Ollama adapters.
const (
	// DefaultBatchSize is the maximum texts per provider call.
	DefaultBatchSize = 32

	// DefaultMaxTextLen is the per-text character ceiling. Longer texts
	// are truncated, not rejected: indexing must not fail merely because
	// one chunk is long.
	DefaultMaxTextLen = 8000

	// DefaultRequestsPerSecond paces provider calls.
	DefaultRequestsPerSecond = 5.0

	// DefaultBurstSize is the token bucket burst.
	DefaultBurstSize = 10
)

// Batcher wraps an EmbeddingService with batching, truncation and pacing.
type Batcher struct {
	service    driven.EmbeddingService
	batchSize  int
	maxTextLen int
	limiter    *rate.Limiter
}

// Option configures the batcher.
type Option func(*Batcher)

// WithBatchSize sets the maximum texts per provider call.
func WithBatchSize(size int) Option {
	return func(b *Batcher) {
		if size > 0 {
			b.batchSize = size
		}
	}
}

// WithMaxTextLen sets the per-text character ceiling.
func WithMaxTextLen(n int) Option {
	return func(b *Batcher) {
		if n > 0 {
			b.maxTextLen = n
		}
	}
}

// WithRateLimit sets the sustained request rate and burst for provider calls.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(b *Batcher) {
		if perSecond > 0 && burst > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// NewBatcher creates a batcher around an embedding service.
func NewBatcher(service driven.EmbeddingService, opts ...Option) *Batcher {
	b := &Batcher{
		service:    service,
		batchSize:  DefaultBatchSize,
		maxTextLen: DefaultMaxTextLen,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultBurstSize),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Embed generates one embedding, truncating the text first.
func (b *Batcher) Embed(ctx context.Context, text string) ([]float32, error) {
	if b.service == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	var vector []float32
	err := b.withRetry(ctx, func() error {
		var embedErr error
		vector, embedErr = b.service.Embed(ctx, b.truncate(text))
		return embedErr
	})
	return vector, err
}

// EmbedAll generates embeddings for every text, in input order, issuing one
// provider call per batch.
func (b *Batcher) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if b.service == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}

	truncated := make([]string, len(texts))
	for i, t := range texts {
		truncated[i] = b.truncate(t)
	}

	vectors := make([][]float32, 0, len(truncated))
	for start := 0; start < len(truncated); start += b.batchSize {
		end := start + b.batchSize
		if end > len(truncated) {
			end = len(truncated)
		}
		batch := truncated[start:end]
		logger.Debug("Embedding batch %d-%d of %d", start, end, len(truncated))

		var batchVectors [][]float32
		err := b.withRetry(ctx, func() error {
			var embedErr error
			batchVectors, embedErr = b.service.EmbedBatch(ctx, batch)
			return embedErr
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(batchVectors) != len(batch) {
			return nil, fmt.Errorf("embed batch at %d: got %d vectors for %d texts", start, len(batchVectors), len(batch))
		}
		vectors = append(vectors, batchVectors...)
	}
	return vectors, nil
}

// Dimensions reports the wrapped service's vector size.
func (b *Batcher) Dimensions() int {
	if b.service == nil {
		return 0
	}
	return b.service.Dimensions()
}

// withRetry paces the call and retries rate-limit errors with jittered
// exponential backoff up to the attempt cap.
func (b *Batcher) withRetry(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; attempt <= backoff.MaxAttempts; attempt++ {
		if waitErr := b.limiter.Wait(ctx); waitErr != nil {
			return waitErr
		}

		if err = call(); err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrRateLimited) {
			return err
		}
		if attempt == backoff.MaxAttempts {
			break
		}

		logger.Warn("Embedding provider rate limited, retrying (attempt %d): %v", attempt+1, err)
		if sleepErr := backoff.Sleep(ctx, attempt); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

// truncate cuts the text to the byte ceiling, backing up so the cut never
// lands inside a multi-byte rune.
func (b *Batcher) truncate(text string) string {
	if len(text) <= b.maxTextLen {
		return text
	}
	cut := b.maxTextLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
