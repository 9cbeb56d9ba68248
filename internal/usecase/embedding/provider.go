package embedding

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foundmatch/internal/domain"
	"github.com/kailas-cloud/foundmatch/internal/domain/score"
	"github.com/kailas-cloud/foundmatch/internal/metrics"
)

// Model load defaults.
const (
	DefaultLoadTimeout = 60 * time.Second
	DefaultRetryAfter  = 30 * time.Second
)

// Loader builds the embedding backend. It runs once per Provider unless it fails.
type Loader func(ctx context.Context) (domain.Embedder, error)

// Provider is the process-wide embedding handle. It is built at startup, loads the
// model on first use, and is shared read-only by every match run afterwards.
//
// A failed load is remembered: calls within retryAfter of the failure return the
// same error without touching the backend. The next call after that window loads
// again. Loads never overlap.
type Provider struct {
	load        Loader
	dimensions  int
	loadTimeout time.Duration
	retryAfter  time.Duration
	now         func() time.Time
	logger      *zap.Logger

	inner atomic.Pointer[loaded]

	mu       sync.Mutex // guards loading, err and failedAt
	err      error
	failedAt time.Time
}

type loaded struct {
	embedder domain.Embedder
}

// NewProvider creates a lazily loading provider. dimensions=0 disables the length check.
func NewProvider(load Loader, dimensions int, logger *zap.Logger) *Provider {
	return &Provider{
		load:        load,
		dimensions:  dimensions,
		loadTimeout: DefaultLoadTimeout,
		retryAfter:  DefaultRetryAfter,
		now:         time.Now,
		logger:      logger,
	}
}

// WithRetryAfter sets how long a load failure is served before the next attempt.
func (p *Provider) WithRetryAfter(d time.Duration) *Provider {
	if d > 0 {
		p.retryAfter = d
	}
	return p
}

// WithLoadTimeout overrides the model load timeout.
func (p *Provider) WithLoadTimeout(d time.Duration) *Provider {
	if d > 0 {
		p.loadTimeout = d
	}
	return p
}

// Embed returns the L2-normalised embedding of text.
func (p *Provider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	inner, err := p.model(ctx)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	res, err := inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if len(res.Embedding) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding: %w", domain.ErrEmbeddingProviderError)
	}
	if p.dimensions > 0 && len(res.Embedding) != p.dimensions {
		return domain.EmbeddingResult{}, fmt.Errorf(
			"embedding has %d dimensions, expected %d: %w",
			len(res.Embedding), p.dimensions, domain.ErrEmbeddingProviderError,
		)
	}

	// Inner layers may hand out shared slices (cache); normalise a copy.
	vec := make([]float32, len(res.Embedding))
	copy(vec, res.Embedding)
	res.Embedding = score.Normalize(vec)
	return res, nil
}

// HealthCheck loads the model if needed and probes the backend.
func (p *Provider) HealthCheck(ctx context.Context) error {
	inner, err := p.model(ctx)
	if err != nil {
		return err
	}
	if hc, ok := inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// model returns the loaded backend, loading it on first use.
// Concurrent callers block on the same load.
func (p *Provider) model(ctx context.Context) (domain.Embedder, error) {
	if l := p.inner.Load(); l != nil {
		return l.embedder, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if l := p.inner.Load(); l != nil {
		return l.embedder, nil
	}
	if p.err != nil && p.now().Sub(p.failedAt) < p.retryAfter {
		return nil, p.err
	}

	// Detached from the caller: its cancellation must not poison the handle.
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.loadTimeout)
	defer cancel()

	start := time.Now()
	inner, err := p.load(loadCtx)
	switch {
	case err != nil:
		err = fmt.Errorf("load embedding model: %w: %w", domain.ErrEmbedderUnavailable, err)
	case inner == nil:
		err = fmt.Errorf("load embedding model: loader returned nil: %w", domain.ErrEmbedderUnavailable)
	}

	if err != nil {
		p.err = err
		p.failedAt = p.now()
		metrics.EmbeddingModelLoadsTotal.WithLabelValues("error").Inc()
		p.logger.Error("Embedding model load failed",
			zap.Error(err),
			zap.Duration("retry_after", p.retryAfter),
		)
		return nil, err
	}

	p.err = nil
	p.inner.Store(&loaded{embedder: inner})
	metrics.EmbeddingModelLoadsTotal.WithLabelValues("success").Inc()
	p.logger.Info("Embedding model loaded", zap.Duration("duration", time.Since(start)))
	return inner, nil
}
