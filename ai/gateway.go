package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/pagefind/core"
)

const (
	// DefaultGatewayAttempts is the number of tries per embedding call.
	DefaultGatewayAttempts = 2

	// DefaultGatewayBaseDelay is the backoff before the first retry.
	DefaultGatewayBaseDelay = 250 * time.Millisecond
)

// Gateway wraps an Embedder with a timeout, bounded retries and reply checks.
// Every failure, including a malformed reply, surfaces as
// core.ErrEmbeddingUnavailable; the underlying provider error is flattened
// into the message and never exposed through errors.Is or errors.As.
type Gateway struct {
	embedder    Embedder
	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway) error

// WithTimeout bounds each EmbedTexts call, retries included.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		g.timeout = d
		return nil
	}
}

// WithRetry sets the attempt count and base backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) GatewayOption {
	return func(g *Gateway) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		g.maxAttempts = maxAttempts
		g.baseDelay = baseDelay
		return nil
	}
}

// WithGatewayLogger sets a custom logger for the gateway.
func WithGatewayLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGateway wraps embedder.
func NewGateway(embedder Embedder, opts ...GatewayOption) (*Gateway, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	g := &Gateway{
		embedder:    embedder,
		timeout:     DefaultEmbeddingTimeout,
		maxAttempts: DefaultGatewayAttempts,
		baseDelay:   DefaultGatewayBaseDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.logger = g.logger.With("component", "embedding-gateway")
	return g, nil
}

// EmbedText embeds a single text.
func (g *Gateway) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds texts in one batched provider call.
// On success the result has one vector per text, in input order, all of the
// same non-zero dimension.
func (g *Gateway) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		out, err := g.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		// A malformed reply is deterministic for the same input.
		if err := CheckVectors(out, len(texts)); err != nil {
			return Permanent(err)
		}
		vectors = out
		return nil
	}, g.maxAttempts, g.baseDelay)
	if err != nil {
		g.logger.Warn("embedding unavailable", "count", len(texts), "elapsed", time.Since(start), "err", err)
		return nil, fmt.Errorf("%w: %v", core.ErrEmbeddingUnavailable, err)
	}

	g.logger.Debug("embedded texts", "count", len(texts), "dim", len(vectors[0]), "elapsed", time.Since(start))
	return vectors, nil
}

// CheckVectors verifies that vectors holds want non-empty vectors of one
// common dimension.
func CheckVectors(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrVectorCountMismatch, len(vectors), want)
	}
	if want == 0 {
		return nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: index %d", ErrEmptyVector, i)
		}
		if len(v) != dim {
			return fmt.Errorf("%w: index %d has %d, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return nil
}
