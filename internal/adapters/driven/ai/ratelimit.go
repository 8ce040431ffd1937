package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
	"github.com/custodia-labs/suitesmith/internal/logger"
)

// networkBackoff is how long calls pause after the provider reports a
// network-class failure such as 429 or 5xx.
const networkBackoff = 10 * time.Second

// Ensure RateLimitedLLM implements the interface.
var _ driven.LLMService = (*RateLimitedLLM)(nil)

// RateLimitedLLM throttles Generate and Chat calls on a wrapped LLMService.
// Ping bypasses the limiter.
type RateLimitedLLM struct {
	next    driven.LLMService
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
}

// NewRateLimitedLLM allows perMinute calls per minute with a burst of one.
func NewRateLimitedLLM(next driven.LLMService, perMinute int) *RateLimitedLLM {
	return &RateLimitedLLM{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		backoff: networkBackoff,
	}
}

// Generate waits for a token, then delegates.
func (r *RateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	out, err := r.next.Generate(ctx, prompt, opts)
	r.record(err)
	return out, err
}

// Chat waits for a token, then delegates.
func (r *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	out, err := r.next.Chat(ctx, messages, opts)
	r.record(err)
	return out, err
}

// ModelName returns the wrapped model name.
func (r *RateLimitedLLM) ModelName() string {
	return r.next.ModelName()
}

// Ping delegates without consuming a token.
func (r *RateLimitedLLM) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// Close closes the wrapped service.
func (r *RateLimitedLLM) Close() error {
	return r.next.Close()
}

// wait honours any backoff window, then the token bucket.
func (r *RateLimitedLLM) wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		logger.Debug("llm backoff: waiting %s", d.Round(time.Millisecond))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return r.limiter.Wait(ctx)
}

func (r *RateLimitedLLM) record(err error) {
	if err == nil || !errors.Is(err, domain.ErrNetwork) {
		return
	}
	r.mu.Lock()
	r.retryAt = time.Now().Add(r.backoff)
	r.mu.Unlock()
}
