package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Pacer enforces a minimum delay between consecutive requests. All fetchers
// hitting the same provider should share one instance.
type Pacer struct {
	mu       sync.Mutex
	lastCall time.Time
	minDelay time.Duration
}

// NewPacer creates a pacer with the given minimum gap. Zero or negative
// delays make Wait a no-op.
func NewPacer(minDelay time.Duration) *Pacer {
	return &Pacer{minDelay: minDelay}
}

// Wait blocks until minDelay has elapsed since the previous request.
// Returns an error only if the context is cancelled while waiting.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.minDelay <= 0 {
		return nil
	}

	p.mu.Lock()
	now := time.Now()
	if p.lastCall.IsZero() || now.Sub(p.lastCall) >= p.minDelay {
		p.lastCall = now
		p.mu.Unlock()
		return nil
	}
	remaining := p.minDelay - now.Sub(p.lastCall)
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("pacer wait: %w", ctx.Err())
	case <-time.After(remaining):
	}

	p.mu.Lock()
	p.lastCall = time.Now()
	p.mu.Unlock()
	return nil
}
