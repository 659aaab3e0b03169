package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer throttles calls to the generative-text service. Two constraints apply
// together: a fixed minimum delay between consecutive calls, and a token
// budget replenished over a rolling one-minute window (not a calendar
// minute). Callers block until both clear.
//
// Pacer is an explicit injected component: tests construct their own instance
// so concurrent runs never share throttle state.
type Pacer struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastSlot    time.Time     // most recently reserved call slot
	budget      *rate.Limiter // nil when no token budget is configured

	// sleepFunc is injectable for tests.
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer with the given minimum inter-call delay and
// per-minute token budget. A tokensPerMinute of zero disables the budget.
func NewPacer(minInterval time.Duration, tokensPerMinute int) *Pacer {
	p := &Pacer{
		minInterval: minInterval,
		sleepFunc:   sleepCtx,
	}
	if tokensPerMinute > 0 {
		// Tokens refill continuously at budget/60 per second; the burst is
		// the full minute's allowance, which gives rolling-window semantics.
		p.budget = rate.NewLimiter(rate.Limit(float64(tokensPerMinute)/60.0), tokensPerMinute)
	}
	return p
}

// Wait blocks until the minimum delay since the previous call has elapsed and
// the rolling budget can cover the estimated token cost of the next call.
//
// The caller's slot is reserved under the lock before sleeping, so concurrent
// callers serialize: each sees the previous reservation, never a stale last
// call, and N simultaneous waiters spread out N slots apart. A wait abandoned
// to context cancellation forfeits its slot.
func (p *Pacer) Wait(ctx context.Context, tokens int) error {
	p.mu.Lock()
	now := time.Now()
	slot := now
	if !p.lastSlot.IsZero() {
		if earliest := p.lastSlot.Add(p.minInterval); earliest.After(slot) {
			slot = earliest
		}
	}
	p.lastSlot = slot
	p.mu.Unlock()

	if pause := slot.Sub(now); pause > 0 {
		if err := p.sleepFunc(ctx, pause); err != nil {
			return err
		}
	}

	if p.budget != nil && tokens > 0 {
		if tokens > p.budget.Burst() {
			tokens = p.budget.Burst()
		}
		if err := p.budget.WaitN(ctx, tokens); err != nil {
			return err
		}
	}

	return nil
}

// EstimateTokens gives a rough token count for a prompt. Four characters per
// token is the usual planning heuristic for English text.
func EstimateTokens(prompt string) int {
	n := len(prompt) / 4
	if n < 1 {
		n = 1
	}
	return n
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
