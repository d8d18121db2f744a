package fetch

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Delay pauses between network calls. The window comes from the caller, so
// one strategy serves both per-request and per-category pacing.
type Delay interface {
	Wait(ctx context.Context, min, max time.Duration) error
}

// RandomDelay sleeps for a uniformly random duration inside the window.
type RandomDelay struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomDelay(rng *rand.Rand) *RandomDelay {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomDelay{rng: rng}
}

func (d *RandomDelay) Wait(ctx context.Context, min, max time.Duration) error {
	d.mu.Lock()
	wait := min
	if max > min {
		wait += time.Duration(d.rng.Int63n(int64(max - min)))
	}
	d.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay skips waiting entirely. Meant for tests.
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context, min, max time.Duration) error { return nil }
