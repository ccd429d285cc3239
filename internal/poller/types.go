// internal/poller/types.go
package poller

import (
	"context"
	"time"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/sensor"
)

// CycleResult is a snapshot of what one cycle did.
type CycleResult struct {
	At      time.Time
	Elapsed time.Duration // busy time, excluding the inter-cycle sleep

	Sample  sensor.Sample
	Average float64
	Events  []alert.Event
	Flashed bool

	Err error // non-nil means the read failed and the cycle was skipped
}

// SleepFunc blocks for d or until ctx is done, returning ctx.Err() then.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the production SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
