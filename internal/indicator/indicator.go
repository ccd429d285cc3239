// internal/indicator/indicator.go
package indicator

import (
	"context"
	"fmt"
	"time"

	"github.com/tamzrod/d6t-agent/internal/alert"
)

// Indicator is a single on/off visual output.
type Indicator interface {
	Init() error
	Set(on bool) error
	Cleanup() error
}

// Flash plays a pattern to completion and leaves the output off.
// Only context cancellation cuts it short.
func Flash(ctx context.Context, ind Indicator, p alert.Pattern) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for i := 0; i < p.Count; i++ {
		keep(ind.Set(true))
		if !sleep(ctx, p.On) {
			break
		}
		keep(ind.Set(false))
		if !sleep(ctx, p.Off) {
			break
		}
	}

	// always end dark, also after cancellation
	keep(ind.Set(false))

	if firstErr != nil {
		return fmt.Errorf("indicator: flash: %w", firstErr)
	}
	return ctx.Err()
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Nop is the indicator used when none is configured or Init failed.
type Nop struct{}

func (Nop) Init() error    { return nil }
func (Nop) Set(bool) error { return nil }
func (Nop) Cleanup() error { return nil }
