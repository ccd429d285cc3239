// internal/poller/runner.go
package poller

import (
	"context"
	"time"

	"github.com/tamzrod/d6t-agent/internal/config"
)

// NextDelay is the sleep after a cycle that took elapsed.
// It keeps the configured cadence when possible but never goes below
// the minimum sensor delay, even when the cycle overran.
func NextDelay(interval, elapsed time.Duration) time.Duration {
	d := interval - elapsed
	if d < config.MinSensorDelay {
		return config.MinSensorDelay
	}
	return d
}

// Run drives cycles until ctx is cancelled.
// Cancellation is observed between cycles and during the sleep;
// a cycle that has started runs to completion.
func (p *Poller) Run(ctx context.Context) error {
	log := p.d.Log.WithField("sensor", p.cfg.SensorID)
	log.WithField("interval", p.cfg.Runtime.ReadingInterval).Info("poller started")

	for {
		if ctx.Err() != nil {
			break
		}

		res := p.RunCycle(ctx)

		if err := p.sleep(ctx, NextDelay(p.cfg.Runtime.ReadingInterval, res.Elapsed)); err != nil {
			break
		}
	}

	log.Info("poller stopped")
	return nil
}
