// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/config"
	"github.com/tamzrod/d6t-agent/internal/indicator"
	"github.com/tamzrod/d6t-agent/internal/metrics"
	"github.com/tamzrod/d6t-agent/internal/reporter"
	"github.com/tamzrod/d6t-agent/internal/sensor"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	SensorID string
	Runtime  config.Runtime
}

// Deps are the collaborators. They are opened and closed by the caller.
type Deps struct {
	Reader    sensor.Reader
	Telemetry reporter.Telemetry
	Alerts    reporter.Alerts
	Indicator indicator.Indicator // nil => indicator.Nop
	Log       logrus.FieldLogger
	Metrics   *metrics.Metrics // optional
	Status    StatusRecorder   // optional
}

// StatusRecorder receives every cycle outcome; *status.Tracker implements it.
type StatusRecorder interface {
	Observe(at time.Time, err error, avg float64, st alert.State)
}

// Poller is the sampling-and-alerting loop for one sensor.
// It is sequential: one cycle at a time, and the alert state is only
// ever touched from inside RunCycle.
type Poller struct {
	cfg Config
	d   Deps

	state alert.State

	now      func() time.Time
	sleep    SleepFunc
	evaluate func(avg float64, st alert.State, th alert.Thresholds) alert.Decision
}

// New creates a poller with immutable config.
func New(cfg Config, d Deps) (*Poller, error) {
	if cfg.SensorID == "" {
		return nil, errors.New("poller: sensor id required")
	}
	if cfg.Runtime.ReadingInterval <= 0 {
		return nil, errors.New("poller: reading interval must be > 0")
	}
	if d.Reader == nil || d.Telemetry == nil || d.Alerts == nil {
		return nil, errors.New("poller: reader, telemetry and alerts are required")
	}
	if d.Indicator == nil {
		d.Indicator = indicator.Nop{}
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}

	return &Poller{
		cfg:      cfg,
		d:        d,
		now:      time.Now,
		sleep:    Sleep,
		evaluate: alert.Evaluate,
	}, nil
}

// State returns the current alert state.
func (p *Poller) State() alert.State { return p.state }

func (p *Poller) thresholds() alert.Thresholds {
	return alert.Thresholds{
		High: p.cfg.Runtime.HighThreshold,
		Low:  p.cfg.Runtime.LowThreshold,
	}
}

func (p *Poller) observe(at time.Time, err error, avg float64) {
	if p.d.Status != nil {
		p.d.Status.Observe(at, err, avg, p.state)
	}
}

// RunCycle performs exactly one cycle: read, evaluate, report, indicate.
// A read failure skips everything after the read.
// Reporter and indicator failures are logged and never stop the cycle.
// Once started, the read and both deliveries complete even if ctx is
// cancelled; only the indicator pattern is cut short.
func (p *Poller) RunCycle(ctx context.Context) (res CycleResult) {
	start := p.now()
	res = CycleResult{At: start}
	log := p.d.Log.WithField("sensor", p.cfg.SensorID)
	opCtx := context.WithoutCancel(ctx)

	defer func() {
		res.Elapsed = p.now().Sub(start)
		p.d.Metrics.Cycle(res.Elapsed)
	}()

	sample, err := p.d.Reader.Read(opCtx)
	if err != nil {
		res.Err = err
		p.d.Metrics.ReadFailure()
		p.observe(start, err, 0)
		log.WithError(err).Warn("sensor read failed, skipping cycle")
		return res
	}

	res.Sample = sample
	res.Average = sample.Average()
	p.d.Metrics.Average(res.Average)

	dec := p.evaluate(res.Average, p.state, p.thresholds())
	p.state = dec.State
	p.observe(start, nil, res.Average)

	log.WithField("avg", res.Average).Debug("sample")

	// ---- telemetry (every sample) ----
	if err := p.d.Telemetry.SendSample(opCtx, p.cfg.SensorID, sample); err != nil {
		p.d.Metrics.ReportFailure(reporter.PathSensorData)
		log.WithError(err).Warn("telemetry delivery failed")
	}

	// ---- alerts (transitions only) ----
	for _, ev := range dec.Events {
		ev = ev.Stamp(p.cfg.SensorID, start)
		res.Events = append(res.Events, ev)
		p.d.Metrics.Alert(ev.Condition.String(), ev.Recovery)

		elog := log.WithFields(logrus.Fields{
			"event":     ev.ID.String(),
			"condition": ev.Condition.String(),
			"recovery":  ev.Recovery,
			"avg":       ev.Average,
		})
		if ev.Recovery {
			elog.Info("alert recovered")
		} else {
			elog.Warn("alert raised")
		}

		if err := p.d.Alerts.SendAlert(opCtx, ev); err != nil {
			p.d.Metrics.ReportFailure(reporter.PathCustomAlert)
			elog.WithError(err).Warn("alert delivery failed")
		}
	}

	// ---- indicator (blocking) ----
	if dec.Pattern != nil {
		res.Flashed = true
		if err := indicator.Flash(ctx, p.d.Indicator, *dec.Pattern); err != nil {
			log.WithError(err).Warn("indicator flash incomplete")
		}
	}

	return res
}
