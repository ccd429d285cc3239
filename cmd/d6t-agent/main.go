// cmd/d6t-agent/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/config"
	"github.com/tamzrod/d6t-agent/internal/indicator"
	"github.com/tamzrod/d6t-agent/internal/logging"
	"github.com/tamzrod/d6t-agent/internal/metrics"
	"github.com/tamzrod/d6t-agent/internal/poller"
	"github.com/tamzrod/d6t-agent/internal/reporter"
	"github.com/tamzrod/d6t-agent/internal/reporter/mqtt"
	"github.com/tamzrod/d6t-agent/internal/sensor"
	"github.com/tamzrod/d6t-agent/internal/status"
	smodbus "github.com/tamzrod/d6t-agent/internal/status/modbus"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code. Deferred cleanup runs before exit.
func run(args []string) int {
	sensorID := config.DefaultSensorID
	cfgPath := config.DefaultConfigPath
	if len(args) > 0 && args[0] != "" {
		sensorID = args[0]
	}
	if len(args) > 1 && args[1] != "" {
		cfgPath = args[1]
	}

	// --------------------
	// Load config
	// --------------------

	envErr := config.LoadDotenv(config.DotenvPath)
	cfg, loadErr := config.Load(cfgPath)

	log, lvlErr := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if lvlErr != nil {
		log.WithError(lvlErr).Warn("invalid log level, using info")
	}
	if envErr != nil {
		log.WithError(envErr).Warn("env file ignored")
	}

	var le *config.LoadError
	if errors.As(loadErr, &le) {
		log.WithError(le).Warn("config unavailable, using defaults")
	}

	alog := log.WithField("sensor", sensorID)

	a, err := prepare(cfg, sensorID, log)
	if err != nil {
		alog.WithError(err).Error("startup failed")
		return 1
	}
	defer a.Close()

	alog.WithFields(logrus.Fields{
		"config":   cfgPath,
		"bus":      cfg.Bus.Type,
		"interval": a.runtime.ReadingInterval,
		"high":     a.runtime.HighThreshold,
		"low":      a.runtime.LowThreshold,
	}).Info("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.status != nil {
		go status.Run(ctx, a.tracker, a.status, time.Second, alog)
	}
	if a.metrics != nil {
		go func() {
			if err := a.metrics.Serve(ctx, cfg.Metrics.Listen, status.Handler(a.tracker), alog); err != nil {
				alog.WithError(err).Warn("metrics server stopped")
			}
		}()
	}

	if err := a.poller.Run(ctx); err != nil {
		alog.WithError(err).Error("poller failed")
		return 1
	}

	alog.Info("shutdown complete")
	return 0
}

// agent holds what prepare acquired. Close releases it in reverse order.
type agent struct {
	runtime   config.Runtime
	poller    *poller.Poller
	tracker   *status.Tracker
	indicator indicator.Indicator
	telemetry reporter.Telemetry
	status    *status.Writer   // nil when the status block is off
	metrics   *metrics.Metrics // nil when metrics are off

	closers []func()
}

func (a *agent) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// prepare validates cfg and acquires every collaborator of the poller.
// Only a bad or unreachable bus is an error. Problems with the
// indicator, MQTT or status block disable that feature with a warning;
// a bad collector url is kept, so each delivery reports a transport error.
func prepare(cfg *config.Config, sensorID string, log *logrus.Logger) (*agent, error) {
	alog := log.WithField("sensor", sensorID)

	// --------------------
	// Validate (bus is fatal, the rest degrades)
	// --------------------

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	for _, w := range config.Normalize(cfg) {
		alog.Warn(w)
	}
	found := config.Check(cfg)
	for _, err := range found.Warnings() {
		alog.WithError(err).Warn("config problem, continuing degraded")
	}

	a := &agent{runtime: cfg.Runtime()}
	busTimeout := time.Duration(cfg.Bus.TimeoutMs) * time.Millisecond
	collectorTimeout := time.Duration(cfg.Collector.TimeoutMs) * time.Millisecond

	// --------------------
	// Sensor bus (fatal on failure)
	// --------------------

	reader, err := sensor.Build(cfg.Bus)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := reader.Close(); err != nil {
			alog.WithError(err).Warn("sensor close failed")
		}
	})

	// --------------------
	// Indicator (degrades to no-op)
	// --------------------

	a.indicator = indicator.Nop{}
	if found.Indicator == nil {
		ind, err := indicator.Acquire(cfg.Indicator, busTimeout)
		if err != nil {
			alog.WithError(err).Warn("indicator unavailable, continuing without it")
		}
		a.indicator = ind
	}
	a.closers = append(a.closers, func() {
		if err := a.indicator.Cleanup(); err != nil {
			alog.WithError(err).Warn("indicator cleanup failed")
		}
	})

	// --------------------
	// Reporters
	// --------------------

	httpc, err := reporter.NewHTTPClient(reporter.Config{
		BaseURL: cfg.Collector.BaseURL,
		Timeout: collectorTimeout,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.telemetry = httpc
	if cfg.MQTT.Broker != "" && found.MQTT == nil {
		pub, err := mqtt.Connect(mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
			Timeout:  collectorTimeout,
		})
		if err != nil {
			alog.WithError(err).Warn("mqtt mirror disabled")
		} else {
			a.closers = append(a.closers, func() { _ = pub.Close() })
			a.telemetry = &reporter.Mirror{Primary: httpc, Pub: pub, Log: alog}
			alog.WithField("broker", cfg.MQTT.Broker).Info("mqtt mirror enabled")
		}
	}

	// --------------------
	// Status + metrics (optional)
	// --------------------

	// a cycle may legitimately take two collector timeouts plus a flash
	a.tracker = status.NewTracker(3*a.runtime.ReadingInterval + 2*collectorTimeout + alert.FastFlash.Duration())

	if cfg.Status.Endpoint != "" && found.Status == nil {
		cli, err := smodbus.New(smodbus.Config{
			Endpoint: cfg.Status.Endpoint,
			UnitID:   cfg.Status.UnitID,
			Timeout:  busTimeout,
		})
		if err != nil {
			alog.WithError(err).Warn("status block disabled")
		} else {
			a.closers = append(a.closers, func() { _ = cli.Close() })
			a.status = status.NewWriter(cli, cfg.Status.BaseSlot, sensorID)
		}
	}

	if cfg.Metrics.Listen != "" {
		a.metrics = metrics.New()
	}

	// --------------------
	// Sampling loop
	// --------------------

	a.poller, err = poller.New(
		poller.Config{SensorID: sensorID, Runtime: a.runtime},
		poller.Deps{
			Reader:    reader,
			Telemetry: a.telemetry,
			Alerts:    httpc,
			Indicator: a.indicator,
			Log:       log,
			Metrics:   a.metrics,
			Status:    a.tracker,
		},
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}
