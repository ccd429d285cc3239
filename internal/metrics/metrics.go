// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics is safe to use as a nil pointer: every method is a no-op then.
type Metrics struct {
	reg *prometheus.Registry

	cycles         prometheus.Counter
	readFailures   prometheus.Counter
	alerts         *prometheus.CounterVec
	reportFailures *prometheus.CounterVec
	average        prometheus.Gauge
	cycleDuration  prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "d6t_cycles_total",
			Help: "Sampling cycles started.",
		}),
		readFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "d6t_read_failures_total",
			Help: "Cycles skipped because the sensor read failed.",
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "d6t_alerts_total",
			Help: "Alert events emitted by condition and kind (alert|recovery).",
		}, []string{"condition", "kind"}),
		reportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "d6t_report_failures_total",
			Help: "Failed collector deliveries by endpoint.",
		}, []string{"endpoint"}),
		average: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "d6t_average_celsius",
			Help: "Average zone temperature of the last successful sample.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "d6t_cycle_duration_seconds",
			Help:    "Busy time of a cycle, excluding the inter-cycle sleep.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.reg.MustRegister(
		m.cycles,
		m.readFailures,
		m.alerts,
		m.reportFailures,
		m.average,
		m.cycleDuration,
	)

	return m
}

func (m *Metrics) Cycle(busy time.Duration) {
	if m == nil {
		return
	}
	m.cycles.Inc()
	m.cycleDuration.Observe(busy.Seconds())
}

func (m *Metrics) ReadFailure() {
	if m == nil {
		return
	}
	m.readFailures.Inc()
}

func (m *Metrics) Average(v float64) {
	if m == nil {
		return
	}
	m.average.Set(v)
}

func (m *Metrics) Alert(condition string, recovery bool) {
	if m == nil {
		return
	}
	kind := "alert"
	if recovery {
		kind = "recovery"
	}
	m.alerts.WithLabelValues(condition, kind).Inc()
}

func (m *Metrics) ReportFailure(endpoint string) {
	if m == nil {
		return
	}
	m.reportFailures.WithLabelValues(endpoint).Inc()
}

// Handler exposes this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Serve runs /metrics and /health until ctx is cancelled.
// A nil health handler answers a plain "ok".
func (m *Metrics) Serve(ctx context.Context, addr string, health http.Handler, log logrus.FieldLogger) error {
	if health == nil {
		health = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	}

	r := mux.NewRouter()
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.Handle("/health", health).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
