// internal/collector/store.go
package collector

import (
	"sync"
	"time"

	"github.com/tamzrod/d6t-agent/internal/alert"
)

// Retention limits of the in-memory store.
const (
	MaxReadings = 100
	MaxAlerts   = 20

	// per-sensor listing limit
	MaxSensorReadings = 50
)

const (
	dateLayout = "2006/01/02"
	timeLayout = "15:04:05.000"
)

// Reading is one stored telemetry sample.
type Reading struct {
	SensorID           string    `json:"sensorId"`
	AcquisitionDate    string    `json:"acquisitionDate"`
	AcquisitionTime    string    `json:"acquisitionTime"`
	Temperatures       []float64 `json:"temperatures"`
	AverageTemperature float64   `json:"averageTemperature"`
	IsAbnormal         bool      `json:"isAbnormal"`
	Timestamp          time.Time `json:"timestamp"`
}

// Record is one stored alert.
type Record struct {
	EventID     string    `json:"eventId"`
	SensorID    string    `json:"sensorId"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Event       string    `json:"event"`
	EventType   string    `json:"eventType"`
	IsRecovery  bool      `json:"isRecovery"`
	Temperature *float64  `json:"temperature,omitempty"`
	Timestamp   time.Time `json:"-"`
}

// Store keeps the most recent readings and alerts in memory.
// Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	th  alert.Thresholds
	now func() time.Time

	readings []Reading            // oldest first
	bySensor map[string][]Reading // oldest first, per sensor
	alerts   []Record             // oldest first
}

func NewStore(th alert.Thresholds) *Store {
	return &Store{th: th, now: time.Now, bySensor: make(map[string][]Reading)}
}

// Thresholds returns the thresholds readings are judged against.
func (s *Store) Thresholds() alert.Thresholds { return s.th }

// AddReading stores a sample and judges it against the thresholds.
func (s *Store) AddReading(sensorID string, temps []float64) Reading {
	var sum float64
	for _, v := range temps {
		sum += v
	}
	avg := sum / float64(len(temps))
	at := s.now()

	r := Reading{
		SensorID:           sensorID,
		AcquisitionDate:    at.Format(dateLayout),
		AcquisitionTime:    at.Format(timeLayout),
		Temperatures:       append([]float64(nil), temps...),
		AverageTemperature: avg,
		IsAbnormal:         avg > s.th.High || avg < s.th.Low,
		Timestamp:          at,
	}

	s.mu.Lock()
	s.readings = appendBounded(s.readings, r, MaxReadings)
	s.bySensor[sensorID] = appendBounded(s.bySensor[sensorID], r, MaxSensorReadings)
	s.mu.Unlock()

	return r
}

// AddAlert stores an alert. A repeated event id is stored once; the
// second return value reports whether the record is new.
func (s *Store) AddAlert(rec Record) (Record, bool) {
	at := s.now()
	rec.Timestamp = at
	rec.Date = at.Format(dateLayout)
	rec.Time = at.Format(timeLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.EventID != "" {
		for _, a := range s.alerts {
			if a.EventID == rec.EventID {
				return a, false
			}
		}
	}

	s.alerts = appendBounded(s.alerts, rec, MaxAlerts)
	return rec, true
}

// Readings returns stored readings, newest first. An empty sensorID
// lists the shared history of every sensor; a sensor id lists that
// sensor's own history, which other sensors cannot crowd out.
// limit <= 0 means no limit.
func (s *Store) Readings(sensorID string, limit int) []Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.readings
	if sensorID != "" {
		src = s.bySensor[sensorID]
	}

	n := len(src)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Reading, 0, n)
	for i := len(src) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, src[i])
	}
	return out
}

// Alerts returns stored alerts, newest first.
func (s *Store) Alerts() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.alerts))
	for i := len(s.alerts) - 1; i >= 0; i-- {
		out = append(out, s.alerts[i])
	}
	return out
}

func appendBounded[T any](xs []T, x T, limit int) []T {
	xs = append(xs, x)
	if len(xs) > limit {
		xs = append(xs[:0], xs[len(xs)-limit:]...)
	}
	return xs
}
