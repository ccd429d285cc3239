// internal/status/snapshot.go
package status

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/sensor"
)

// Snapshot represents exactly what a status writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16 `json:"health"`
	LastErrorCode  uint16 `json:"lastErrorCode"`
	SecondsInError uint16 `json:"secondsInError"`
	AlertFlags     uint16 `json:"alertFlags"`
	AverageTenths  int16  `json:"averageTenths"`
}

// Tracker folds cycle outcomes into a Snapshot.
// Observe is called by the sampling loop; Snapshot may be called from
// any goroutine.
type Tracker struct {
	mu sync.Mutex

	staleAfter time.Duration

	lastSeen   time.Time
	errorSince time.Time
	snap       Snapshot
}

// NewTracker reports Stale once no cycle was observed for staleAfter.
// staleAfter <= 0 disables staleness.
func NewTracker(staleAfter time.Duration) *Tracker {
	return &Tracker{staleAfter: staleAfter}
}

// Observe records one cycle. err is the read error, if any; avg and st
// are only meaningful when err is nil.
func (t *Tracker) Observe(at time.Time, err error, avg float64, st alert.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastSeen = at

	if err != nil {
		if t.snap.Health != HealthError {
			t.errorSince = at
		}
		t.snap.Health = HealthError
		t.snap.LastErrorCode = ErrorCode(err)
		return
	}

	t.snap.Health = HealthOK
	t.snap.LastErrorCode = ErrorNone
	t.snap.SecondsInError = 0
	t.errorSince = time.Time{}
	t.snap.AverageTenths = tenths(avg)

	var flags uint16
	if st.HighActive {
		flags |= FlagHigh
	}
	if st.LowActive {
		flags |= FlagLow
	}
	t.snap.AlertFlags = flags
}

// Snapshot returns the state as of now.
func (t *Tracker) Snapshot(now time.Time) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.snap

	if s.Health == HealthError {
		s.SecondsInError = clampSeconds(now.Sub(t.errorSince))
	}

	if t.staleAfter > 0 && !t.lastSeen.IsZero() && now.Sub(t.lastSeen) > t.staleAfter {
		s.Health = HealthStale
	}

	return s
}

// ErrorCode maps a read error to its register code.
func ErrorCode(err error) uint16 {
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, sensor.ErrPEC):
		return ErrorPEC
	default:
		return ErrorRead
	}
}

// HARD INVARIANT: seconds_in_error MUST NOT wrap.
func clampSeconds(d time.Duration) uint16 {
	s := d / time.Second
	if s < 0 {
		return 0
	}
	if s > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(s)
}

func tenths(v float64) int16 {
	r := math.Round(v * 10)
	switch {
	case r > math.MaxInt16:
		return math.MaxInt16
	case r < math.MinInt16:
		return math.MinInt16
	}
	return int16(r)
}
