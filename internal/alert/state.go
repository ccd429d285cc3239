// internal/alert/state.go
package alert

import (
	"time"

	"github.com/google/uuid"
)

// Condition is the threshold condition an event refers to.
type Condition uint8

const (
	None Condition = iota
	High
	Low
)

func (c Condition) String() string {
	switch c {
	case High:
		return "HIGH"
	case Low:
		return "LOW"
	default:
		return "NONE"
	}
}

// State is the per-sensor alert memory.
// It contains no logic and is never persisted: a restart starts from
// the zero value.
type State struct {
	HighActive bool
	LowActive  bool
}

// Active reports the active condition, if any.
func (s State) Active() Condition {
	switch {
	case s.HighActive:
		return High
	case s.LowActive:
		return Low
	default:
		return None
	}
}

// Thresholds are the evaluation bounds in degrees Celsius.
type Thresholds struct {
	High float64
	Low  float64
}

// Event is one edge of an alert condition: rising (alert) or
// falling (recovery). Events are emitted, never stored.
type Event struct {
	ID         uuid.UUID
	SensorID   string
	Condition  Condition
	Average    float64
	Thresholds Thresholds
	Recovery   bool
	At         time.Time
}

// Stamp fills the identity fields Evaluate leaves empty.
func (e Event) Stamp(sensorID string, at time.Time) Event {
	e.ID = uuid.New()
	e.SensorID = sensorID
	e.At = at
	return e
}

// Pattern is an indicator flash sequence.
type Pattern struct {
	Count int
	On    time.Duration
	Off   time.Duration
}

// Indicator patterns. Protocol-locked.
var (
	// FastFlash signals a HIGH alert.
	FastFlash = Pattern{Count: 5, On: 200 * time.Millisecond, Off: 200 * time.Millisecond}

	// SlowFlash signals a LOW alert.
	SlowFlash = Pattern{Count: 3, On: 300 * time.Millisecond, Off: 300 * time.Millisecond}
)

// Duration is the total time the pattern takes to play.
func (p Pattern) Duration() time.Duration {
	return time.Duration(p.Count) * (p.On + p.Off)
}
