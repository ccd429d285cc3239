// internal/sensor/types.go
package sensor

import (
	"context"
	"fmt"
	"time"
)

// Zones is the number of thermopile zones in one sample (4x4 array).
const Zones = 16

// Sample is one atomic read of all zones, in degrees Celsius.
type Sample struct {
	Zones [Zones]float64
	At    time.Time
}

// Average returns the arithmetic mean of all zones.
func (s Sample) Average() float64 {
	var sum float64
	for _, z := range s.Zones {
		sum += z
	}
	return sum / Zones
}

// Slice returns the zones as a fresh slice (for encoders).
func (s Sample) Slice() []float64 {
	out := make([]float64, Zones)
	copy(out, s.Zones[:])
	return out
}

// Reader produces one Sample per call.
// Implementations own their bus handle; Close releases it.
type Reader interface {
	Read(ctx context.Context) (Sample, error)
	Close() error
}

// ReadError is a per-cycle read failure. The loop skips the cycle.
type ReadError struct {
	Source string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("sensor read (%s): %v", e.Source, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// BusInitError means the bus handle could not be acquired at startup.
// It is the only fatal error class.
type BusInitError struct {
	Bus string
	Err error
}

func (e *BusInitError) Error() string {
	return fmt.Sprintf("bus init (%s): %v", e.Bus, e.Err)
}

func (e *BusInitError) Unwrap() error { return e.Err }
