// internal/reporter/types.go
package reporter

import (
	"context"
	"fmt"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/sensor"
)

// Telemetry delivers every sample. Delivery only: no retry, no state.
type Telemetry interface {
	SendSample(ctx context.Context, sensorID string, s sensor.Sample) error
}

// Alerts delivers alert and recovery events.
type Alerts interface {
	SendAlert(ctx context.Context, ev alert.Event) error
}

// TransportError is an HTTP failure or a non-2xx response.
// StatusCode is 0 when no response was received.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("reporter %s: http %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("reporter %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
