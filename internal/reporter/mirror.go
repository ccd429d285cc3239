// internal/reporter/mirror.go
package reporter

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/d6t-agent/internal/sensor"
)

// publisher is the contract the MQTT mirror satisfies.
type publisher interface {
	Publish(ctx context.Context, sensorID string, payload []byte) error
}

// Mirror sends telemetry to the primary sink and copies the same body to
// a secondary publisher. Only the primary's result is returned; mirror
// failures are logged.
type Mirror struct {
	Primary Telemetry
	Pub     publisher
	Log     logrus.FieldLogger
}

func (m *Mirror) SendSample(ctx context.Context, sensorID string, s sensor.Sample) error {
	err := m.Primary.SendSample(ctx, sensorID, s)

	body, encErr := EncodeSample(sensorID, s)
	if encErr != nil {
		m.Log.WithError(encErr).Warn("mirror encode failed")
		return err
	}
	if pubErr := m.Pub.Publish(ctx, sensorID, body); pubErr != nil {
		m.Log.WithError(pubErr).WithField("sensor", sensorID).Warn("mqtt mirror publish failed")
	}

	return err
}
