// internal/reporter/encode.go
package reporter

import (
	"encoding/json"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/sensor"
)

// Event types understood by the collector.
const (
	EventAbnormal         = "ABNORMAL_DATA"
	EventAbnormalRecovery = "ABNORMAL_DATA_RECOVERY"
)

// TimestampLayout is YYYY/MM/DD HH:MM:SS, rendered in local time.
const TimestampLayout = "2006/01/02 15:04:05"

// SensorData is the telemetry body.
type SensorData struct {
	SensorID     string    `json:"sensorId"`
	Temperatures []float64 `json:"temperatures"`
}

// CustomAlert is the alert body.
type CustomAlert struct {
	SensorID  string       `json:"sensorId"`
	EventType string       `json:"eventType"`
	Details   AlertDetails `json:"details"`
}

type AlertDetails struct {
	Value     float64        `json:"value"`
	Threshold ThresholdRange `json:"threshold"`
	Timestamp string         `json:"timestamp"`
	Recovery  bool           `json:"recovery,omitempty"` // present only when true
}

type ThresholdRange struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// EncodeSample renders the telemetry body.
// No IO. No side effects.
func EncodeSample(sensorID string, s sensor.Sample) ([]byte, error) {
	return json.Marshal(SensorData{
		SensorID:     sensorID,
		Temperatures: s.Slice(),
	})
}

// EncodeAlert renders the alert body.
// No IO. No side effects.
func EncodeAlert(ev alert.Event) ([]byte, error) {
	typ := EventAbnormal
	if ev.Recovery {
		typ = EventAbnormalRecovery
	}

	return json.Marshal(CustomAlert{
		SensorID:  ev.SensorID,
		EventType: typ,
		Details: AlertDetails{
			Value: ev.Average,
			Threshold: ThresholdRange{
				High: ev.Thresholds.High,
				Low:  ev.Thresholds.Low,
			},
			Timestamp: ev.At.Local().Format(TimestampLayout),
			Recovery:  ev.Recovery,
		},
	})
}
