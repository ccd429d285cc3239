// internal/collector/describe.go
package collector

import (
	"fmt"
	"strings"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/reporter"
)

const recoverySuffix = "_RECOVERY"

// alertDetails is the loose union of detail fields senders use.
type alertDetails struct {
	Value     *float64                 `json:"value"`
	Threshold *reporter.ThresholdRange `json:"threshold"`
	Offset    *float64                 `json:"offset"`
	Message   string                   `json:"message"`
	Timestamp string                   `json:"timestamp"`
}

// describe renders the human event line for a stored alert.
func describe(eventType string, d alertDetails, th alert.Thresholds) string {
	recovery := strings.HasSuffix(eventType, recoverySuffix)
	base := strings.TrimSuffix(eventType, recoverySuffix)

	switch base {
	case "THRESHOLD":
		if recovery {
			return "Threshold alert recovered"
		}
		if d.Threshold == nil {
			return "Threshold changed"
		}
		return fmt.Sprintf("Threshold changed: high=%g°C, low=%g°C", d.Threshold.High, d.Threshold.Low)

	case "OFFSET":
		if recovery {
			return "Offset alert recovered"
		}
		if d.Offset == nil {
			return "Temperature offset changed"
		}
		return fmt.Sprintf("Temperature offset: %+g°C", *d.Offset)

	case "SENSOR_ERROR":
		msg := d.Message
		if msg == "" {
			msg = "unknown error"
		}
		if recovery {
			return "Sensor error recovered: " + msg
		}
		return "Sensor error: " + msg

	case reporter.EventAbnormal:
		if d.Value == nil {
			break
		}
		v := *d.Value
		switch {
		case recovery:
			return fmt.Sprintf("Temperature recovered: %.1f°C (normal range %g°C-%g°C)", v, th.Low, th.High)
		case v > th.High:
			return fmt.Sprintf("Temperature abnormal: %.1f°C (above %g°C)", v, th.High)
		case v < th.Low:
			return fmt.Sprintf("Temperature abnormal: %.1f°C (below %g°C)", v, th.Low)
		default:
			return fmt.Sprintf("Temperature abnormal: %.1f°C", v)
		}
	}

	if d.Message != "" {
		return d.Message
	}
	if recovery {
		return "Alert recovered"
	}
	return "Alert raised"
}
