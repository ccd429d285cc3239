// internal/config/normalize.go
package config

import (
	"fmt"
	"math"
)

// Normalize applies post-load normalization and returns one warning per
// adjustment it made.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) []string {
	if cfg == nil {
		return nil
	}

	var warnings []string

	// ------------------------------------------------------------
	// READING INTERVAL: never faster than the bus allows
	// ------------------------------------------------------------

	minMs := int(MinSensorDelay.Milliseconds())
	if cfg.Sensors.ReadingInterval < minMs {
		warnings = append(warnings, fmt.Sprintf(
			"readingInterval %dms is below the minimum sensor delay, using %dms",
			cfg.Sensors.ReadingInterval,
			minMs,
		))
		cfg.Sensors.ReadingInterval = minMs
	}

	// ------------------------------------------------------------
	// THRESHOLDS: low must be strictly below high
	// ------------------------------------------------------------

	th := &cfg.Sensors.TemperatureThresholds
	if !finite(th.High) || !finite(th.Low) || th.Low >= th.High {
		warnings = append(warnings, fmt.Sprintf(
			"invalid thresholds low=%v high=%v, using defaults low=%v high=%v",
			th.Low,
			th.High,
			DefaultLowThreshold,
			DefaultHighThreshold,
		))
		th.High = DefaultHighThreshold
		th.Low = DefaultLowThreshold
	}

	// ------------------------------------------------------------
	// COLLECTOR / MQTT defaults for explicitly emptied fields
	// ------------------------------------------------------------

	if cfg.Collector.BaseURL == "" {
		warnings = append(warnings, fmt.Sprintf(
			"collector.baseUrl is empty, using %s",
			DefaultCollectorURL,
		))
		cfg.Collector.BaseURL = DefaultCollectorURL
	}
	if cfg.Collector.TimeoutMs <= 0 {
		cfg.Collector.TimeoutMs = DefaultCollectorTimeout
	}
	if cfg.Bus.TimeoutMs <= 0 {
		cfg.Bus.TimeoutMs = DefaultBusTimeoutMs
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = DefaultMQTTTopic
	}

	return warnings
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
