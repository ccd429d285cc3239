// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Validate checks the bus section, the only one the agent cannot run
// without. A failure means the sensor cannot be acquired and is fatal.
// Problems in optional sections are reported by Check instead.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	switch cfg.Bus.Type {
	case BusI2C:
		if cfg.Bus.Device == "" {
			return fmt.Errorf("bus: i2c requires device")
		}
		if cfg.Bus.Address == 0 || cfg.Bus.Address > 0x7F {
			return fmt.Errorf("bus: i2c address 0x%02x out of range", cfg.Bus.Address)
		}

	case BusModbus:
		if cfg.Bus.Endpoint == "" && cfg.Bus.Device == "" {
			return fmt.Errorf("bus: modbus requires endpoint (tcp) or device (rtu)")
		}
		if cfg.Bus.Endpoint == "" && cfg.Bus.BaudRate <= 0 {
			return fmt.Errorf("bus: modbus rtu requires baudRate > 0")
		}

	case BusSim:
		// nothing to check

	default:
		return fmt.Errorf("bus: unknown type %q", cfg.Bus.Type)
	}

	return nil
}

// Findings lists problems in the optional sections. Each non-nil field
// names a feature that runs degraded; none of them stops the agent.
type Findings struct {
	Indicator error // indicator runs as none
	Collector error // every delivery fails with a transport error
	MQTT      error // mirror disabled
	Status    error // status block disabled
}

// Warnings returns the non-nil findings in section order.
func (f Findings) Warnings() []error {
	var out []error
	for _, err := range []error{f.Indicator, f.Collector, f.MQTT, f.Status} {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// Check validates everything Validate does not.
// It MUST NOT mutate configuration.
func Check(cfg *Config) Findings {
	var f Findings

	// ------------------------------------------------------------
	// INDICATOR
	// ------------------------------------------------------------

	switch cfg.Indicator.Type {
	case "", IndicatorNone:
	case IndicatorGPIO:
		if cfg.Indicator.Pin < 0 {
			f.Indicator = fmt.Errorf("indicator: gpio pin %d out of range", cfg.Indicator.Pin)
		}
	case IndicatorModbus:
		if cfg.Indicator.Endpoint == "" {
			f.Indicator = fmt.Errorf("indicator: modbus requires endpoint")
		}
	default:
		f.Indicator = fmt.Errorf("indicator: unknown type %q", cfg.Indicator.Type)
	}

	// ------------------------------------------------------------
	// COLLECTOR / MQTT
	// ------------------------------------------------------------

	u := cfg.Collector.BaseURL
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		f.Collector = fmt.Errorf("collector: baseUrl %q must be http(s)", u)
	}

	if cfg.MQTT.Broker != "" && !strings.Contains(cfg.MQTT.Broker, "://") {
		f.MQTT = fmt.Errorf("mqtt: broker %q must include a scheme (tcp://, ssl://, ws://)", cfg.MQTT.Broker)
	}

	// ------------------------------------------------------------
	// STATUS
	// ------------------------------------------------------------

	// each block is 20 registers; the last one must fit the address space
	if cfg.Status.Endpoint != "" && (uint32(cfg.Status.BaseSlot)+1)*20 > 65536 {
		f.Status = fmt.Errorf("status: baseSlot %d out of range", cfg.Status.BaseSlot)
	}

	return f
}
