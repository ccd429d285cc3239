// internal/indicator/builder.go
package indicator

import (
	"time"

	cfg "github.com/tamzrod/d6t-agent/internal/config"
	imodbus "github.com/tamzrod/d6t-agent/internal/indicator/modbus"
)

// Build constructs the configured indicator without touching hardware.
// The caller runs Init and falls back to Nop on failure.
func Build(ic cfg.IndicatorConfig, busTimeout time.Duration) Indicator {
	switch ic.Type {
	case cfg.IndicatorGPIO:
		return NewGPIO(ic.Pin)
	case cfg.IndicatorModbus:
		return imodbus.NewCoil(imodbus.Config{
			Endpoint: ic.Endpoint,
			UnitID:   ic.UnitID,
			Address:  ic.Coil,
			Timeout:  busTimeout,
		})
	default:
		return Nop{}
	}
}

// Acquire builds and initializes the indicator.
// Init failure is not fatal: it returns Nop together with the error.
func Acquire(ic cfg.IndicatorConfig, busTimeout time.Duration) (Indicator, error) {
	ind := Build(ic, busTimeout)
	if err := ind.Init(); err != nil {
		_ = ind.Cleanup()
		return Nop{}, err
	}
	return ind, nil
}
