// internal/sensor/builder.go
package sensor

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/d6t-agent/internal/config"
	si2c "github.com/tamzrod/d6t-agent/internal/sensor/i2c"
	smodbus "github.com/tamzrod/d6t-agent/internal/sensor/modbus"
)

// Build acquires the bus handle and returns the matching Reader.
// Acquisition is a single attempt; failure is a *BusInitError and the
// caller is expected to exit before entering the loop.
func Build(b cfg.BusConfig) (Reader, error) {
	timeout := time.Duration(b.TimeoutMs) * time.Millisecond

	switch b.Type {
	case cfg.BusI2C:
		dev, err := si2c.Open(si2c.Config{
			Path:    b.Device,
			Address: b.Address,
		})
		if err != nil {
			return nil, &BusInitError{Bus: b.Type, Err: err}
		}
		return NewI2CReader(dev, b.CheckPEC), nil

	case cfg.BusModbus:
		c, err := smodbus.New(smodbus.Config{
			Endpoint: b.Endpoint,
			Device:   b.Device,
			BaudRate: b.BaudRate,
			UnitID:   b.UnitID,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, &BusInitError{Bus: b.Type, Err: err}
		}
		return NewModbusReader(c, b.Register), nil

	case cfg.BusSim:
		return NewSimReader(b.Seed), nil

	default:
		return nil, &BusInitError{Bus: b.Type, Err: fmt.Errorf("unsupported bus type")}
	}
}
