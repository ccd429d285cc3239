// internal/sensor/readers.go
package sensor

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// ---- I2C ----

// transactor abstracts the raw I2C write-then-read the D6T needs.
type transactor interface {
	Transact(w, r []byte) error
	Address() uint16
	Close() error
}

// I2CReader reads the D6T directly over I2C.
type I2CReader struct {
	dev      transactor
	checkPEC bool
	now      func() time.Time
}

// NewI2CReader wraps an opened device.
func NewI2CReader(dev transactor, checkPEC bool) *I2CReader {
	return &I2CReader{dev: dev, checkPEC: checkPEC, now: time.Now}
}

func (r *I2CReader) Read(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, &ReadError{Source: "i2c", Err: err}
	}

	buf := make([]byte, FrameLen)
	if err := r.dev.Transact([]byte{ReadCommand}, buf); err != nil {
		return Sample{}, &ReadError{Source: "i2c", Err: err}
	}

	if r.checkPEC {
		if err := CheckPEC(r.dev.Address(), buf); err != nil {
			return Sample{}, &ReadError{Source: "i2c", Err: err}
		}
	}

	zones, err := DecodeFrame(buf)
	if err != nil {
		return Sample{}, &ReadError{Source: "i2c", Err: err}
	}
	return Sample{Zones: zones, At: r.now()}, nil
}

func (r *I2CReader) Close() error { return r.dev.Close() }

// ---- MODBUS ----

// registerClient abstracts the Modbus operation the reader needs.
type registerClient interface {
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)
	Close() error
}

// ModbusReader reads the zone block from a Modbus gateway (FC 4).
type ModbusReader struct {
	client   registerClient
	register uint16
	now      func() time.Time
}

func NewModbusReader(client registerClient, register uint16) *ModbusReader {
	return &ModbusReader{client: client, register: register, now: time.Now}
}

func (r *ModbusReader) Read(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, &ReadError{Source: "modbus", Err: err}
	}

	regs, err := r.client.ReadInputRegisters(r.register, Zones)
	if err != nil {
		return Sample{}, &ReadError{Source: "modbus", Err: err}
	}

	zones, err := DecodeRegisters(regs)
	if err != nil {
		return Sample{}, &ReadError{Source: "modbus", Err: err}
	}
	return Sample{Zones: zones, At: r.now()}, nil
}

func (r *ModbusReader) Close() error { return r.client.Close() }

// ---- SIMULATED ----

// SimReader produces plausible room-temperature frames with an
// occasional out-of-range cycle, for running without hardware.
type SimReader struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time

	// AbnormalRate is the probability of an out-of-range cycle.
	AbnormalRate float64
}

// NewSimReader seeds the generator. A zero seed uses the clock.
func NewSimReader(seed int64) *SimReader {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimReader{
		rng:          rand.New(rand.NewSource(seed)),
		now:          time.Now,
		AbnormalRate: 0.1,
	}
}

func (r *SimReader) Read(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, &ReadError{Source: "sim", Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var base float64
	switch {
	case r.rng.Float64() >= r.AbnormalRate:
		base = 25 + r.rng.Float64()*5
	case r.rng.Float64() < 0.5:
		base = 75 + r.rng.Float64()*10
	default:
		base = 15 - r.rng.Float64()*10
	}

	var s Sample
	for i := range s.Zones {
		// one decimal, like the real sensor
		v := base + (r.rng.Float64()*2 - 1)
		s.Zones[i] = float64(int64(v*10+0.5)) / 10
	}
	s.At = r.now()
	return s, nil
}

func (r *SimReader) Close() error { return nil }
