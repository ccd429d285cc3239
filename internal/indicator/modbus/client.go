// internal/indicator/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

// Coil drives one output coil on a Modbus TCP I/O module.
// It serializes requests; the handler is not safe for concurrent use.
type Coil struct {
	mu      sync.Mutex
	cfg     Config
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

type Config struct {
	Endpoint string
	UnitID   uint8
	Address  uint16
	Timeout  time.Duration
}

// NewCoil builds an unconnected coil; Init connects.
func NewCoil(cfg Config) *Coil {
	return &Coil{cfg: cfg}
}

func (c *Coil) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.Endpoint == "" {
		return errors.New("indicator modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(c.cfg.Endpoint)
	h.Timeout = c.cfg.Timeout
	h.SlaveId = c.cfg.UnitID

	if err := h.Connect(); err != nil {
		return fmt.Errorf("indicator modbus: connect %s: %w", c.cfg.Endpoint, err)
	}

	c.handler = h
	c.client = modbus.NewClient(h)
	return nil
}

// Set writes the coil (FC 5).
func (c *Coil) Set(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return errors.New("indicator modbus: not connected")
	}

	v := coilOff
	if on {
		v = coilOn
	}
	_, err := c.client.WriteSingleCoil(c.cfg.Address, v)
	return err
}

// Cleanup switches the coil off and closes the connection.
func (c *Coil) Cleanup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handler == nil {
		return nil
	}
	if c.client != nil {
		_, _ = c.client.WriteSingleCoil(c.cfg.Address, coilOff)
	}
	err := c.handler.Close()
	c.handler = nil
	c.client = nil
	return err
}
