// internal/sensor/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Client reads the thermopile register block through a Modbus gateway.
// This adapter is geometry-only: it returns raw registers.
type Client struct {
	mu      sync.Mutex
	handler closer
	client  modbus.Client
}

type closer interface {
	Close() error
}

// Config is minimal transport config.
// Endpoint selects TCP; otherwise Device is used for RTU.
type Config struct {
	Endpoint string
	Device   string
	BaudRate int
	UnitID   uint8
	Timeout  time.Duration
}

// New creates a connected Modbus client.
func New(cfg Config) (*Client, error) {
	switch {
	case cfg.Endpoint != "":
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("sensor modbus: connect %s: %w", cfg.Endpoint, err)
		}
		return &Client{handler: h, client: modbus.NewClient(h)}, nil

	case cfg.Device != "":
		h := modbus.NewRTUClientHandler(cfg.Device)
		h.BaudRate = cfg.BaudRate
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 1
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("sensor modbus: open %s: %w", cfg.Device, err)
		}
		return &Client{handler: h, client: modbus.NewClient(h)}, nil

	default:
		return nil, errors.New("sensor modbus: endpoint or device required")
	}
}

// ReadInputRegisters performs FC 4 and unpacks big-endian words.
func (c *Client) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil, errors.New("sensor modbus: not connected")
	}

	raw, err := c.client.ReadInputRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	if len(raw) != int(qty)*2 {
		return nil, fmt.Errorf("sensor modbus: got %d bytes, want %d", len(raw), int(qty)*2)
	}
	return unpackRegisters(raw), nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handler == nil {
		return nil
	}
	err := c.handler.Close()
	c.handler = nil
	c.client = nil
	return err
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
