// internal/sensor/i2c/i2c_test.go
package i2c

import (
	"bytes"
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
)

// ---- fake bus ----

type fakeBus struct {
	addr  uint16
	wrote []byte
	reply []byte
	err   error
}

func (b *fakeBus) String() string                  { return "fake" }
func (b *fakeBus) SetSpeed(physic.Frequency) error { return nil }
func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	b.addr = addr
	b.wrote = append([]byte(nil), w...)
	if b.err != nil {
		return b.err
	}
	copy(r, b.reply)
	return nil
}

// ---- tests ----

func TestTransact_AddressesSlaveInOneTx(t *testing.T) {
	bus := &fakeBus{reply: []byte{1, 2, 3}}
	d := New(bus, 0x0A)

	r := make([]byte, 3)
	if err := d.Transact([]byte{0x4C}, r); err != nil {
		t.Fatalf("Transact err=%v", err)
	}

	if bus.addr != 0x0A {
		t.Fatalf("addr: got 0x%02x want 0x0a", bus.addr)
	}
	if !bytes.Equal(bus.wrote, []byte{0x4C}) {
		t.Fatalf("write: got %x", bus.wrote)
	}
	if !bytes.Equal(r, []byte{1, 2, 3}) {
		t.Fatalf("read: got %x", r)
	}
}

func TestTransact_WrapsBusError(t *testing.T) {
	nack := errors.New("nack")
	d := New(&fakeBus{err: nack}, 0x0A)

	if err := d.Transact([]byte{0x4C}, make([]byte, 1)); !errors.Is(err, nack) {
		t.Fatalf("expected wrapped nack, got %v", err)
	}
}

func TestClose_ThenTransactFails(t *testing.T) {
	d := New(&fakeBus{}, 0x0A)

	if err := d.Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close err=%v", err)
	}
	if err := d.Transact(nil, make([]byte, 1)); err == nil {
		t.Fatalf("expected error after close")
	}
	if d.Address() != 0x0A {
		t.Fatalf("address lost after close")
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(Config{Address: 0x0A}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
