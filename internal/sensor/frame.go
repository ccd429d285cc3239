// internal/sensor/frame.go
package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// D6T-44L frame layout (35 bytes):
//
//	0–1    PTAT (reference temperature, LE)
//	2–33   16 zones, 2 bytes each, LE, 0.1 °C units
//	34     PEC (CRC-8, poly 0x07)
const (
	FrameLen     = 2 + Zones*2 + 1
	frameZoneOff = 2
	framePECOff  = FrameLen - 1

	// ReadCommand is written to the sensor before each frame read.
	ReadCommand byte = 0x4C

	scale = 0.1
)

// ErrPEC marks a frame whose trailing PEC byte does not match.
var ErrPEC = errors.New("frame PEC mismatch")

// DecodeFrame converts a raw D6T frame into zone temperatures.
// Values are unsigned 16-bit, matching the sensor's documented range.
func DecodeFrame(buf []byte) ([Zones]float64, error) {
	var out [Zones]float64
	if len(buf) < FrameLen {
		return out, fmt.Errorf("short frame: got %d bytes, want %d", len(buf), FrameLen)
	}
	for i := 0; i < Zones; i++ {
		off := frameZoneOff + 2*i
		raw := binary.LittleEndian.Uint16(buf[off : off+2])
		out[i] = float64(raw) * scale
	}
	return out, nil
}

// DecodeRegisters converts already-word-aligned register values
// (0.1 °C units) into zone temperatures.
func DecodeRegisters(regs []uint16) ([Zones]float64, error) {
	var out [Zones]float64
	if len(regs) < Zones {
		return out, fmt.Errorf("short register block: got %d, want %d", len(regs), Zones)
	}
	for i := 0; i < Zones; i++ {
		out[i] = float64(regs[i]) * scale
	}
	return out, nil
}

// CheckPEC verifies the trailing packet error code of a frame.
// The CRC covers the whole transaction: write address, command,
// read address, then the payload.
func CheckPEC(addr uint16, buf []byte) error {
	if len(buf) < FrameLen {
		return fmt.Errorf("short frame: got %d bytes, want %d", len(buf), FrameLen)
	}
	return checkPEC(pecSeed(addr), buf)
}

func pecSeed(addr uint16) byte {
	crc := crc8(0, byte(addr<<1))
	crc = crc8(crc, ReadCommand)
	return crc8(crc, byte(addr<<1)|1)
}

func checkPEC(crc byte, buf []byte) error {
	for _, b := range buf[:framePECOff] {
		crc = crc8(crc, b)
	}
	if crc != buf[framePECOff] {
		return fmt.Errorf("%w: got 0x%02x want 0x%02x", ErrPEC, buf[framePECOff], crc)
	}
	return nil
}

func crc8(crc, data byte) byte {
	crc ^= data
	for i := 0; i < 8; i++ {
		if crc&0x80 != 0 {
			crc = crc<<1 ^ 0x07
		} else {
			crc <<= 1
		}
	}
	return crc
}
