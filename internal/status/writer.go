// internal/status/writer.go
package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// registerWriter is the only capability the writer needs from a client.
type registerWriter interface {
	WriteRegisters(addr uint16, regs []uint16) error
}

// Source provides snapshots; *Tracker implements it.
type Source interface {
	Snapshot(now time.Time) Snapshot
}

// Writer delivers snapshots into a holding-register block.
// The first successful write asserts the full block (sensor id
// included); after that only changed slots are written.
type Writer struct {
	cli  registerWriter
	base uint16

	needFull bool
	last     []uint16
	name     string
}

// NewWriter builds a writer for the block at baseSlot*SlotsPerSensor.
func NewWriter(cli registerWriter, baseSlot uint16, name string) *Writer {
	return &Writer{
		cli:      cli,
		base:     baseSlot * SlotsPerSensor,
		needFull: true,
		name:     name,
	}
}

// WriteStatus delivers a snapshot.
// On any write failure, the next successful call re-asserts the full block.
func (w *Writer) WriteStatus(s Snapshot) error {
	if w == nil || w.cli == nil {
		return errors.New("status writer: disabled")
	}

	regs := Encode(s, w.name)

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if w.needFull {
		if err := w.cli.WriteRegisters(w.base, regs); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		w.needFull = false
		w.last = regs
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: live slots only, name is never rewritten here
	// ------------------------------------------------------------
	var errs []string

	for slot := SlotHealthCode; slot <= SlotAverage; slot++ {
		if w.last[slot] == regs[slot] {
			continue
		}
		if err := w.cli.WriteRegisters(w.base+uint16(slot), regs[slot:slot+1]); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
			continue
		}
		w.last[slot] = regs[slot]
	}

	if len(errs) > 0 {
		w.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

// Run writes the source's snapshot once at start and then every period
// until ctx is cancelled.
func Run(ctx context.Context, src Source, w *Writer, period time.Duration, log logrus.FieldLogger) {
	if period <= 0 {
		period = time.Second
	}

	write := func(now time.Time) {
		if err := w.WriteStatus(src.Snapshot(now)); err != nil {
			log.WithError(err).Warn("status write failed")
		}
	}

	write(time.Now())

	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			write(now)
		}
	}
}
