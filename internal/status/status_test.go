// internal/status/status_test.go
package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/sensor"
)

// ---- fake client ----

type write struct {
	addr uint16
	regs []uint16
}

type fakeClient struct {
	writes []write
	fail   bool
}

func (f *fakeClient) WriteRegisters(addr uint16, regs []uint16) error {
	if f.fail {
		return errors.New("boom")
	}
	f.writes = append(f.writes, write{addr: addr, regs: append([]uint16(nil), regs...)})
	return nil
}

func (f *fakeClient) last() write { return f.writes[len(f.writes)-1] }

// ---- tracker ----

func TestTracker_UnknownUntilObserved(t *testing.T) {
	tr := NewTracker(time.Minute)
	if got := tr.Snapshot(time.Now()).Health; got != HealthUnknown {
		t.Fatalf("health: got %d want unknown", got)
	}
}

func TestTracker_OKCarriesAverageAndFlags(t *testing.T) {
	tr := NewTracker(0)
	now := time.Now()

	tr.Observe(now, nil, 72.46, alert.State{HighActive: true})
	s := tr.Snapshot(now)

	if s.Health != HealthOK || s.AverageTenths != 725 || s.AlertFlags != FlagHigh {
		t.Fatalf("unexpected snapshot %+v", s)
	}
}

func TestTracker_SecondsInErrorAndRecovery(t *testing.T) {
	tr := NewTracker(0)
	t0 := time.Unix(1000, 0)

	tr.Observe(t0, &sensor.ReadError{Source: "i2c", Err: sensor.ErrPEC}, 0, alert.State{})
	tr.Observe(t0.Add(2*time.Second), &sensor.ReadError{Source: "i2c", Err: errors.New("nack")}, 0, alert.State{})

	s := tr.Snapshot(t0.Add(5 * time.Second))
	if s.Health != HealthError || s.LastErrorCode != ErrorRead || s.SecondsInError != 5 {
		t.Fatalf("unexpected snapshot %+v", s)
	}

	tr.Observe(t0.Add(6*time.Second), nil, 25, alert.State{})
	s = tr.Snapshot(t0.Add(6 * time.Second))
	if s.Health != HealthOK || s.LastErrorCode != ErrorNone || s.SecondsInError != 0 {
		t.Fatalf("not recovered: %+v", s)
	}
}

func TestTracker_SecondsInErrorDoesNotWrap(t *testing.T) {
	tr := NewTracker(0)
	t0 := time.Unix(0, 0)
	tr.Observe(t0, errors.New("x"), 0, alert.State{})

	if s := tr.Snapshot(t0.Add(100000 * time.Second)); s.SecondsInError != 65535 {
		t.Fatalf("seconds: got %d want 65535", s.SecondsInError)
	}
}

func TestTracker_Stale(t *testing.T) {
	tr := NewTracker(3 * time.Second)
	t0 := time.Unix(0, 0)
	tr.Observe(t0, nil, 20, alert.State{})

	if s := tr.Snapshot(t0.Add(2 * time.Second)); s.Health != HealthOK {
		t.Fatalf("health: got %d want ok", s.Health)
	}
	if s := tr.Snapshot(t0.Add(4 * time.Second)); s.Health != HealthStale {
		t.Fatalf("health: got %d want stale", s.Health)
	}
}

func TestErrorCode(t *testing.T) {
	pec := &sensor.ReadError{Source: "i2c", Err: fmt.Errorf("%w: got 0x00 want 0x01", sensor.ErrPEC)}
	if got := ErrorCode(pec); got != ErrorPEC {
		t.Fatalf("pec: got %d", got)
	}
	if got := ErrorCode(errors.New("x")); got != ErrorRead {
		t.Fatalf("generic: got %d", got)
	}
	if got := ErrorCode(nil); got != ErrorNone {
		t.Fatalf("nil: got %d", got)
	}
}

// ---- encode ----

func TestEncode_Layout(t *testing.T) {
	regs := Encode(Snapshot{Health: HealthOK, AlertFlags: FlagLow, AverageTenths: -52}, "SENSOR_1")

	if len(regs) != SlotsPerSensor {
		t.Fatalf("len: got %d", len(regs))
	}
	if regs[SlotHealthCode] != HealthOK || regs[SlotAlertFlags] != FlagLow {
		t.Fatalf("live slots: %v", regs)
	}
	if int16(regs[SlotAverage]) != -52 {
		t.Fatalf("average: got %d", int16(regs[SlotAverage]))
	}
	for i := SlotReservedStart; i <= SlotReservedEnd; i++ {
		if regs[i] != 0 {
			t.Fatalf("reserved slot %d not zero", i)
		}
	}
	// "SE" big-endian
	if regs[SlotNameStart] != uint16('S')<<8|uint16('E') {
		t.Fatalf("name slot: got 0x%04x", regs[SlotNameStart])
	}
}

func TestEncodeName_TruncatesAndSanitizes(t *testing.T) {
	regs := EncodeName("A\x01CDEFGHIJKLMNOPQRSTUV")

	if regs[0] != uint16('A')<<8|uint16('?') {
		t.Fatalf("sanitize: got 0x%04x", regs[0])
	}
	if regs[SlotNameSlots-1] != uint16('O')<<8|uint16('P') {
		t.Fatalf("truncate: got 0x%04x", regs[SlotNameSlots-1])
	}
}

// ---- writer ----

func TestWriter_FullAssertThenIncremental(t *testing.T) {
	cli := &fakeClient{}
	w := NewWriter(cli, 2, "SENSOR_1")

	if err := w.WriteStatus(Snapshot{Health: HealthOK}); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}
	first := cli.last()
	if first.addr != 2*SlotsPerSensor || len(first.regs) != SlotsPerSensor {
		t.Fatalf("expected full block at %d, got %d regs at %d", 2*SlotsPerSensor, len(first.regs), first.addr)
	}

	if err := w.WriteStatus(Snapshot{Health: HealthError, LastErrorCode: ErrorRead}); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}
	if len(cli.writes) != 3 {
		t.Fatalf("expected 2 single-slot writes, got %d total writes", len(cli.writes))
	}
	for _, wr := range cli.writes[1:] {
		if len(wr.regs) != 1 {
			t.Fatalf("name must not be rewritten on incremental update: %+v", wr)
		}
	}

	// unchanged snapshot writes nothing
	if err := w.WriteStatus(Snapshot{Health: HealthError, LastErrorCode: ErrorRead}); err != nil {
		t.Fatalf("noop write failed: %v", err)
	}
	if len(cli.writes) != 3 {
		t.Fatalf("unchanged snapshot produced writes")
	}
}

func TestWriter_FailureForcesFullReassert(t *testing.T) {
	cli := &fakeClient{}
	w := NewWriter(cli, 0, "S")

	_ = w.WriteStatus(Snapshot{Health: HealthOK})

	cli.fail = true
	if err := w.WriteStatus(Snapshot{Health: HealthError}); err == nil {
		t.Fatalf("expected error, got nil")
	}

	cli.fail = false
	if err := w.WriteStatus(Snapshot{Health: HealthError}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cli.last().regs) != SlotsPerSensor {
		t.Fatalf("expected full re-assert after failure")
	}
}

// ---- handler ----

func TestHandler(t *testing.T) {
	tr := NewTracker(0)

	rr := httptest.NewRecorder()
	tr.Observe(time.Now(), errors.New("x"), 0, alert.State{})
	Handler(tr).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("code: got %d", rr.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "error" || body["lastErrorCode"] != 1.0 {
		t.Fatalf("unexpected body %v", body)
	}

	rr = httptest.NewRecorder()
	tr.Observe(time.Now(), nil, 22, alert.State{})
	Handler(tr).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("code: got %d", rr.Code)
	}
}
