// internal/indicator/indicator_test.go
package indicator

import (
	"context"
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/tamzrod/d6t-agent/internal/alert"
	cfg "github.com/tamzrod/d6t-agent/internal/config"
)

// ---- fake indicator ----

type fakeIndicator struct {
	sets   []bool
	failOn bool
}

func (f *fakeIndicator) Init() error    { return nil }
func (f *fakeIndicator) Cleanup() error { return nil }

func (f *fakeIndicator) Set(on bool) error {
	f.sets = append(f.sets, on)
	if on && f.failOn {
		return errors.New("led stuck")
	}
	return nil
}

var quick = alert.Pattern{Count: 3, On: time.Millisecond, Off: time.Millisecond}

// ---- flash ----

func TestFlash_PlaysPatternAndEndsOff(t *testing.T) {
	ind := &fakeIndicator{}

	if err := Flash(context.Background(), ind, quick); err != nil {
		t.Fatalf("Flash err=%v", err)
	}

	want := []bool{true, false, true, false, true, false, false}
	if len(ind.sets) != len(want) {
		t.Fatalf("expected %d sets, got %v", len(want), ind.sets)
	}
	for i := range want {
		if ind.sets[i] != want[i] {
			t.Fatalf("set %d: got %v want %v", i, ind.sets[i], want[i])
		}
	}
}

func TestFlash_CancelledStopsEarlyAndEndsOff(t *testing.T) {
	ind := &fakeIndicator{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Flash(ctx, ind, alert.Pattern{Count: 5, On: time.Hour, Off: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if last := ind.sets[len(ind.sets)-1]; last {
		t.Fatalf("indicator left on after cancel")
	}
	if len(ind.sets) != 2 {
		t.Fatalf("expected on+off only, got %v", ind.sets)
	}
}

func TestFlash_ReportsSetFailureButCompletes(t *testing.T) {
	ind := &fakeIndicator{failOn: true}

	if err := Flash(context.Background(), ind, quick); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if len(ind.sets) != 7 {
		t.Fatalf("pattern not completed: %v", ind.sets)
	}
}

// ---- gpio ----

type fakePin struct {
	levels []gpio.Level
	err    error
}

func (p *fakePin) Out(l gpio.Level) error {
	p.levels = append(p.levels, l)
	return p.err
}

func TestGPIO_Lifecycle(t *testing.T) {
	pin := &fakePin{}
	var opened int
	g := &GPIO{Pin: 17, open: func(n int) (outPin, error) {
		opened = n
		return pin, nil
	}}

	if err := g.Init(); err != nil {
		t.Fatalf("Init err=%v", err)
	}
	if opened != 17 {
		t.Fatalf("opened pin %d want 17", opened)
	}

	if err := g.Set(true); err != nil {
		t.Fatalf("Set err=%v", err)
	}
	if err := g.Cleanup(); err != nil {
		t.Fatalf("Cleanup err=%v", err)
	}

	want := []gpio.Level{gpio.Low, gpio.High, gpio.Low}
	if len(pin.levels) != len(want) {
		t.Fatalf("levels: got %v want %v", pin.levels, want)
	}
	for i := range want {
		if pin.levels[i] != want[i] {
			t.Fatalf("level %d: got %v want %v", i, pin.levels[i], want[i])
		}
	}

	// released
	if err := g.Set(true); err == nil {
		t.Fatalf("Set after Cleanup should fail")
	}
	if err := g.Cleanup(); err != nil {
		t.Fatalf("second Cleanup err=%v", err)
	}
}

func TestGPIO_InitFailsWhenPinMissing(t *testing.T) {
	missing := errors.New("no such pin")
	g := &GPIO{Pin: 4, open: func(int) (outPin, error) { return nil, missing }}

	if err := g.Init(); !errors.Is(err, missing) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
	if err := g.Cleanup(); err != nil {
		t.Fatalf("Cleanup of unopened pin err=%v", err)
	}
}

func TestGPIO_OutFailureIsReported(t *testing.T) {
	g := &GPIO{Pin: 5, open: func(int) (outPin, error) {
		return &fakePin{err: errors.New("line busy")}, nil
	}}

	if err := g.Init(); err == nil {
		t.Fatalf("expected error driving the pin low, got nil")
	}
}

func TestAcquire_GPIOInitFailureFallsBackToNop(t *testing.T) {
	// no such line on any host
	ind, err := Acquire(cfg.IndicatorConfig{Type: cfg.IndicatorGPIO, Pin: 99999}, time.Second)

	if err == nil {
		t.Fatalf("expected init error, got nil")
	}
	if _, ok := ind.(Nop); !ok {
		t.Fatalf("expected Nop fallback, got %T", ind)
	}
}

// ---- builder ----

func TestAcquire_FallsBackToNop(t *testing.T) {
	ind, err := Acquire(cfg.IndicatorConfig{Type: cfg.IndicatorModbus}, time.Second)

	if err == nil {
		t.Fatalf("expected init error, got nil")
	}
	if _, ok := ind.(Nop); !ok {
		t.Fatalf("expected Nop fallback, got %T", ind)
	}
}

func TestAcquire_None(t *testing.T) {
	ind, err := Acquire(cfg.IndicatorConfig{Type: cfg.IndicatorNone}, time.Second)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ind.(Nop); !ok {
		t.Fatalf("expected Nop, got %T", ind)
	}
}
