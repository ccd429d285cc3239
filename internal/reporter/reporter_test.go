// internal/reporter/reporter_test.go
package reporter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/sensor"
)

// ---- capture server ----

type captured struct {
	method      string
	path        string
	contentType string
	eventID     string
	body        []byte
}

func newServer(t *testing.T, status int) (*httptest.Server, func() []captured) {
	t.Helper()
	var (
		mu  sync.Mutex
		got []captured
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		got = append(got, captured{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			eventID:     r.Header.Get(HeaderEventID),
			body:        b,
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), got...)
	}
}

func sampleOf(v float64) sensor.Sample {
	var s sensor.Sample
	for i := range s.Zones {
		s.Zones[i] = v
	}
	return s
}

func newClient(t *testing.T, url string) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(Config{BaseURL: url + "/", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewHTTPClient err=%v", err)
	}
	return c
}

// ---- telemetry ----

func TestSendSample_Body(t *testing.T) {
	srv, got := newServer(t, http.StatusCreated)
	c := newClient(t, srv.URL)

	if err := c.SendSample(context.Background(), "SENSOR_1", sampleOf(25.5)); err != nil {
		t.Fatalf("SendSample err=%v", err)
	}

	reqs := got()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.method != http.MethodPost || req.path != PathSensorData {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}
	if req.contentType != "application/json" {
		t.Fatalf("content type: got %q", req.contentType)
	}

	var body SensorData
	if err := json.Unmarshal(req.body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.SensorID != "SENSOR_1" || len(body.Temperatures) != sensor.Zones || body.Temperatures[7] != 25.5 {
		t.Fatalf("unexpected body: %s", req.body)
	}
}

func TestSendSample_Non2xxIsTransportError(t *testing.T) {
	srv, _ := newServer(t, http.StatusServiceUnavailable)
	c := newClient(t, srv.URL)

	err := c.SendSample(context.Background(), "SENSOR_1", sampleOf(20))

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d", te.StatusCode)
	}
}

func TestSendSample_UnreachableIsTransportError(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK)
	url := srv.URL
	srv.Close()

	err := newClient(t, url).SendSample(context.Background(), "SENSOR_1", sampleOf(20))

	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != 0 {
		t.Fatalf("expected transport error without status, got %v", err)
	}
}

// ---- alerts ----

func TestSendAlert_Body(t *testing.T) {
	srv, got := newServer(t, http.StatusOK)
	c := newClient(t, srv.URL)

	at := time.Date(2026, 7, 4, 9, 5, 3, 0, time.Local)
	ev := alert.Event{
		Condition:  alert.High,
		Average:    75.25,
		Thresholds: alert.Thresholds{High: 70, Low: 20},
	}.Stamp("SENSOR_2", at)

	if err := c.SendAlert(context.Background(), ev); err != nil {
		t.Fatalf("SendAlert err=%v", err)
	}

	req := got()[0]
	if req.path != PathCustomAlert {
		t.Fatalf("path: got %q", req.path)
	}
	if req.eventID != ev.ID.String() {
		t.Fatalf("event id header: got %q want %q", req.eventID, ev.ID)
	}

	var raw map[string]any
	if err := json.Unmarshal(req.body, &raw); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if raw["sensorId"] != "SENSOR_2" || raw["eventType"] != EventAbnormal {
		t.Fatalf("unexpected body: %s", req.body)
	}
	details := raw["details"].(map[string]any)
	if details["value"] != 75.25 {
		t.Fatalf("value: got %v", details["value"])
	}
	if details["timestamp"] != "2026/07/04 09:05:03" {
		t.Fatalf("timestamp: got %v", details["timestamp"])
	}
	if _, ok := details["recovery"]; ok {
		t.Fatalf("recovery must be absent on alert: %s", req.body)
	}
	th := details["threshold"].(map[string]any)
	if th["high"] != 70.0 || th["low"] != 20.0 {
		t.Fatalf("threshold: got %v", th)
	}
}

func TestEncodeAlert_Recovery(t *testing.T) {
	ev := alert.Event{
		Condition: alert.Low,
		Recovery:  true,
		At:        time.Now(),
	}

	b, err := EncodeAlert(ev)
	if err != nil {
		t.Fatalf("EncodeAlert err=%v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"eventType":"ABNORMAL_DATA_RECOVERY"`) || !strings.Contains(s, `"recovery":true`) {
		t.Fatalf("unexpected recovery body: %s", s)
	}
}

func TestNewHTTPClient_RequiresURL(t *testing.T) {
	if _, err := NewHTTPClient(Config{}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

// ---- mirror ----

type fakeTelemetry struct{ err error }

func (f *fakeTelemetry) SendSample(context.Context, string, sensor.Sample) error { return f.err }

type fakePublisher struct {
	sensorID string
	payload  []byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, sensorID string, payload []byte) error {
	f.sensorID, f.payload = sensorID, payload
	return f.err
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestMirror_PublishesAndReturnsPrimaryResult(t *testing.T) {
	primaryErr := errors.New("collector down")
	pub := &fakePublisher{err: errors.New("broker down")}
	m := &Mirror{Primary: &fakeTelemetry{err: primaryErr}, Pub: pub, Log: quietLogger()}

	err := m.SendSample(context.Background(), "SENSOR_3", sampleOf(30))

	if !errors.Is(err, primaryErr) {
		t.Fatalf("expected primary error, got %v", err)
	}
	if pub.sensorID != "SENSOR_3" || !strings.Contains(string(pub.payload), `"sensorId":"SENSOR_3"`) {
		t.Fatalf("mirror not published: %q %s", pub.sensorID, pub.payload)
	}
}
