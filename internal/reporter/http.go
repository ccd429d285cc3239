// internal/reporter/http.go
package reporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tamzrod/d6t-agent/internal/alert"
	"github.com/tamzrod/d6t-agent/internal/sensor"
)

// Collector paths.
const (
	PathSensorData  = "/api/sensor-data"
	PathCustomAlert = "/api/custom-alert"
)

// HeaderEventID carries the alert event id for collector-side dedup.
const HeaderEventID = "X-Event-ID"

// HTTPClient posts telemetry and alerts to the collector.
// Stateless: one request per call, no retries.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("reporter: base url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// SendSample implements Telemetry.
func (c *HTTPClient) SendSample(ctx context.Context, sensorID string, s sensor.Sample) error {
	body, err := EncodeSample(sensorID, s)
	if err != nil {
		return fmt.Errorf("reporter: encode sample: %w", err)
	}
	return c.post(ctx, PathSensorData, body, nil)
}

// SendAlert implements Alerts.
func (c *HTTPClient) SendAlert(ctx context.Context, ev alert.Event) error {
	body, err := EncodeAlert(ev)
	if err != nil {
		return fmt.Errorf("reporter: encode alert: %w", err)
	}
	return c.post(ctx, PathCustomAlert, body, map[string]string{
		HeaderEventID: ev.ID.String(),
	})
}

func (c *HTTPClient) post(ctx context.Context, path string, body []byte, headers map[string]string) error {
	endpoint := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return nil
}
