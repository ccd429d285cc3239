// internal/reporter/mqtt/publisher_test.go
package mqtt

import (
	"context"
	"testing"
)

func TestFormatTopic(t *testing.T) {
	got := FormatTopic("sensors/{sensor_id}/temperatures", "SENSOR_1")
	if got != "sensors/SENSOR_1/temperatures" {
		t.Fatalf("got %q", got)
	}

	if got := FormatTopic("fixed/topic", "SENSOR_1"); got != "fixed/topic" {
		t.Fatalf("got %q", got)
	}
}

func TestConnect_RequiresBroker(t *testing.T) {
	if _, err := Connect(Config{}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestPublish_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPublisher(nil, "t", 0)
	if err := p.Publish(ctx, "SENSOR_1", nil); err == nil {
		t.Fatalf("expected context error, got nil")
	}
}
