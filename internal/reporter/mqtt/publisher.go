// internal/reporter/mqtt/publisher.go
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Publisher mirrors telemetry bodies to an MQTT broker.
// Publishes are synchronous: the call returns once the broker acked or
// the timeout elapsed.
type Publisher struct {
	client  paho.Client
	topic   string
	timeout time.Duration
}

type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string // may contain {sensor_id}
	Timeout  time.Duration
}

// Connect dials the broker once.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.Timeout)
	opts.SetKeepAlive(60 * time.Second)

	c := paho.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("mqtt: connect %s: timeout", cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, err)
	}

	return NewPublisher(c, cfg.Topic, cfg.Timeout), nil
}

// NewPublisher wraps an existing client.
func NewPublisher(c paho.Client, topic string, timeout time.Duration) *Publisher {
	return &Publisher{client: c, topic: topic, timeout: timeout}
}

// Publish sends payload at QoS 0 to the sensor's topic.
func (p *Publisher) Publish(ctx context.Context, sensorID string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	topic := FormatTopic(p.topic, sensorID)
	tok := p.client.Publish(topic, 0, false, payload)
	if !tok.WaitTimeout(p.timeout) {
		return fmt.Errorf("mqtt: publish %s: timeout", topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects, allowing in-flight work 250ms.
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}

// FormatTopic replaces the {sensor_id} placeholder.
func FormatTopic(pattern, sensorID string) string {
	return strings.ReplaceAll(pattern, "{sensor_id}", sensorID)
}
