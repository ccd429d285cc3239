// internal/config/config.go
package config

import "time"

// MinSensorDelay is the minimum spacing between two bus transactions.
// The reading interval is never allowed below this value.
const MinSensorDelay = 300 * time.Millisecond

// Compiled-in defaults. Any field missing from the config file keeps these.
const (
	DefaultSensorID          = "SENSOR_1"
	DefaultConfigPath        = "config.json"
	DefaultReadingIntervalMs = 1000
	DefaultHighThreshold     = 70.0
	DefaultLowThreshold      = 20.0
	DefaultCollectorURL      = "http://localhost:3000"
	DefaultCollectorTimeout  = 5000
	DefaultI2CDevice         = "/dev/i2c-1"
	DefaultI2CAddress        = 0x0A
	DefaultBusTimeoutMs      = 1000
	DefaultMQTTTopic         = "sensors/{sensor_id}/temperatures"
)

// Bus types.
const (
	BusI2C    = "i2c"
	BusModbus = "modbus"
	BusSim    = "sim"
)

// Indicator types.
const (
	IndicatorNone   = "none"
	IndicatorGPIO   = "gpio"
	IndicatorModbus = "modbus"
)

type Config struct {
	Sensors   SensorsConfig   `json:"sensors" yaml:"sensors"`
	Collector CollectorConfig `json:"collector" yaml:"collector"`
	Bus       BusConfig       `json:"bus" yaml:"bus"`
	Indicator IndicatorConfig `json:"indicator" yaml:"indicator"`
	MQTT      MQTTConfig      `json:"mqtt" yaml:"mqtt"`
	Status    StatusConfig    `json:"status" yaml:"status"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// ---- SENSORS ----

type SensorsConfig struct {
	ReadingInterval       int                   `json:"readingInterval" yaml:"readingInterval"` // ms
	TemperatureThresholds TemperatureThresholds `json:"temperatureThresholds" yaml:"temperatureThresholds"`
}

type TemperatureThresholds struct {
	High float64 `json:"high" yaml:"high"`
	Low  float64 `json:"low" yaml:"low"`
}

// ---- COLLECTOR ----

type CollectorConfig struct {
	BaseURL   string `json:"baseUrl" yaml:"baseUrl"`
	TimeoutMs int    `json:"timeoutMs" yaml:"timeoutMs"`
}

// ---- BUS ----

type BusConfig struct {
	Type string `json:"type" yaml:"type"`

	// i2c + modbus RTU
	Device string `json:"device" yaml:"device"`

	// i2c
	Address  uint16 `json:"address" yaml:"address"`
	CheckPEC bool   `json:"checkPec" yaml:"checkPec"`

	// modbus
	Endpoint string `json:"endpoint" yaml:"endpoint"` // TCP host:port; empty => RTU on Device
	UnitID   uint8  `json:"unitId" yaml:"unitId"`
	Register uint16 `json:"register" yaml:"register"`
	BaudRate int    `json:"baudRate" yaml:"baudRate"`

	TimeoutMs int `json:"timeoutMs" yaml:"timeoutMs"`

	// sim
	Seed int64 `json:"seed" yaml:"seed"`
}

// ---- INDICATOR ----

type IndicatorConfig struct {
	Type string `json:"type" yaml:"type"`

	// gpio
	Pin int `json:"pin" yaml:"pin"`

	// modbus coil
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	UnitID   uint8  `json:"unitId" yaml:"unitId"`
	Coil     uint16 `json:"coil" yaml:"coil"`
}

// ---- MQTT ----

type MQTTConfig struct {
	Broker   string `json:"broker" yaml:"broker"` // empty disables the mirror
	ClientID string `json:"clientId" yaml:"clientId"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Topic    string `json:"topic" yaml:"topic"`
}

// ---- STATUS ----

// StatusConfig places the agent health block in a Modbus holding
// register area. An empty endpoint keeps the block local (/health only).
type StatusConfig struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	UnitID   uint8  `json:"unitId" yaml:"unitId"`
	BaseSlot uint16 `json:"baseSlot" yaml:"baseSlot"`
}

// ---- METRICS / LOG ----

type MetricsConfig struct {
	Listen string `json:"listen" yaml:"listen"` // empty disables /metrics
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Runtime is the immutable view the sampling loop needs.
type Runtime struct {
	ReadingInterval time.Duration
	HighThreshold   float64
	LowThreshold    float64
}

// Runtime extracts the loop parameters. Call after Normalize.
func (c *Config) Runtime() Runtime {
	return Runtime{
		ReadingInterval: time.Duration(c.Sensors.ReadingInterval) * time.Millisecond,
		HighThreshold:   c.Sensors.TemperatureThresholds.High,
		LowThreshold:    c.Sensors.TemperatureThresholds.Low,
	}
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Sensors: SensorsConfig{
			ReadingInterval: DefaultReadingIntervalMs,
			TemperatureThresholds: TemperatureThresholds{
				High: DefaultHighThreshold,
				Low:  DefaultLowThreshold,
			},
		},
		Collector: CollectorConfig{
			BaseURL:   DefaultCollectorURL,
			TimeoutMs: DefaultCollectorTimeout,
		},
		Bus: BusConfig{
			Type:      BusI2C,
			Device:    DefaultI2CDevice,
			Address:   DefaultI2CAddress,
			UnitID:    1,
			BaudRate:  9600,
			TimeoutMs: DefaultBusTimeoutMs,
		},
		Indicator: IndicatorConfig{
			Type:   IndicatorNone,
			UnitID: 1,
		},
		MQTT: MQTTConfig{
			ClientID: "d6t-agent",
			Topic:    DefaultMQTTTopic,
		},
		Status: StatusConfig{
			UnitID: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
