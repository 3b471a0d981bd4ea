package types

// Configuration payloads, decoded from the embedded device JSON and
// published retained on "config/<section>".

type NetConfig struct {
	Hostname        string `json:"hostname"`
	MaxAttempts     uint8  `json:"max_attempts"`
	RetryIntervalMs uint32 `json:"retry_interval_ms"`
	ProbeIntervalMs uint32 `json:"probe_interval_ms"` // link probe while connected; 0 disables
}

type PumpChannel struct {
	Label string `json:"label"`
	Pin   int    `json:"pin"`
}

type PumpsConfig struct {
	Enabled    bool          `json:"enabled"`
	MaxSeconds uint32        `json:"max_seconds"`
	Channels   []PumpChannel `json:"channels"`
}

type ServoConfig struct {
	Enabled     bool   `json:"enabled"`
	Pin         int    `json:"pin"`
	InitAngle   int16  `json:"init_angle"`
	FinalAngle  int16  `json:"final_angle"`
	StepDelayMs uint32 `json:"step_delay_ms"`
}

type SensorChannel struct {
	Label      string `json:"label"`
	ADC        int    `json:"adc"`
	Enabled    bool   `json:"enabled"`
	IntervalMs uint32 `json:"interval_ms"`
}

// AirChannel is the optional air temperature/humidity probe.
type AirChannel struct {
	Enabled    bool   `json:"enabled"`
	Pin        int    `json:"pin"`
	IntervalMs uint32 `json:"interval_ms"`
}

type SensorsConfig struct {
	Enabled  bool            `json:"enabled"`
	Channels []SensorChannel `json:"channels"`
	Air      AirChannel      `json:"air"`
}

type SmoothConfig struct {
	Enabled           bool   `json:"enabled"`
	DefaultCount      uint8  `json:"default_count"`
	DefaultIntervalMs uint32 `json:"default_interval_ms"`
	MaxCount          uint8  `json:"max_count"`
}

type HeartbeatConfig struct {
	IntervalS uint32 `json:"interval"`
}
