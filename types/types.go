package types

// ------------------------
// Generic replies
// ------------------------

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ------------------------
// Link state (retained on "state/link")
// ------------------------

type LinkPhase string

const (
	LinkUnprovisioned LinkPhase = "unprovisioned"
	LinkConnecting    LinkPhase = "connecting"
	LinkConnected     LinkPhase = "connected"
	LinkProvisioning  LinkPhase = "provisioning"
)

type LinkState struct {
	Phase    LinkPhase `json:"phase"`
	SSID     string    `json:"ssid,omitempty"`
	Attempts uint8     `json:"attempts,omitempty"`
	TSms     int64     `json:"ts_ms"`
}

// ------------------------
// Scheduler status payloads (retained)
// ------------------------

type PumpState struct {
	Active           bool   `json:"active"`
	Target           string `json:"target,omitempty"`
	RemainingSeconds uint32 `json:"remaining_s"`
}

type ServoPhase string

const (
	ServoIdle          ServoPhase = "idle"
	ServoMovingToFinal ServoPhase = "moving_to_final"
	ServoMovingToInit  ServoPhase = "moving_to_init"
)

type ServoState struct {
	Phase ServoPhase `json:"phase"`
	Angle int16      `json:"angle"`
}

// ReadingStatus tags a sensor value so "no data" is never confused with
// a genuine zero reading.
type ReadingStatus string

const (
	ReadingOk       ReadingStatus = "ok"
	ReadingDisabled ReadingStatus = "disabled"
	ReadingError    ReadingStatus = "read_error"
)

// SoilValue is the latest per-channel reading ("value/soil/<label>").
type SoilValue struct {
	Label  string        `json:"label"`
	Raw    uint16        `json:"raw"`
	Mapped uint8         `json:"mapped"` // percent, inverted scale
	Status ReadingStatus `json:"status"`
	TSms   int64         `json:"ts_ms"`
}

// AirValue is the latest air temperature/humidity reading
// ("value/air"). Fixed-point: tenths of °C and tenths of %RH.
type AirValue struct {
	TempDeciC int16         `json:"temp_dc"`
	RHDeciPct int16         `json:"rh_dp"`
	Status    ReadingStatus `json:"status"`
	TSms      int64         `json:"ts_ms"`
}

// SmoothResult is the last completed smooth-reading run ("value/smooth").
type SmoothResult struct {
	Label     string `json:"label"`
	RawAvg    uint16 `json:"raw_avg"`
	MappedAvg uint8  `json:"mapped_avg"`
	Fresh     bool   `json:"fresh"`
}

// ------------------------
// Control payloads ("ctrl/...")
// ------------------------

type PumpStart struct {
	Target  string `json:"target"`
	Seconds uint32 `json:"seconds"`
}

type SmoothStart struct {
	Label      string `json:"label"`
	Count      uint8  `json:"count,omitempty"`       // 0 => configured default
	IntervalMs uint32 `json:"interval_ms,omitempty"` // 0 => configured default
}

type FeatureSet struct {
	Feature string `json:"feature"` // "pumps" | "servo" | "sensors" | "smooth"
	Enabled bool   `json:"enabled"`
}
