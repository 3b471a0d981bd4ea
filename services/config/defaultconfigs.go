package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPlantbox = `{
  "net": {
    "hostname": "plantbox",
    "max_attempts": 5,
    "retry_interval_ms": 5000,
    "probe_interval_ms": 10000
  },
  "pumps": {
    "enabled": true,
    "max_seconds": 60,
    "channels": [
      {"label": "pump1", "pin": 25},
      {"label": "pump2", "pin": 26}
    ]
  },
  "servo": {
    "enabled": true,
    "pin": 18,
    "init_angle": 90,
    "final_angle": 150,
    "step_delay_ms": 5
  },
  "sensors": {
    "enabled": true,
    "channels": [
      {"label": "soil1", "adc": 34, "enabled": true, "interval_ms": 60000},
      {"label": "soil2", "adc": 35, "enabled": true, "interval_ms": 60000}
    ],
    "air": {"enabled": true, "pin": 15, "interval_ms": 60000}
  },
  "smooth": {
    "enabled": true,
    "default_count": 10,
    "default_interval_ms": 200,
    "max_count": 50
  },
  "heartbeat": {
    "interval": 5
  }
}`

var embeddedConfigs = map[string][]byte{
	"plantbox": []byte(cfgPlantbox),
}
