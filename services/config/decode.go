package config

import (
	"errors"

	"plantcode-go/types"
)

// decodeSection converts one generic JSON section into its typed bus
// payload. Unknown sections are passed through untyped so experimental
// services can still receive them.
func decodeSection(section string, v any) (any, error) {
	switch section {
	case "net":
		return decodeNet(v)
	case "pumps":
		return decodePumps(v)
	case "servo":
		return decodeServo(v)
	case "sensors":
		return decodeSensors(v)
	case "smooth":
		return decodeSmooth(v)
	case "heartbeat":
		return decodeHeartbeat(v)
	default:
		return v, nil
	}
}

var errNotObject = errors.New("not a JSON object")

func obj(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return m, nil
}

// tinyjson yields float64 for all numbers; these helpers narrow them.

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolean(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func u32(m map[string]any, key string) uint32 {
	f, _ := m[key].(float64)
	if f < 0 {
		return 0
	}
	return uint32(f)
}

func u8(m map[string]any, key string) uint8 {
	f, _ := m[key].(float64)
	if f < 0 || f > 255 {
		return 0
	}
	return uint8(f)
}

func i16(m map[string]any, key string) int16 {
	f, _ := m[key].(float64)
	return int16(f)
}

func pin(m map[string]any, key string) int {
	f, _ := m[key].(float64)
	return int(f)
}

func decodeNet(v any) (types.NetConfig, error) {
	m, err := obj(v)
	if err != nil {
		return types.NetConfig{}, err
	}
	return types.NetConfig{
		Hostname:        str(m, "hostname"),
		MaxAttempts:     u8(m, "max_attempts"),
		RetryIntervalMs: u32(m, "retry_interval_ms"),
		ProbeIntervalMs: u32(m, "probe_interval_ms"),
	}, nil
}

func decodePumps(v any) (types.PumpsConfig, error) {
	m, err := obj(v)
	if err != nil {
		return types.PumpsConfig{}, err
	}
	cfg := types.PumpsConfig{
		Enabled:    boolean(m, "enabled"),
		MaxSeconds: u32(m, "max_seconds"),
	}
	if chans, ok := m["channels"].([]any); ok {
		for _, cv := range chans {
			cm, err := obj(cv)
			if err != nil {
				continue
			}
			cfg.Channels = append(cfg.Channels, types.PumpChannel{
				Label: str(cm, "label"),
				Pin:   pin(cm, "pin"),
			})
		}
	}
	return cfg, nil
}

func decodeServo(v any) (types.ServoConfig, error) {
	m, err := obj(v)
	if err != nil {
		return types.ServoConfig{}, err
	}
	return types.ServoConfig{
		Enabled:     boolean(m, "enabled"),
		Pin:         pin(m, "pin"),
		InitAngle:   i16(m, "init_angle"),
		FinalAngle:  i16(m, "final_angle"),
		StepDelayMs: u32(m, "step_delay_ms"),
	}, nil
}

func decodeSensors(v any) (types.SensorsConfig, error) {
	m, err := obj(v)
	if err != nil {
		return types.SensorsConfig{}, err
	}
	cfg := types.SensorsConfig{Enabled: boolean(m, "enabled")}
	if av, ok := m["air"]; ok {
		if am, err := obj(av); err == nil {
			cfg.Air = types.AirChannel{
				Enabled:    boolean(am, "enabled"),
				Pin:        pin(am, "pin"),
				IntervalMs: u32(am, "interval_ms"),
			}
		}
	}
	if chans, ok := m["channels"].([]any); ok {
		for _, cv := range chans {
			cm, err := obj(cv)
			if err != nil {
				continue
			}
			cfg.Channels = append(cfg.Channels, types.SensorChannel{
				Label:      str(cm, "label"),
				ADC:        pin(cm, "adc"),
				Enabled:    boolean(cm, "enabled"),
				IntervalMs: u32(cm, "interval_ms"),
			})
		}
	}
	return cfg, nil
}

func decodeSmooth(v any) (types.SmoothConfig, error) {
	m, err := obj(v)
	if err != nil {
		return types.SmoothConfig{}, err
	}
	return types.SmoothConfig{
		Enabled:           boolean(m, "enabled"),
		DefaultCount:      u8(m, "default_count"),
		DefaultIntervalMs: u32(m, "default_interval_ms"),
		MaxCount:          u8(m, "max_count"),
	}, nil
}

func decodeHeartbeat(v any) (types.HeartbeatConfig, error) {
	m, err := obj(v)
	if err != nil {
		return types.HeartbeatConfig{}, err
	}
	return types.HeartbeatConfig{IntervalS: u32(m, "interval")}, nil
}
