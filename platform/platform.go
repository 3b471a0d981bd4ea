// Package platform assembles the hardware surface the firmware runs
// on. Host builds get simulated devices so the whole stack runs on a
// bench machine; RP2 builds wire real pins, the PWM servo, the ADC
// probes and the Wi-Fi radio. Everything above this package is
// build-tag free.
package platform

import (
	"plantcode-go/services/sched"
	"plantcode-go/services/wifi"
)

// Set bundles every device handle the firmware needs at boot.
type Set struct {
	Outputs sched.Outputs
	Servo   sched.Servo
	ADC     sched.ADC
	Air     sched.AirSensor
	Link    wifi.Link
	Store   wifi.CredentialStore
	Console wifi.ConsolePort
}
