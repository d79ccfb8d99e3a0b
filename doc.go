// Package grillmonster drives an animatronic "grill monster" prop on a
// Raspberry Pi.
//
// A pressure plate, a button and a PIR sensor arm the prop. When any of them
// fires, the head opens its eyes, plays a random growl, puffs fog and chomps
// its air-driven jaw before settling back to rest.
//
// # Installation
//
//	go install github.com/gwillem/grillmonster/cmd/grillmonster@latest
//
// # Usage
//
// Check the wiring and find the servo end positions first:
//
//	grillmonster selftest
//	grillmonster calibrate
//
// Then arm the prop:
//
//	grillmonster run
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/grillmonster: CLI with run, selftest, calibrate and inputs commands
//   - pkg/prop: Servo and GPIO hardware, calibration, and configuration
//   - pkg/sensor: Trigger input polling
//   - pkg/show: Choreography sequencer, self-test and control loop
//   - pkg/audio: Clip discovery, selection and playback
package grillmonster
