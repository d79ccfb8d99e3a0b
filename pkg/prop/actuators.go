// Package prop provides abstractions for driving the animatronic prop hardware.
package prop

// ServoName identifies a servo in the head.
type ServoName string

// Servo names for the grill monster head.
const (
	RightLid ServoName = "right_lid"
	LeftLid  ServoName = "left_lid"
	Pupil    ServoName = "pupil"
)

// AllServos returns all servo names in order (matching PWM channels 0-2).
func AllServos() []ServoName {
	return []ServoName{
		RightLid,
		LeftLid,
		Pupil,
	}
}

// Output identifies a digital output line.
type Output string

const (
	Solenoid Output = "solenoid"
	Light    Output = "light"
	Fog      Output = "fog"
)

// AllOutputs returns all output lines in a stable order.
func AllOutputs() []Output {
	return []Output{Solenoid, Light, Fog}
}

// Input identifies a digital sensor line.
type Input string

const (
	Plate  Input = "plate"
	Button Input = "button"
	Motion Input = "motion"
)

// AllInputs returns all sensor lines in the order they are sampled.
func AllInputs() []Input {
	return []Input{Plate, Button, Motion}
}

// Position is a servo target.
type Position int

const (
	Closed Position = iota
	Open
)

func (p Position) String() string {
	if p == Open {
		return "open"
	}
	return "closed"
}
