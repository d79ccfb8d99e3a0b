package prop

import (
	"errors"
	"fmt"
)

// MaxPulse is the highest value the 12-bit PWM controller accepts.
const MaxPulse = 4095

// ErrPulseRange is returned for pulse-widths outside [0, MaxPulse].
var ErrPulseRange = errors.New("pulse width out of range")

// ServoCalibration holds pulse-widths for a single servo.
type ServoCalibration struct {
	Channel int `json:"channel" mapstructure:"channel"`
	Open    int `json:"open" mapstructure:"open"`
	Closed  int `json:"closed" mapstructure:"closed"`
}

// Calibration holds calibration data for all servos, keyed by servo name.
type Calibration map[ServoName]ServoCalibration

// DefaultCalibration returns the pulse-widths the head was built with.
func DefaultCalibration() Calibration {
	return Calibration{
		RightLid: {Channel: 0, Open: 200, Closed: 500},
		LeftLid:  {Channel: 1, Open: 500, Closed: 200},
		Pupil:    {Channel: 2, Open: 300, Closed: 550},
	}
}

// Pulse returns the pulse-width for a position.
func (c ServoCalibration) Pulse(p Position) int {
	if p == Open {
		return c.Open
	}
	return c.Closed
}

// Validate checks that every servo is present and all pulses are addressable.
func (c Calibration) Validate() error {
	seen := make(map[int]ServoName, len(c))
	for _, name := range AllServos() {
		sc, ok := c[name]
		if !ok {
			return fmt.Errorf("servo %s: missing calibration", name)
		}
		if other, dup := seen[sc.Channel]; dup {
			return fmt.Errorf("servo %s: channel %d already used by %s", name, sc.Channel, other)
		}
		seen[sc.Channel] = name
		if sc.Channel < 0 || sc.Channel > 15 {
			return fmt.Errorf("servo %s: channel %d not in 0-15", name, sc.Channel)
		}
		for _, p := range []int{sc.Open, sc.Closed} {
			if err := CheckPulse(p); err != nil {
				return fmt.Errorf("servo %s: %w", name, err)
			}
		}
	}
	return nil
}

// CheckPulse reports whether pulse can be written to the controller.
func CheckPulse(pulse int) error {
	if pulse < 0 || pulse > MaxPulse {
		return fmt.Errorf("%w: %d", ErrPulseRange, pulse)
	}
	return nil
}
