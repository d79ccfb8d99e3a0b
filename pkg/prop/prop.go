package prop

import (
	"errors"
	"fmt"
	"maps"
)

// Servos drives the PWM servo channels.
type Servos interface {
	SetPulse(channel, pulse int) error
	SetFrequency(hz int) error
	Close() error
}

// Pins drives and samples the digital lines.
type Pins interface {
	Write(o Output, on bool) error
	Read(i Input) (bool, error)
	Close() error
}

// Prop represents the animatronic head with its servos and digital lines.
type Prop struct {
	servos      Servos
	pins        Pins
	calibration Calibration

	pulses  map[ServoName]int
	outputs map[Output]bool
}

// New wraps already opened hardware.
func New(servos Servos, pins Pins, cal Calibration) *Prop {
	return &Prop{
		servos:      servos,
		pins:        pins,
		calibration: cal,
		pulses:      make(map[ServoName]int, len(cal)),
		outputs:     make(map[Output]bool, 3),
	}
}

// OpenHardware opens the real hardware described by cfg: a PCA9685 on I2C and
// the GPIO lines of the host.
func OpenHardware(cfg *Config) (*Prop, error) {
	pins, err := OpenPins(cfg.Pins)
	if err != nil {
		return nil, fmt.Errorf("open pins: %w", err)
	}

	servos, err := OpenPCA9685(cfg.I2CBus, cfg.I2CAddress)
	if err != nil {
		pins.Close()
		return nil, fmt.Errorf("open servo controller: %w", err)
	}

	return New(servos, pins, cfg.Calibration), nil
}

// Calibration returns the servo calibration in use.
func (p *Prop) Calibration() Calibration {
	return p.calibration
}

// Move drives a servo to its calibrated open or closed pulse-width.
func (p *Prop) Move(name ServoName, pos Position) error {
	cal, ok := p.calibration[name]
	if !ok {
		return fmt.Errorf("move %s: servo not calibrated", name)
	}
	return p.SetPulse(name, cal.Pulse(pos))
}

// SetPulse writes a raw pulse-width to a servo.
func (p *Prop) SetPulse(name ServoName, pulse int) error {
	cal, ok := p.calibration[name]
	if !ok {
		return fmt.Errorf("set pulse %s: servo not calibrated", name)
	}
	if err := CheckPulse(pulse); err != nil {
		return fmt.Errorf("set pulse %s: %w", name, err)
	}
	if err := p.servos.SetPulse(cal.Channel, pulse); err != nil {
		return fmt.Errorf("set pulse %s: %w", name, err)
	}
	p.pulses[name] = pulse
	return nil
}

// SetFrequency sets the PWM frequency of the servo controller.
func (p *Prop) SetFrequency(hz int) error {
	if err := p.servos.SetFrequency(hz); err != nil {
		return fmt.Errorf("set pwm frequency: %w", err)
	}
	return nil
}

// Set drives a digital output.
func (p *Prop) Set(o Output, on bool) error {
	if err := p.pins.Write(o, on); err != nil {
		return fmt.Errorf("write %s: %w", o, err)
	}
	p.outputs[o] = on
	return nil
}

// Read samples a sensor line.
func (p *Prop) Read(i Input) (bool, error) {
	v, err := p.pins.Read(i)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", i, err)
	}
	return v, nil
}

// AllOff drives every output low. A failing line does not stop the others.
func (p *Prop) AllOff() error {
	var errs []error
	for _, o := range AllOutputs() {
		if err := p.Set(o, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pulses returns the last pulse-width written to each servo.
func (p *Prop) Pulses() map[ServoName]int {
	return maps.Clone(p.pulses)
}

// Outputs returns the last level written to each output.
func (p *Prop) Outputs() map[Output]bool {
	return maps.Clone(p.outputs)
}

// Close drives outputs low and releases the lines and the servo bus. It keeps
// going after failures and returns all of them.
func (p *Prop) Close() error {
	var errs []error
	if err := p.AllOff(); err != nil {
		errs = append(errs, err)
	}
	if err := p.pins.Close(); err != nil {
		errs = append(errs, fmt.Errorf("release pins: %w", err))
	}
	if err := p.servos.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close servo bus: %w", err))
	}
	return errors.Join(errs...)
}
