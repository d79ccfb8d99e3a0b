package prop

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/pca9685"
	"periph.io/x/host/v3"
)

// PeriphPins drives the digital lines through the host GPIO registry.
type PeriphPins struct {
	outs map[Output]gpio.PinIO
	ins  map[Input]gpio.PinIO
}

// OpenPins initializes the host drivers, drives every output low and
// configures the sensor lines as pulled-down inputs.
func OpenPins(cfg PinConfig) (*PeriphPins, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}

	p := &PeriphPins{
		outs: make(map[Output]gpio.PinIO, 3),
		ins:  make(map[Input]gpio.PinIO, 3),
	}
	ok := false
	defer func() {
		if !ok {
			p.Close()
		}
	}()

	for _, o := range AllOutputs() {
		pin, err := lookup(cfg.Output(o))
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", o, err)
		}
		if err := pin.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("output %s: %w", o, err)
		}
		p.outs[o] = pin
	}
	for _, i := range AllInputs() {
		pin, err := lookup(cfg.Input(i))
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", i, err)
		}
		if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("input %s: %w", i, err)
		}
		p.ins[i] = pin
	}
	ok = true
	return p, nil
}

func lookup(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, errors.New("no pin assigned")
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return pin, nil
}

// Write drives an output high (on) or low.
func (p *PeriphPins) Write(o Output, on bool) error {
	pin, ok := p.outs[o]
	if !ok {
		return fmt.Errorf("output %s not configured", o)
	}
	return pin.Out(gpio.Level(on))
}

// Read returns true when the sensor line is high.
func (p *PeriphPins) Read(i Input) (bool, error) {
	pin, ok := p.ins[i]
	if !ok {
		return false, fmt.Errorf("input %s not configured", i)
	}
	return pin.Read() == gpio.High, nil
}

// Close drives outputs low and halts every line.
func (p *PeriphPins) Close() error {
	var errs []error
	for o, pin := range p.outs {
		if err := pin.Out(gpio.Low); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o, err))
		}
		if err := pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o, err))
		}
	}
	for i, pin := range p.ins {
		if err := pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// PCA9685 drives servos through a PCA9685 16-channel PWM controller.
type PCA9685 struct {
	bus i2c.BusCloser
	dev *pca9685.Dev
}

// OpenPCA9685 opens the I2C bus (empty name selects the first one) and the
// controller at addr.
func OpenPCA9685(busName string, addr uint16) (*PCA9685, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	dev, err := pca9685.NewI2C(bus, addr)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("open pca9685 at %#x: %w", addr, err)
	}

	return &PCA9685{bus: bus, dev: dev}, nil
}

// SetPulse sets the off-tick of a channel; the pulse starts at tick 0.
func (s *PCA9685) SetPulse(channel, pulse int) error {
	return s.dev.SetPwm(channel, 0, gpio.Duty(pulse))
}

// SetFrequency sets the PWM frequency shared by all channels.
func (s *PCA9685) SetFrequency(hz int) error {
	return s.dev.SetPwmFreq(physic.Frequency(hz) * physic.Hertz)
}

// Close closes the I2C bus.
func (s *PCA9685) Close() error {
	return s.bus.Close()
}
