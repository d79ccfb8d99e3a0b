// Package proptest provides in-memory prop hardware and a virtual clock for
// tests. Every command is recorded with the virtual time it was issued at.
package proptest

import (
	"context"
	"errors"
	"time"

	"github.com/gwillem/grillmonster/pkg/prop"
)

// ErrBus is a convenient failure to inject.
var ErrBus = errors.New("proptest: bus error")

// Kind classifies a recorded command.
type Kind string

const (
	KindPulse     Kind = "pulse"
	KindFrequency Kind = "frequency"
	KindOutput    Kind = "output"
)

// Event is a single recorded hardware command.
type Event struct {
	At      time.Duration
	Kind    Kind
	Channel int
	Output  prop.Output
	Value   int
	On      bool
}

// Clock is a virtual clock. Sleep advances time instantly.
type Clock struct {
	now time.Duration

	// OnSleep, if set, runs after every sleep with the new virtual time.
	OnSleep func(now time.Duration)
}

// Sleep advances the clock by d unless ctx is already done.
func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now += d
	if c.OnSleep != nil {
		c.OnSleep(c.now)
	}
	return ctx.Err()
}

// Now returns the elapsed virtual time.
func (c *Clock) Now() time.Duration {
	return c.now
}

// Rig is a fake servo controller plus GPIO lines.
type Rig struct {
	Clock  *Clock
	Events []Event

	Frequency int
	Inputs    map[prop.Input]bool
	Reads     int

	ServosClosed bool
	PinsClosed   bool

	// Injected failures.
	PulseErr error
	WriteErr error
	ReadErr  error

	pulses  map[int]int
	outputs map[prop.Output]bool
}

// NewRig returns a rig with all inputs low and its own clock.
func NewRig() *Rig {
	return &Rig{
		Clock:   &Clock{},
		Inputs:  make(map[prop.Input]bool),
		pulses:  make(map[int]int),
		outputs: make(map[prop.Output]bool),
	}
}

// Prop wires the rig into a prop.Prop using cal, or the default calibration
// when cal is nil.
func (r *Rig) Prop(cal prop.Calibration) *prop.Prop {
	if cal == nil {
		cal = prop.DefaultCalibration()
	}
	return prop.New(servos{r}, pins{r}, cal)
}

// Pulse returns the last pulse written to a channel.
func (r *Rig) Pulse(channel int) (int, bool) {
	v, ok := r.pulses[channel]
	return v, ok
}

// Output returns the current level of an output.
func (r *Rig) Output(o prop.Output) bool {
	return r.outputs[o]
}

// AnyOutputOn reports whether any output is currently high.
func (r *Rig) AnyOutputOn() bool {
	for _, on := range r.outputs {
		if on {
			return true
		}
	}
	return false
}

// OutputEvents returns the recorded writes to o.
func (r *Rig) OutputEvents(o prop.Output) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == KindOutput && e.Output == o {
			out = append(out, e)
		}
	}
	return out
}

// PulseEvents returns the recorded pulse writes to channel.
func (r *Rig) PulseEvents(channel int) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == KindPulse && e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}

type servos struct{ r *Rig }

func (s servos) SetPulse(channel, pulse int) error {
	if s.r.PulseErr != nil {
		return s.r.PulseErr
	}
	s.r.pulses[channel] = pulse
	s.r.Events = append(s.r.Events, Event{At: s.r.Clock.Now(), Kind: KindPulse, Channel: channel, Value: pulse})
	return nil
}

func (s servos) SetFrequency(hz int) error {
	s.r.Frequency = hz
	s.r.Events = append(s.r.Events, Event{At: s.r.Clock.Now(), Kind: KindFrequency, Value: hz})
	return nil
}

func (s servos) Close() error {
	s.r.ServosClosed = true
	return nil
}

type pins struct{ r *Rig }

func (p pins) Write(o prop.Output, on bool) error {
	if p.r.WriteErr != nil {
		return p.r.WriteErr
	}
	p.r.outputs[o] = on
	p.r.Events = append(p.r.Events, Event{At: p.r.Clock.Now(), Kind: KindOutput, Output: o, On: on})
	return nil
}

func (p pins) Read(i prop.Input) (bool, error) {
	if p.r.ReadErr != nil {
		return false, p.r.ReadErr
	}
	p.r.Reads++
	return p.r.Inputs[i], nil
}

func (p pins) Close() error {
	p.r.PinsClosed = true
	return nil
}
