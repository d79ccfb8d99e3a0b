// Package sensor polls the prop's trigger inputs.
package sensor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gwillem/grillmonster/pkg/prop"
)

// Reader samples a single sensor line. *prop.Prop satisfies it.
type Reader interface {
	Read(i prop.Input) (bool, error)
}

// InputState is the last observed level of each sensor.
type InputState struct {
	Plate  bool
	Button bool
	Motion bool
}

// Active reports whether any sensor is high.
func (s InputState) Active() bool {
	return s.Plate || s.Button || s.Motion
}

// Sources lists the inputs that are high, in sampling order.
func (s InputState) Sources() []prop.Input {
	var in []prop.Input
	if s.Plate {
		in = append(in, prop.Plate)
	}
	if s.Button {
		in = append(in, prop.Button)
	}
	if s.Motion {
		in = append(in, prop.Motion)
	}
	return in
}

func (s InputState) String() string {
	return fmt.Sprintf("plate=%t button=%t motion=%t", s.Plate, s.Button, s.Motion)
}

// Trigger is returned by Poll when any sensor reads active.
type Trigger struct {
	State   InputState
	Sources []prop.Input
}

func (t Trigger) String() string {
	names := make([]string, len(t.Sources))
	for i, s := range t.Sources {
		names[i] = string(s)
	}
	return strings.Join(names, "+")
}

// Poller samples the plate, button and motion sensors.
type Poller struct {
	reader Reader
	logger *log.Logger
	last   InputState
}

// NewPoller returns a poller that assumes every input starts low.
func NewPoller(r Reader, logger *log.Logger) *Poller {
	return &Poller{reader: r, logger: logger}
}

// State returns the last logged input state.
func (p *Poller) State() InputState {
	return p.last
}

// Poll samples all inputs once, logging any change from the previous sample,
// then re-reads them and reports a trigger if any is high. Triggers are level
// based: a held sensor triggers on every call.
func (p *Poller) Poll() (Trigger, bool, error) {
	cur, err := p.sample()
	if err != nil {
		return Trigger{}, false, err
	}
	if cur != p.last {
		p.logger.Info("input state changed", "from", p.last, "to", cur)
		p.last = cur
	}

	now, err := p.sample()
	if err != nil {
		return Trigger{}, false, err
	}
	if !now.Active() {
		return Trigger{}, false, nil
	}
	return Trigger{State: now, Sources: now.Sources()}, true, nil
}

func (p *Poller) sample() (InputState, error) {
	var s InputState
	for _, in := range []struct {
		input prop.Input
		dst   *bool
	}{
		{prop.Plate, &s.Plate},
		{prop.Button, &s.Button},
		{prop.Motion, &s.Motion},
	} {
		v, err := p.reader.Read(in.input)
		if err != nil {
			return InputState{}, fmt.Errorf("poll: %w", err)
		}
		*in.dst = v
	}
	return s, nil
}
