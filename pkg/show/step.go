package show

import (
	"context"
	"time"

	"github.com/gwillem/grillmonster/pkg/prop"
)

// Phase names a section of the choreography.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSelfTest  Phase = "self-test"
	PhaseEyesOpen  Phase = "eyes-open"
	PhaseAudio     Phase = "audio"
	PhaseFogClosed Phase = "fog-mouth-closed"
	PhaseFogOpen   Phase = "fog-mouth-open"
	PhaseChomp     Phase = "chomp"
	PhaseCloseout  Phase = "closeout"
)

// ActivationPhases lists the phases of one activation in the order they run.
func ActivationPhases() []Phase {
	return []Phase{PhaseEyesOpen, PhaseAudio, PhaseFogClosed, PhaseFogOpen, PhaseChomp, PhaseCloseout}
}

// Step is one timed command: run Do (if any), then wait.
type Step struct {
	Phase Phase
	Name  string
	Do    func() error
	Wait  time.Duration
}

// Clock provides the blocking sleeps the choreography is timed with.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on the wall clock. Sleep returns early with ctx.Err() when
// ctx is done.
type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func move(p *prop.Prop, phase Phase, servo prop.ServoName, pos prop.Position, wait time.Duration) Step {
	return Step{
		Phase: phase,
		Name:  string(servo) + " " + pos.String(),
		Do:    func() error { return p.Move(servo, pos) },
		Wait:  wait,
	}
}

func set(p *prop.Prop, phase Phase, o prop.Output, on bool, wait time.Duration) Step {
	name := string(o) + " off"
	if on {
		name = string(o) + " on"
	}
	return Step{
		Phase: phase,
		Name:  name,
		Do:    func() error { return p.Set(o, on) },
		Wait:  wait,
	}
}

func pause(phase Phase, wait time.Duration) Step {
	return Step{Phase: phase, Name: "pause", Wait: wait}
}

// Duration sums the waits of steps.
func Duration(steps []Step) time.Duration {
	var d time.Duration
	for _, s := range steps {
		d += s.Wait
	}
	return d
}
