package show

import (
	"context"
	"time"

	"github.com/gwillem/grillmonster/pkg/prop"
)

// SelfTestSteps cycles every servo and output once with one second pauses,
// after waiting warmup for the hardware to power up.
func (s *Sequencer) SelfTestSteps(warmup time.Duration) []Step {
	p := s.prop
	steps := []Step{pause(PhaseSelfTest, warmup)}
	for _, name := range prop.AllServos() {
		steps = append(steps,
			move(p, PhaseSelfTest, name, prop.Open, time.Second),
			move(p, PhaseSelfTest, name, prop.Closed, time.Second),
		)
	}
	for _, o := range []prop.Output{prop.Light, prop.Solenoid, prop.Fog} {
		steps = append(steps,
			set(p, PhaseSelfTest, o, true, time.Second),
			set(p, PhaseSelfTest, o, false, time.Second),
		)
	}
	return append(steps, pause(PhaseSelfTest, ms(300)))
}

// SelfTest lets an operator confirm the wiring before the prop is armed.
func (s *Sequencer) SelfTest(ctx context.Context, warmup time.Duration) error {
	s.logger.Info("self-test", "warmup", warmup)
	if err := s.execute(ctx, s.SelfTestSteps(warmup)); err != nil {
		return err
	}
	s.logger.Info("self-test done")
	return nil
}
