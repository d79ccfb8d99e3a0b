// Package show runs the prop: the trigger loop, the choreography and the
// startup self-test.
package show

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/gwillem/grillmonster/pkg/audio"
	"github.com/gwillem/grillmonster/pkg/prop"
)

// Sequencer runs the fixed choreography of one activation.
type Sequencer struct {
	prop    *prop.Prop
	clock   Clock
	library *audio.Library
	player  audio.Player
	logger  *log.Logger
	chomps  []ChompStep

	// observe, if set, is called before each step runs.
	observe func(Step)
}

// NewSequencer returns a sequencer using the default chomp rhythm.
func NewSequencer(p *prop.Prop, clock Clock, lib *audio.Library, player audio.Player, logger *log.Logger) *Sequencer {
	return &Sequencer{
		prop:    p,
		clock:   clock,
		library: lib,
		player:  player,
		logger:  logger,
		chomps:  DefaultChomps(),
	}
}

// Run plays the whole choreography with a clip from category and returns once
// the prop is back at rest. Actuator failures abort the run; so does ctx being
// cancelled, which only happens when the process is shutting down.
func (s *Sequencer) Run(ctx context.Context, category string) error {
	if err := s.player.Stop(); err != nil {
		s.logger.Warn("stop previous clip", "err", err)
	}
	return s.execute(ctx, s.Steps(category))
}

// Steps returns the full choreography.
func (s *Sequencer) Steps(category string) []Step {
	var steps []Step
	steps = append(steps, s.EyesOpen()...)
	steps = append(steps, s.audio(category)...)
	steps = append(steps, s.fogMouthClosed()...)
	steps = append(steps, s.fogMouthOpen()...)
	steps = append(steps, s.chomp()...)
	steps = append(steps, s.Closeout()...)
	return steps
}

// EyesOpen lights the eyes and opens lids then pupil.
func (s *Sequencer) EyesOpen() []Step {
	p := s.prop
	return []Step{
		set(p, PhaseEyesOpen, prop.Light, true, ms(300)),
		move(p, PhaseEyesOpen, prop.RightLid, prop.Open, ms(200)),
		move(p, PhaseEyesOpen, prop.LeftLid, prop.Open, ms(700)),
		move(p, PhaseEyesOpen, prop.Pupil, prop.Open, ms(400)),
	}
}

// EyesClose darkens the eyes and closes lids then pupil.
func (s *Sequencer) EyesClose() []Step {
	p := s.prop
	return []Step{
		set(p, PhaseCloseout, prop.Light, false, ms(300)),
		move(p, PhaseCloseout, prop.RightLid, prop.Closed, ms(500)),
		move(p, PhaseCloseout, prop.LeftLid, prop.Closed, ms(500)),
		move(p, PhaseCloseout, prop.Pupil, prop.Closed, 0),
	}
}

// Closeout forces every output off and closes the eyes.
func (s *Sequencer) Closeout() []Step {
	p := s.prop
	steps := []Step{
		set(p, PhaseCloseout, prop.Fog, false, 0),
		set(p, PhaseCloseout, prop.Solenoid, false, 0),
		set(p, PhaseCloseout, prop.Light, false, 0),
	}
	return append(steps, s.EyesClose()...)
}

// audio starts a random clip. Missing clips only get logged.
func (s *Sequencer) audio(category string) []Step {
	play := func() error {
		path, err := s.library.Pick(category)
		if err != nil {
			s.logger.Warn("no clip, continuing silently", "category", category, "err", err)
			return nil
		}
		if err := s.player.Play(path); err != nil {
			s.logger.Warn("play clip, continuing silently", "clip", path, "err", err)
			return nil
		}
		s.logger.Info("playing", "clip", filepath.Base(path))
		return nil
	}
	return []Step{{Phase: PhaseAudio, Name: "play " + category, Do: play, Wait: ms(300)}}
}

func (s *Sequencer) fogMouthClosed() []Step {
	p := s.prop
	return []Step{
		set(p, PhaseFogClosed, prop.Fog, true, ms(1500)),
		set(p, PhaseFogClosed, prop.Fog, false, ms(1000)),
		set(p, PhaseFogClosed, prop.Fog, true, ms(1500)),
		set(p, PhaseFogClosed, prop.Fog, false, ms(300)),
	}
}

// fogMouthOpen leaves the fog running into the chomp; Closeout turns it off.
func (s *Sequencer) fogMouthOpen() []Step {
	return []Step{set(s.prop, PhaseFogOpen, prop.Fog, true, ms(200))}
}

func (s *Sequencer) chomp() []Step {
	p := s.prop
	steps := make([]Step, 0, 2*len(s.chomps))
	for i, c := range s.chomps {
		open := set(p, PhaseChomp, prop.Solenoid, true, c.Open)
		open.Name = "chomp " + strconv.Itoa(i+1) + " open"
		closed := set(p, PhaseChomp, prop.Solenoid, false, c.Close)
		closed.Name = "chomp " + strconv.Itoa(i+1) + " close"
		steps = append(steps, open, closed)
	}
	return steps
}

func (s *Sequencer) execute(ctx context.Context, steps []Step) error {
	var phase Phase
	for _, st := range steps {
		if st.Phase != phase {
			phase = st.Phase
			s.logger.Debug("phase", "name", phase)
		}
		if s.observe != nil {
			s.observe(st)
		}
		if st.Do != nil {
			if err := st.Do(); err != nil {
				return fmt.Errorf("%s: %s: %w", st.Phase, st.Name, err)
			}
		}
		if st.Wait > 0 {
			if err := s.clock.Sleep(ctx, st.Wait); err != nil {
				return err
			}
		}
	}
	return nil
}
