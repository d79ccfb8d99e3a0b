package show

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gwillem/grillmonster/pkg/audio"
	"github.com/gwillem/grillmonster/pkg/prop"
	"github.com/gwillem/grillmonster/pkg/sensor"
)

// Status is a snapshot of the controller.
type Status struct {
	Phase        Phase
	Step         string
	Inputs       sensor.InputState
	Pulses       map[prop.ServoName]int
	Outputs      map[prop.Output]bool
	Activations  int
	ActivationID string
	Timestamp    time.Time
}

// Controller owns the prop and runs the trigger loop.
type Controller struct {
	prop    *prop.Prop
	player  audio.Player
	clock   Clock
	logger  *log.Logger
	poller  *sensor.Poller
	seq     *Sequencer
	cfg     Config
	stateCh chan Status

	phase        Phase
	step         string
	activations  int
	activationID string
}

// Config holds configuration for the controller.
type Config struct {
	Prop    *prop.Prop
	Library *audio.Library
	Player  audio.Player
	Clock   Clock
	Logger  *log.Logger

	Category       string
	PWMFrequency   int
	Volume         int
	PollInterval   time.Duration
	Cooldown       time.Duration
	SelfTestWarmup time.Duration
	SkipSelfTest   bool

	// SetVolume defaults to audio.SetVolume.
	SetVolume func(ctx context.Context, percent int) error
}

// NewController creates a new controller. It does not touch the hardware.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Prop == nil {
		return nil, errors.New("controller needs a prop")
	}
	if cfg.Library == nil {
		return nil, errors.New("controller needs an audio library")
	}
	if cfg.Player == nil {
		cfg.Player = audio.NoopPlayer{}
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.SetVolume == nil {
		cfg.SetVolume = audio.SetVolume
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if cfg.PWMFrequency <= 0 {
		cfg.PWMFrequency = 60
	}

	c := &Controller{
		prop:    cfg.Prop,
		player:  cfg.Player,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		poller:  sensor.NewPoller(cfg.Prop, cfg.Logger.WithPrefix("sensor")),
		seq:     NewSequencer(cfg.Prop, cfg.Clock, cfg.Library, cfg.Player, cfg.Logger.WithPrefix("show")),
		cfg:     cfg,
		stateCh: make(chan Status, 1),
		phase:   PhaseIdle,
	}
	c.seq.observe = c.observe
	return c, nil
}

// States returns a channel that receives status updates.
func (c *Controller) States() <-chan Status {
	return c.stateCh
}

// Activations returns how many times the choreography has started.
func (c *Controller) Activations() int {
	return c.activations
}

// Start prepares the prop, runs the self-test and then polls the sensors until
// ctx is cancelled or the hardware fails. It always returns a non-nil error.
// Call Close afterwards to release the hardware.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.cfg.SetVolume(ctx, c.cfg.Volume); err != nil {
		c.logger.Warn("set volume", "percent", c.cfg.Volume, "err", err)
	}
	if err := c.prop.SetFrequency(c.cfg.PWMFrequency); err != nil {
		return err
	}

	if !c.cfg.SkipSelfTest {
		if err := c.seq.SelfTest(ctx, c.cfg.SelfTestWarmup); err != nil {
			return fmt.Errorf("self-test: %w", err)
		}
	}

	c.logger.Info("armed", "category", c.cfg.Category, "poll", c.cfg.PollInterval)
	c.setPhase(PhaseIdle, "")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		trig, ok, err := c.poller.Poll()
		if err != nil {
			return err
		}
		if !ok {
			c.sendState()
			if err := c.clock.Sleep(ctx, c.cfg.PollInterval); err != nil {
				return err
			}
			continue
		}

		if err := c.Activate(ctx, trig); err != nil {
			return err
		}
	}
}

// Activate runs the choreography once for trig.
func (c *Controller) Activate(ctx context.Context, trig sensor.Trigger) error {
	c.activations++
	c.activationID = uuid.NewString()
	logger := c.logger.With("activation", c.activationID)

	logger.Info("triggered", "by", trig.String(), "count", c.activations)
	start := time.Now()
	if err := c.seq.Run(ctx, c.cfg.Category); err != nil {
		return fmt.Errorf("activation %s: %w", c.activationID, err)
	}
	logger.Info("back at rest", "took", time.Since(start).Round(time.Millisecond))
	c.setPhase(PhaseIdle, "")

	if c.cfg.Cooldown > 0 {
		if err := c.clock.Sleep(ctx, c.cfg.Cooldown); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the audio, resets the servo controller and releases every line.
// It is best effort: all failures are returned together.
func (c *Controller) Close() error {
	var errs []error
	if err := c.player.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop audio: %w", err))
	}
	if err := c.prop.SetFrequency(c.cfg.PWMFrequency); err != nil {
		errs = append(errs, err)
	}
	if err := c.prop.Close(); err != nil {
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if err != nil {
		c.logger.Warn("cleanup", "err", err)
	} else {
		c.logger.Info("prop released")
	}
	return err
}

func (c *Controller) observe(st Step) {
	c.setPhase(st.Phase, st.Name)
}

func (c *Controller) setPhase(phase Phase, step string) {
	c.phase = phase
	c.step = step
	c.sendState()
}

func (c *Controller) status() Status {
	return Status{
		Phase:        c.phase,
		Step:         c.step,
		Inputs:       c.poller.State(),
		Pulses:       c.prop.Pulses(),
		Outputs:      c.prop.Outputs(),
		Activations:  c.activations,
		ActivationID: c.activationID,
		Timestamp:    time.Now(),
	}
}

func (c *Controller) sendState() {
	s := c.status()
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		select {
		case c.stateCh <- s:
		default:
		}
	}
}
