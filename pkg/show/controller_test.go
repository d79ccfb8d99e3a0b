package show

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/grillmonster/pkg/prop"
	"github.com/gwillem/grillmonster/pkg/prop/proptest"
)

type controllerHarness struct {
	rig     *proptest.Rig
	player  *mockPlayer
	ctrl    *Controller
	logs    *bytes.Buffer
	volumes []int
}

func newControllerHarness(t *testing.T, mutate func(*Config)) *controllerHarness {
	t.Helper()
	h := &controllerHarness{
		rig:    proptest.NewRig(),
		player: newMockPlayer(),
		logs:   &bytes.Buffer{},
	}
	cfg := Config{
		Prop:         h.rig.Prop(nil),
		Library:      newLibrary(t, "growl.wav", "roar.wav"),
		Player:       h.player,
		Clock:        h.rig.Clock,
		Logger:       log.New(h.logs),
		Category:     "SFX",
		PWMFrequency: 60,
		Volume:       100,
		PollInterval: 100 * time.Millisecond,
		SkipSelfTest: true,
		SetVolume: func(_ context.Context, percent int) error {
			h.volumes = append(h.volumes, percent)
			return nil
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	ctrl, err := NewController(cfg)
	require.NoError(t, err)
	h.ctrl = ctrl
	return h
}

// lightOnTimes returns when each activation (or self-test) lit the eyes.
func (h *controllerHarness) lightOnTimes() []time.Duration {
	var at []time.Duration
	for _, e := range h.rig.OutputEvents(prop.Light) {
		if e.On {
			at = append(at, e.At)
		}
	}
	return at
}

func TestController_EachInputTriggersOneActivation(t *testing.T) {
	for _, in := range prop.AllInputs() {
		t.Run(string(in), func(t *testing.T) {
			h := newControllerHarness(t, nil)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			h.rig.Clock.OnSleep = func(now time.Duration) {
				switch {
				case h.ctrl.Activations() == 0 && now >= time.Second:
					h.rig.Inputs[in] = true
				case h.ctrl.Activations() > 0:
					// Released as soon as the choreography starts.
					h.rig.Inputs[in] = false
					if now >= 40*time.Second {
						cancel()
					}
				}
			}

			err := h.ctrl.Start(ctx)
			require.ErrorIs(t, err, context.Canceled)

			assert.Equal(t, 1, h.ctrl.Activations())
			assert.Equal(t, []time.Duration{time.Second}, h.lightOnTimes())
			requireAtRest(t, h.rig)
			assert.Contains(t, h.logs.String(), "triggered")
			assert.Contains(t, h.logs.String(), "back at rest")
		})
	}
}

func TestController_StartPreparesHardware(t *testing.T) {
	h := newControllerHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	h.rig.Clock.OnSleep = func(now time.Duration) {
		if now >= time.Second {
			cancel()
		}
	}

	require.ErrorIs(t, h.ctrl.Start(ctx), context.Canceled)

	assert.Equal(t, []int{100}, h.volumes)
	assert.Equal(t, 60, h.rig.Frequency)
	assert.Equal(t, 0, h.ctrl.Activations())
	assert.Empty(t, h.lightOnTimes())
}

func TestController_VolumeFailureIsNotFatal(t *testing.T) {
	h := newControllerHarness(t, func(c *Config) {
		c.SetVolume = func(context.Context, int) error { return proptest.ErrBus }
	})
	ctx, cancel := context.WithCancel(context.Background())
	h.rig.Clock.OnSleep = func(time.Duration) { cancel() }

	require.ErrorIs(t, h.ctrl.Start(ctx), context.Canceled)
	assert.Contains(t, h.logs.String(), "set volume")
}

func TestController_SelfTestRunsBeforeArming(t *testing.T) {
	h := newControllerHarness(t, func(c *Config) {
		c.SkipSelfTest = false
		c.SelfTestWarmup = 10 * time.Second
	})
	ctx, cancel := context.WithCancel(context.Background())
	h.rig.Clock.OnSleep = func(now time.Duration) {
		if now >= 30*time.Second {
			cancel()
		}
	}

	require.ErrorIs(t, h.ctrl.Start(ctx), context.Canceled)

	right := h.rig.PulseEvents(0)
	require.Len(t, right, 2)
	assert.Equal(t, 10*time.Second, right[0].At)
	assert.Equal(t, 0, h.ctrl.Activations())
	requireAtRest(t, h.rig)
}

func TestController_HeldSensorRetriggersImmediately(t *testing.T) {
	h := newControllerHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	h.rig.Inputs[prop.Plate] = true
	h.rig.Clock.OnSleep = func(time.Duration) {
		if h.ctrl.Activations() == 3 {
			cancel()
		}
	}

	require.ErrorIs(t, h.ctrl.Start(ctx), context.Canceled)

	at := h.lightOnTimes()
	require.Len(t, at, 3)
	assert.Equal(t, 22200*time.Millisecond, at[1]-at[0], "no gap between runs")
	assert.Equal(t, 22200*time.Millisecond, at[2]-at[1])
}

func TestController_CooldownDelaysRetrigger(t *testing.T) {
	h := newControllerHarness(t, func(c *Config) {
		c.Cooldown = 5 * time.Second
	})
	ctx, cancel := context.WithCancel(context.Background())
	h.rig.Inputs[prop.Button] = true
	h.rig.Clock.OnSleep = func(time.Duration) {
		if h.ctrl.Activations() == 2 {
			cancel()
		}
	}

	require.ErrorIs(t, h.ctrl.Start(ctx), context.Canceled)

	at := h.lightOnTimes()
	require.Len(t, at, 2)
	assert.Equal(t, 27200*time.Millisecond, at[1]-at[0])
}

func TestController_InterruptMidChompCleansUp(t *testing.T) {
	h := newControllerHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	h.rig.Inputs[prop.Motion] = true
	h.rig.Clock.OnSleep = func(time.Duration) {
		chomps := 0
		for _, e := range h.rig.OutputEvents(prop.Solenoid) {
			if e.On {
				chomps++
			}
		}
		if chomps == 3 {
			cancel()
		}
	}

	err := h.ctrl.Start(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, h.rig.Output(prop.Solenoid), "interrupted with the jaw open")
	require.True(t, h.rig.Output(prop.Fog))

	h.rig.Frequency = 0
	require.NoError(t, h.ctrl.Close())

	assert.False(t, h.rig.AnyOutputOn())
	assert.True(t, h.rig.PinsClosed)
	assert.True(t, h.rig.ServosClosed)
	assert.Equal(t, 60, h.rig.Frequency)
	h.player.AssertCalled(t, "Stop")
	assert.Contains(t, h.logs.String(), "prop released")
}

func TestController_ReadFailureIsFatal(t *testing.T) {
	h := newControllerHarness(t, nil)
	h.rig.ReadErr = proptest.ErrBus

	err := h.ctrl.Start(context.Background())
	require.ErrorIs(t, err, proptest.ErrBus)
}

func TestController_ActuatorFailureIsFatal(t *testing.T) {
	h := newControllerHarness(t, nil)
	h.rig.Inputs[prop.Button] = true
	h.rig.PulseErr = proptest.ErrBus

	err := h.ctrl.Start(context.Background())
	require.ErrorIs(t, err, proptest.ErrBus)
	assert.Equal(t, 1, h.ctrl.Activations())
}

func TestController_PublishesStatus(t *testing.T) {
	h := newControllerHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	h.rig.Clock.OnSleep = func(now time.Duration) {
		if h.ctrl.Activations() == 0 {
			h.rig.Inputs[prop.Motion] = true
			return
		}
		h.rig.Inputs[prop.Motion] = false
		if now >= 30*time.Second {
			cancel()
		}
	}

	require.ErrorIs(t, h.ctrl.Start(ctx), context.Canceled)

	select {
	case s := <-h.ctrl.States():
		assert.Equal(t, PhaseIdle, s.Phase)
		assert.Equal(t, 1, s.Activations)
		assert.NotEmpty(t, s.ActivationID)
		assert.Equal(t, 500, s.Pulses[prop.RightLid])
		assert.False(t, s.Outputs[prop.Fog])
	default:
		t.Fatal("no status published")
	}
}

func TestNewController_RequiresProp(t *testing.T) {
	_, err := NewController(Config{})
	require.Error(t, err)
}
