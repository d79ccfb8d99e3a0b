package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gwillem/grillmonster/pkg/audio"
	"github.com/gwillem/grillmonster/pkg/prop"
	"github.com/gwillem/grillmonster/pkg/show"
)

type SelfTestCommand struct {
	NoWarmup bool `long:"no-warmup" description:"Start cycling immediately instead of waiting for the hardware to power up"`
}

func (c *SelfTestCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(os.Stderr)

	p, err := prop.OpenHardware(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("cleanup", "err", err)
		}
	}()

	if err := p.SetFrequency(cfg.PWMFrequency); err != nil {
		return err
	}

	warmup := cfg.SelfTestWarmup
	if c.NoWarmup {
		warmup = 0
	}

	seq := show.NewSequencer(p, show.RealClock{}, audio.NewLibrary(cfg.AudioRoot), audio.NoopPlayer{}, logger)
	err = seq.SelfTest(ctx, warmup)
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted, cleaning up")
		return nil
	}
	return err
}
