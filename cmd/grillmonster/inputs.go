package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gwillem/grillmonster/pkg/prop"
	"github.com/gwillem/grillmonster/pkg/sensor"
	"github.com/gwillem/grillmonster/pkg/show"
)

type InputsCommand struct{}

func (c *InputsCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(os.Stderr)

	pins, err := prop.OpenPins(cfg.Pins)
	if err != nil {
		return err
	}
	defer pins.Close()

	poller := sensor.NewPoller(pins, logger)
	logger.Info("watching inputs, press Ctrl-C to quit",
		"plate", cfg.Pins.Plate, "button", cfg.Pins.Button, "motion", cfg.Pins.Motion)

	var clock show.RealClock
	for {
		if _, _, err := poller.Poll(); err != nil {
			return err
		}
		if err := clock.Sleep(ctx, cfg.PollInterval); err != nil {
			return nil
		}
	}
}
