package main

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jessevdk/go-flags"

	"github.com/gwillem/grillmonster/pkg/audio"
	"github.com/gwillem/grillmonster/pkg/prop"
)

type Options struct {
	Config  string `short:"c" long:"config" default:"grillmonster.json" description:"Configuration file"`
	Verbose bool   `short:"v" long:"verbose" description:"Log every choreography phase"`

	Run       RunCommand       `command:"run" description:"Self-test, then wait for a victim and scare them"`
	SelfTest  SelfTestCommand  `command:"selftest" description:"Cycle every actuator once to check the wiring"`
	Calibrate CalibrateCommand `command:"calibrate" description:"Find the open and closed pulse-widths of each servo"`
	Inputs    InputsCommand    `command:"inputs" description:"Log sensor changes until interrupted"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "grillmonster - animatronic prop controller"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// loadConfig reads --config. The default file is optional.
func loadConfig() (*prop.Config, error) {
	if opts.Config == prop.DefaultConfigFile {
		return prop.LoadConfig()
	}
	return prop.LoadConfigFrom(opts.Config)
}

func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newPlayer falls back to silence when the host has no audio command.
func newPlayer(logger *log.Logger) audio.Player {
	player, err := audio.NewCommandPlayer()
	if err != nil {
		logger.Warn("audio disabled", "err", err)
		return audio.NoopPlayer{}
	}
	return player
}
