package audio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"
)

// Player starts clip playback without waiting for it to finish.
type Player interface {
	Play(path string) error
	Stop() error
}

// NoopPlayer is a Player that does nothing.
type NoopPlayer struct{}

func (NoopPlayer) Play(string) error { return nil }
func (NoopPlayer) Stop() error       { return nil }

// CommandPlayer plays clips through an OS-native audio command.
type CommandPlayer struct {
	command string
	args    []string

	mu      sync.Mutex
	running map[*exec.Cmd]struct{}
}

// NewCommandPlayer detects the platform's audio command. It returns an error
// when none is installed.
func NewCommandPlayer() (*CommandPlayer, error) {
	cmd, args := detectAudioCommand()
	if cmd == "" {
		return nil, fmt.Errorf("no audio player found for %s", runtime.GOOS)
	}
	return newCommandPlayer(cmd, args...), nil
}

func newCommandPlayer(command string, args ...string) *CommandPlayer {
	return &CommandPlayer{
		command: command,
		args:    args,
		running: make(map[*exec.Cmd]struct{}),
	}
}

// detectAudioCommand returns the first available player and its leading args.
func detectAudioCommand() (string, []string) {
	var candidates [][]string
	switch runtime.GOOS {
	case "darwin":
		candidates = [][]string{{"afplay"}}
	case "linux":
		candidates = [][]string{{"aplay", "-q"}, {"paplay"}, {"pw-play"}}
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return c[0], c[1:]
		}
	}
	return "", nil
}

// Play starts playing path and returns as soon as the player process runs.
func (p *CommandPlayer) Play(path string) error {
	args := append(append([]string{}, p.args...), path)
	cmd := exec.Command(p.command, args...) //nolint:gosec // command detected at construction
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.command, err)
	}

	p.mu.Lock()
	p.running[cmd] = struct{}{}
	p.mu.Unlock()

	go func() {
		_ = cmd.Wait()
		p.mu.Lock()
		delete(p.running, cmd)
		p.mu.Unlock()
	}()
	return nil
}

// Stop kills every clip still playing.
func (p *CommandPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for cmd := range p.running {
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Playing returns the number of clips still playing.
func (p *CommandPlayer) Playing() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.running)
}
