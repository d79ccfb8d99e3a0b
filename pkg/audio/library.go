// Package audio finds, picks and plays the prop's sound clips.
package audio

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the only file extension considered playable.
const Extension = ".wav"

// ErrNoClips is returned when a category has no playable clips.
var ErrNoClips = errors.New("no playable clips")

// Library is a directory of clip categories, one sub-directory per category.
type Library struct {
	root string
	intN func(n int) int
}

// NewLibrary returns a library rooted at root that picks clips with math/rand/v2.
func NewLibrary(root string) *Library {
	return &Library{root: root, intN: rand.IntN}
}

// WithRand replaces the random source used by Pick. intN must return a value
// in [0, n).
func (l *Library) WithRand(intN func(n int) int) *Library {
	l.intN = intN
	return l
}

// Dir returns the directory holding a category's clips.
func (l *Library) Dir(category string) string {
	return filepath.Join(l.root, category)
}

// Discover lists the playable clip file names of a category, sorted.
func (l *Library) Discover(category string) ([]string, error) {
	entries, err := os.ReadDir(l.Dir(category))
	if err != nil {
		return nil, fmt.Errorf("list %s clips: %w", category, err)
	}

	var clips []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		clips = append(clips, e.Name())
	}
	return clips, nil
}

// Pick selects one clip of a category uniformly at random and returns its
// path. The file is checked again after selection since the directory is
// read at play time and may change underneath us.
func (l *Library) Pick(category string) (string, error) {
	clips, err := l.Discover(category)
	if err != nil {
		return "", err
	}
	if len(clips) == 0 {
		return "", fmt.Errorf("%s: %w", l.Dir(category), ErrNoClips)
	}

	path := filepath.Join(l.Dir(category), clips[l.intN(len(clips))])
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("selected clip: %w", err)
	}
	return path, nil
}
