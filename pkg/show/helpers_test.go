package show

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/grillmonster/pkg/audio"
	"github.com/gwillem/grillmonster/pkg/prop/proptest"
)

type mockPlayer struct {
	mock.Mock
}

func (m *mockPlayer) Play(path string) error {
	return m.Called(path).Error(0)
}

func (m *mockPlayer) Stop() error {
	return m.Called().Error(0)
}

func newMockPlayer() *mockPlayer {
	m := &mockPlayer{}
	m.On("Stop").Return(nil)
	m.On("Play", mock.Anything).Return(nil)
	return m
}

// newLibrary creates an SFX category holding clips.
func newLibrary(t *testing.T, clips ...string) *audio.Library {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "SFX")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, c := range clips {
		require.NoError(t, os.WriteFile(filepath.Join(dir, c), []byte("RIFF"), 0o644))
	}
	return audio.NewLibrary(root)
}

type harness struct {
	rig    *proptest.Rig
	player *mockPlayer
	seq    *Sequencer
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, clips ...string) *harness {
	t.Helper()
	h := &harness{
		rig:    proptest.NewRig(),
		player: newMockPlayer(),
		logs:   &bytes.Buffer{},
	}
	logger := log.New(h.logs)
	logger.SetLevel(log.DebugLevel)
	h.seq = NewSequencer(h.rig.Prop(nil), h.rig.Clock, newLibrary(t, clips...), h.player, logger)
	return h
}

// restPulses is where every servo sits after Eyes-Close.
var restPulses = map[int]int{0: 500, 1: 200, 2: 550}

func requireAtRest(t *testing.T, rig *proptest.Rig) {
	t.Helper()
	require.False(t, rig.AnyOutputOn(), "all outputs should be off")
	for ch, want := range restPulses {
		got, ok := rig.Pulse(ch)
		require.True(t, ok, "channel %d never written", ch)
		require.Equal(t, want, got, "channel %d", ch)
	}
}
