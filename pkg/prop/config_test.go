package prop

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grillmonster.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{
  "volume": 80,
  "category": "Halloween",
  "calibration": {"pupil": {"open": 320}},
  "pins": {"fog": "GPIO5"}
}`)

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Volume)
	assert.Equal(t, "Halloween", cfg.Category)
	assert.Equal(t, "GPIO5", cfg.Pins.Fog)
	assert.Equal(t, "GPIO17", cfg.Pins.Solenoid)
	assert.Equal(t, ServoCalibration{Channel: 2, Open: 320, Closed: 550}, cfg.Calibration[Pupil])
	assert.Equal(t, DefaultCalibration()[RightLid], cfg.Calibration[RightLid])
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	t.Setenv("GRILLMONSTER_VOLUME", "55")
	t.Setenv("GRILLMONSTER_COOLDOWN", "2s")
	t.Setenv("GRILLMONSTER_PINS_MOTION", "GPIO6")

	cfg, err := LoadConfigFrom(writeConfig(t, `{"volume": 80}`))
	require.NoError(t, err)

	assert.Equal(t, 55, cfg.Volume)
	assert.Equal(t, 2*time.Second, cfg.Cooldown)
	assert.Equal(t, "GPIO6", cfg.Pins.Motion)
}

func TestLoadConfigFrom_MissingFile(t *testing.T) {
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadConfigFrom_RejectsBadPulse(t *testing.T) {
	path := writeConfig(t, `{"calibration": {"left_lid": {"closed": 5000}}}`)

	_, err := LoadConfigFrom(path)
	require.ErrorIs(t, err, ErrPulseRange)
}

func TestLoadConfigFrom_RejectsBadVolume(t *testing.T) {
	_, err := LoadConfigFrom(writeConfig(t, `{"volume": 140}`))
	require.Error(t, err)
}

func TestConfig_SaveTo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Volume = 70
	cfg.Cooldown = 5 * time.Second
	cfg.Calibration[RightLid] = ServoCalibration{Channel: 0, Open: 180, Closed: 520}

	path := filepath.Join(t.TempDir(), "saved.json")
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grillmonster.json")
	assert.False(t, ConfigExists(path))

	require.NoError(t, DefaultConfig().SaveTo(path))
	assert.True(t, ConfigExists(path))
}
