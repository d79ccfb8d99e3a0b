package prop

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultConfigFile = "grillmonster.json"

// EnvPrefix prefixes environment overrides, e.g. GRILLMONSTER_VOLUME=80.
const EnvPrefix = "GRILLMONSTER"

// Config holds the prop configuration
type Config struct {
	Calibration  Calibration `json:"calibration" mapstructure:"calibration"`
	Pins         PinConfig   `json:"pins" mapstructure:"pins"`
	I2CBus       string      `json:"i2c_bus" mapstructure:"i2c_bus"`
	I2CAddress   uint16      `json:"i2c_address" mapstructure:"i2c_address"`
	PWMFrequency int         `json:"pwm_frequency" mapstructure:"pwm_frequency"` // Hz
	Volume       int         `json:"volume" mapstructure:"volume"`               // percent
	AudioRoot    string      `json:"audio_root" mapstructure:"audio_root"`
	Category     string      `json:"category" mapstructure:"category"`

	PollInterval   time.Duration `json:"poll_interval" mapstructure:"poll_interval"`
	Cooldown       time.Duration `json:"cooldown" mapstructure:"cooldown"`
	SelfTestWarmup time.Duration `json:"selftest_warmup" mapstructure:"selftest_warmup"`
}

// PinConfig maps each digital line to a GPIO name understood by gpioreg.
type PinConfig struct {
	Solenoid string `json:"solenoid" mapstructure:"solenoid"`
	Light    string `json:"light" mapstructure:"light"`
	Fog      string `json:"fog" mapstructure:"fog"`
	Button   string `json:"button" mapstructure:"button"`
	Plate    string `json:"plate" mapstructure:"plate"`
	Motion   string `json:"motion" mapstructure:"motion"`
}

// Output returns the GPIO name for an output line.
func (p PinConfig) Output(o Output) string {
	switch o {
	case Solenoid:
		return p.Solenoid
	case Light:
		return p.Light
	case Fog:
		return p.Fog
	}
	return ""
}

// Input returns the GPIO name for a sensor line.
func (p PinConfig) Input(i Input) string {
	switch i {
	case Plate:
		return p.Plate
	case Button:
		return p.Button
	case Motion:
		return p.Motion
	}
	return ""
}

// DefaultConfig returns the stock wiring: GPIO lines, a PCA9685 at 0x40 and full volume.
func DefaultConfig() *Config {
	return &Config{
		Calibration: DefaultCalibration(),
		Pins: PinConfig{
			Solenoid: "GPIO17",
			Light:    "GPIO18",
			Fog:      "GPIO16",
			Button:   "GPIO23",
			Plate:    "GPIO24",
			Motion:   "GPIO25",
		},
		I2CAddress:     0x40,
		PWMFrequency:   60,
		Volume:         100,
		AudioRoot:      "/home/pi",
		Category:       "SFX",
		PollInterval:   100 * time.Millisecond,
		SelfTestWarmup: 10 * time.Second,
	}
}

// LoadConfig loads configuration from the default config file. A missing file
// is not an error: the defaults and environment overrides are used.
func LoadConfig() (*Config, error) {
	return load(DefaultConfigFile, false)
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, required bool) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		case required || !errors.Is(statErr, os.ErrNotExist):
			return nil, fmt.Errorf("read config %s: %w", path, statErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	for name, sc := range d.Calibration {
		key := "calibration." + string(name)
		v.SetDefault(key+".channel", sc.Channel)
		v.SetDefault(key+".open", sc.Open)
		v.SetDefault(key+".closed", sc.Closed)
	}
	v.SetDefault("pins.solenoid", d.Pins.Solenoid)
	v.SetDefault("pins.light", d.Pins.Light)
	v.SetDefault("pins.fog", d.Pins.Fog)
	v.SetDefault("pins.button", d.Pins.Button)
	v.SetDefault("pins.plate", d.Pins.Plate)
	v.SetDefault("pins.motion", d.Pins.Motion)
	v.SetDefault("i2c_bus", d.I2CBus)
	v.SetDefault("i2c_address", d.I2CAddress)
	v.SetDefault("pwm_frequency", d.PWMFrequency)
	v.SetDefault("volume", d.Volume)
	v.SetDefault("audio_root", d.AudioRoot)
	v.SetDefault("category", d.Category)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("cooldown", d.Cooldown)
	v.SetDefault("selftest_warmup", d.SelfTestWarmup)
}

// Validate rejects configurations the hardware cannot honour.
func (c *Config) Validate() error {
	if err := c.Calibration.Validate(); err != nil {
		return fmt.Errorf("calibration: %w", err)
	}
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume %d not in 0-100", c.Volume)
	}
	if c.PWMFrequency <= 0 {
		return fmt.Errorf("pwm frequency must be positive, got %d", c.PWMFrequency)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %s", c.Cooldown)
	}
	return nil
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists reports whether a config file is present at path.
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
