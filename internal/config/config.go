package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/logging"
	"github.com/san-kum/satsim/internal/policy"
	"github.com/san-kum/satsim/internal/satellite"
)

const (
	DefaultSteps     = 1000
	DefaultPolicy    = "detumble"
	DefaultTopic     = "satsim/telemetry"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultClientID  = "satsim"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Preset       string          `yaml:"preset,omitempty"`
	Policy       string          `yaml:"policy"`
	Seed         int64           `yaml:"seed"`
	Steps        int             `yaml:"steps"`
	SettleSteps  int             `yaml:"settle_steps"`
	Satellite    SatelliteConfig `yaml:"satellite"`
	Noise        NoiseConfig     `yaml:"noise"`
	InitState    InitStateConfig `yaml:"init_state"`
	PolicyParams PolicyConfig    `yaml:"policy_params"`
	Log          logging.Config  `yaml:"log"`
	Telemetry    TelemetryConfig `yaml:"telemetry"`
}

type SatelliteConfig struct {
	Mass           float64 `yaml:"mass"`
	Torque         float64 `yaml:"torque"`
	Length         float64 `yaml:"length"`
	Height         float64 `yaml:"height"`
	MaxVForReading float64 `yaml:"max_v_for_reading"`
}

type NoiseConfig struct {
	Gyro     float64 `yaml:"gyro"`
	Attitude float64 `yaml:"attitude"`
}

type InitStateConfig struct {
	AngularVelocity float64 `yaml:"angular_velocity"`
	Orientation     float64 `yaml:"orientation"`
}

type PolicyConfig struct {
	Deadband float64  `yaml:"deadband"`
	Target   float64  `yaml:"target"`
	Gain     float64  `yaml:"gain"`
	MaxRate  float64  `yaml:"max_rate"`
	Script   []string `yaml:"script,omitempty"`
}

type TelemetryConfig struct {
	MetricsAddr  string `yaml:"metrics_addr"`
	MQTTBroker   string `yaml:"mqtt_broker"`
	MQTTTopic    string `yaml:"mqtt_topic"`
	MQTTClientID string `yaml:"mqtt_client_id"`
}

func DefaultConfig() *Config {
	c := satellite.DefaultConstants()
	n := satellite.DefaultNoise()
	init := satellite.DefaultInitialConditions()
	return &Config{
		Policy: DefaultPolicy,
		Steps:  DefaultSteps,
		Satellite: SatelliteConfig{
			Mass:           c.Mass,
			Torque:         c.Torque,
			Length:         c.Length,
			Height:         c.Height,
			MaxVForReading: c.MaxVForReading,
		},
		Noise: NoiseConfig{Gyro: n.GyroStdDev, Attitude: n.AttitudeStdDev},
		InitState: InitStateConfig{
			AngularVelocity: init.AngularVelocity,
			Orientation:     init.Orientation,
		},
		Log: logging.Config{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Telemetry: TelemetryConfig{
			MQTTTopic:    DefaultTopic,
			MQTTClientID: DefaultClientID,
		},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto decodes path over cfg, typically a preset, and validates the
// result.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Constants().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !(c.Noise.Gyro >= 0) || !(c.Noise.Attitude >= 0) {
		return fmt.Errorf("%w: noise std-dev must be non-negative", ErrInvalid)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	}
	if c.SettleSteps < 0 {
		return fmt.Errorf("%w: settle_steps must be non-negative, got %d", ErrInvalid, c.SettleSteps)
	}
	if _, err := c.Script(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c *Config) Constants() satellite.Constants {
	return satellite.Constants{
		Mass:           c.Satellite.Mass,
		Torque:         c.Satellite.Torque,
		Length:         c.Satellite.Length,
		Height:         c.Satellite.Height,
		MaxVForReading: c.Satellite.MaxVForReading,
	}
}

func (c *Config) Params() satellite.Params {
	return satellite.Params{
		Constants: c.Constants(),
		Noise: satellite.Noise{
			GyroStdDev:     c.Noise.Gyro,
			AttitudeStdDev: c.Noise.Attitude,
		},
		Initial: satellite.InitialConditions{
			AngularVelocity: c.InitState.AngularVelocity,
			Orientation:     c.InitState.Orientation,
		},
	}
}

func (c *Config) Script() ([]satellite.Action, error) {
	actions := make([]satellite.Action, 0, len(c.PolicyParams.Script))
	for _, s := range c.PolicyParams.Script {
		a, err := satellite.ParseAction(s)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func (c *Config) PolicyArgs() policy.Params {
	script, _ := c.Script()
	return policy.Params{
		Deadband: c.PolicyParams.Deadband,
		Target:   c.PolicyParams.Target,
		Gain:     c.PolicyParams.Gain,
		MaxRate:  c.PolicyParams.MaxRate,
		Script:   script,
	}
}

func (c *Config) Episode() episode.Config {
	return episode.Config{MaxSteps: c.Steps, SettleSteps: c.SettleSteps}
}
