package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/satsim/internal/policy"
	"github.com/san-kum/satsim/internal/satellite"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Params() != satellite.DefaultParams() {
		t.Errorf("default params mismatch: %+v", cfg.Params())
	}
	if cfg.Policy != DefaultPolicy {
		t.Errorf("expected policy %s, got %s", DefaultPolicy, cfg.Policy)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sat.yaml")
	yml := `
policy: point
seed: 7
steps: 50
satellite:
  mass: 600
noise:
  gyro: 0
init_state:
  angular_velocity: 0.01
policy_params:
  target: 2.5
  script: [cw, rest, ccw]
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Policy != "point" || cfg.Seed != 7 || cfg.Steps != 50 {
		t.Errorf("top-level fields not loaded: %+v", cfg)
	}
	if cfg.Satellite.Mass != 600 {
		t.Errorf("expected mass 600, got %f", cfg.Satellite.Mass)
	}
	if cfg.Satellite.Torque != satellite.DefaultTorque {
		t.Errorf("omitted torque should keep default, got %f", cfg.Satellite.Torque)
	}
	if cfg.Noise.Gyro != 0 || cfg.Noise.Attitude != satellite.DefaultAttitudeStdDev {
		t.Errorf("noise not merged: %+v", cfg.Noise)
	}
	if cfg.InitState.AngularVelocity != 0.01 || cfg.InitState.Orientation != satellite.DefaultOrientation {
		t.Errorf("init state not merged: %+v", cfg.InitState)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log config not loaded: %+v", cfg.Log)
	}

	pp := cfg.PolicyArgs()
	want := []satellite.Action{satellite.ClockwiseTorque, satellite.Rest, satellite.CounterClockwiseTorque}
	if len(pp.Script) != len(want) {
		t.Fatalf("expected %d scripted actions, got %d", len(want), len(pp.Script))
	}
	for i := range want {
		if pp.Script[i] != want[i] {
			t.Errorf("script[%d] = %v, want %v", i, pp.Script[i], want[i])
		}
	}
	if pp.Target != 2.5 {
		t.Errorf("expected target 2.5, got %f", pp.Target)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("point")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Policy != "point" || got.PolicyParams.Target != 1.5 || got.Steps != 2000 {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero mass", func(c *Config) { c.Satellite.Mass = 0 }},
		{"negative threshold", func(c *Config) { c.Satellite.MaxVForReading = -1 }},
		{"negative noise", func(c *Config) { c.Noise.Attitude = -0.1 }},
		{"NaN gyro noise", func(c *Config) { c.Noise.Gyro = math.NaN() }},
		{"NaN attitude noise", func(c *Config) { c.Noise.Attitude = math.NaN() }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"negative settle", func(c *Config) { c.SettleSteps = -2 }},
		{"bad script", func(c *Config) { c.PolicyParams.Script = []string{"cw", "spin"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("slow")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.InitState.AngularVelocity != 0.02 {
		t.Errorf("expected angular velocity 0.02, got %f", cfg.InitState.AngularVelocity)
	}
	if cfg.Preset != "slow" {
		t.Errorf("expected preset name recorded, got %q", cfg.Preset)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreValid(t *testing.T) {
	reg := policy.NewRegistry()
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
		if _, err := reg.Get(cfg.Policy, cfg.PolicyArgs(), cfg.Constants(), 1); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestLoadIntoPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("seed: 11\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := GetPreset("point")
	if err := LoadInto(path, cfg); err != nil {
		t.Fatalf("load into preset: %v", err)
	}
	if cfg.Seed != 11 {
		t.Errorf("file value not applied, seed=%d", cfg.Seed)
	}
	if cfg.Policy != "point" || cfg.PolicyParams.Target != 1.5 {
		t.Errorf("preset values lost: %+v", cfg.PolicyParams)
	}
}
