// Package config loads engine settings for marionette rigs from a YAML file
// layered with MARIONETTE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/phanxgames/marionette"
)

// FileName is the default settings file name.
const FileName = "marionette.yaml"

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore: MARIONETTE_PHYSICS__GRAVITY_Y=9.8.
const EnvPrefix = "MARIONETTE_"

// PhysicsConfig holds rig-wide physics constants.
type PhysicsConfig struct {
	GravityX       float64 `koanf:"gravity_x"`
	GravityY       float64 `koanf:"gravity_y"`
	PixelsPerMeter float64 `koanf:"pixels_per_meter"`
	SubStep        float64 `koanf:"sub_step"`
	MaxCatchUp     float64 `koanf:"max_catch_up"`
}

// Settings is the full engine configuration.
type Settings struct {
	Physics PhysicsConfig `koanf:"physics"`
	Debug   bool          `koanf:"debug"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Settings {
	d := marionette.DefaultPhysicsSettings()
	return Settings{
		Physics: PhysicsConfig{
			GravityX:       d.Gravity.X,
			GravityY:       d.Gravity.Y,
			PixelsPerMeter: d.PixelsPerMeter,
			SubStep:        d.SubStep,
			MaxCatchUp:     d.MaxCatchUp,
		},
	}
}

// Load reads settings with the priority defaults < file < environment.
// An empty path skips the file; a path that does not exist is an error.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	d := Defaults()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"physics.gravity_x":        d.Physics.GravityX,
		"physics.gravity_y":        d.Physics.GravityY,
		"physics.pixels_per_meter": d.Physics.PixelsPerMeter,
		"physics.sub_step":         d.Physics.SubStep,
		"physics.max_catch_up":     d.Physics.MaxCatchUp,
		"debug":                    d.Debug,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// envKey maps MARIONETTE_PHYSICS__SUB_STEP to physics.sub_step.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// ApplyDefaults fills zero values that have no meaningful zero.
func (s *Settings) ApplyDefaults() {
	d := Defaults()
	if s.Physics.PixelsPerMeter == 0 {
		s.Physics.PixelsPerMeter = d.Physics.PixelsPerMeter
	}
	if s.Physics.SubStep == 0 {
		s.Physics.SubStep = d.Physics.SubStep
	}
	if s.Physics.MaxCatchUp == 0 {
		s.Physics.MaxCatchUp = d.Physics.MaxCatchUp
	}
}

// Validate reports settings the engine cannot run with.
func (s *Settings) Validate() error {
	var errs []error
	if s.Physics.PixelsPerMeter < 0 {
		errs = append(errs, fmt.Errorf("physics.pixels_per_meter must be positive, got %v", s.Physics.PixelsPerMeter))
	}
	if s.Physics.SubStep < 0 {
		errs = append(errs, fmt.Errorf("physics.sub_step must be positive, got %v", s.Physics.SubStep))
	}
	if s.Physics.MaxCatchUp < 0 {
		errs = append(errs, fmt.Errorf("physics.max_catch_up must be positive, got %v", s.Physics.MaxCatchUp))
	}
	if s.Physics.SubStep > 0 && s.Physics.MaxCatchUp > 0 && s.Physics.SubStep > s.Physics.MaxCatchUp {
		errs = append(errs, fmt.Errorf("physics.sub_step %v exceeds physics.max_catch_up %v",
			s.Physics.SubStep, s.Physics.MaxCatchUp))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// PhysicsSettings converts the physics section into engine settings.
func (s *Settings) PhysicsSettings() marionette.PhysicsSettings {
	return marionette.PhysicsSettings{
		Gravity:        marionette.Vec2{X: s.Physics.GravityX, Y: s.Physics.GravityY},
		PixelsPerMeter: s.Physics.PixelsPerMeter,
		SubStep:        s.Physics.SubStep,
		MaxCatchUp:     s.Physics.MaxCatchUp,
	}
}
