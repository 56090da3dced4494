package environment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the envelope of config files: a kind and its definition.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// ConfigKind is the only kind of definition FromYaml accepts.
const ConfigKind = "clickEnvironment"

// Config holds the environment parameters plus the rollout hyper-parameters.
// NOTE: viper lower-cases every key it reads, so the yaml tags here are lower case;
// the file itself may use any casing.
type Config struct {
	Canvas   CanvasConfig `yaml:"canvas"`
	Cursor   CursorConfig `yaml:"cursor"`
	IconSize int          `yaml:"iconsize"`
	// MaxSteps bounds episode length.
	MaxSteps int `yaml:"maxsteps"`
	// Seed for the episode's random source; zero means seed from the clock.
	Seed uint64 `yaml:"seed"`
	// BackgroundIcons fixes the number of distractor icons; nil draws it per scenario.
	BackgroundIcons *int `yaml:"backgroundicons"`
	// RecordObservations makes rollouts keep planar copies of each observation.
	RecordObservations bool `yaml:"recordobservations"`
	// HyperParams is a key-val list of rollout parameters (workers, epsilon, ...).
	HyperParams []HyperParameter `yaml:"hyperparams"`
	// RolloutDeadline is a duration describing when to stop rollouts, e.g. {duration: 5m}.
	RolloutDeadline map[string]string `yaml:"rolloutdeadline"`
}

type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type CursorConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type HyperParameter struct {
	Key string  `yaml:"key"`
	Val float64 `yaml:"val"`
}

// Defaults, matching a 1366x768 screen and a 12x20 pointer.
const (
	DefaultCanvasWidth  = 1366
	DefaultCanvasHeight = 768
	DefaultIconSize     = 32
	DefaultMaxSteps     = 1000
	DefaultCursorWidth  = 12
	DefaultCursorHeight = 20
)

// ErrInvalidConfig is returned for configs that cannot produce an environment.
var ErrInvalidConfig = errors.New("invalid environment config")

// DefaultConfig returns the standard environment settings.
func DefaultConfig() Config {
	return Config{
		Canvas:   CanvasConfig{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight},
		Cursor:   CursorConfig{Width: DefaultCursorWidth, Height: DefaultCursorHeight},
		IconSize: DefaultIconSize,
		MaxSteps: DefaultMaxSteps,
	}
}

// withDefaults fills unset (zero) fields from DefaultConfig.
func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.Canvas.Width == 0 {
		cfg.Canvas.Width = def.Canvas.Width
	}
	if cfg.Canvas.Height == 0 {
		cfg.Canvas.Height = def.Canvas.Height
	}
	if cfg.Cursor.Width == 0 {
		cfg.Cursor.Width = def.Cursor.Width
	}
	if cfg.Cursor.Height == 0 {
		cfg.Cursor.Height = def.Cursor.Height
	}
	if cfg.IconSize == 0 {
		cfg.IconSize = def.IconSize
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = def.MaxSteps
	}
	return cfg
}

// Validate checks that the config can produce an environment.
func (cfg Config) Validate() error {
	switch {
	case cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0:
		return fmt.Errorf("canvas %dx%d: %w", cfg.Canvas.Width, cfg.Canvas.Height, ErrInvalidConfig)
	case cfg.Cursor.Width <= 0 || cfg.Cursor.Height <= 0:
		return fmt.Errorf("cursor %dx%d: %w", cfg.Cursor.Width, cfg.Cursor.Height, ErrInvalidConfig)
	case cfg.IconSize <= 0:
		return fmt.Errorf("icon size %d: %w", cfg.IconSize, ErrInvalidConfig)
	case cfg.MaxSteps <= 0:
		return fmt.Errorf("max steps %d: %w", cfg.MaxSteps, ErrInvalidConfig)
	case cfg.BackgroundIcons != nil && *cfg.BackgroundIcons < 0:
		return fmt.Errorf("background icons %d: %w", *cfg.BackgroundIcons, ErrInvalidConfig)
	}
	return nil
}

// NewRand returns a random source seeded from cfg.Seed, or from the clock when it is zero.
func (cfg Config) NewRand() *rand.Rand {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

func (cfg *Config) GetHyperParamOrDefault(param string, defaultVal float64) float64 {
	for _, kvp := range cfg.HyperParams {
		if kvp.Key == param {
			return kvp.Val
		}
	}
	return defaultVal
}

// WithRolloutDeadline returns a context extended by the rollout deadline, if one is specified.
func (cfg *Config) WithRolloutDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.RolloutDeadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, fmt.Errorf("rollout deadline: %w", err)
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// FromYaml reads an environment config file. Viper reads the envelope; the definition
// is re-marshalled through yaml into the typed Config, then defaulted and validated.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if outerConfig.Kind != ConfigKind {
		return nil, fmt.Errorf("config kind %q, expected %q: %w", outerConfig.Kind, ConfigKind, ErrInvalidConfig)
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := Config{}
	if err = yaml.Unmarshal(spec, &innerConfig); err != nil {
		return nil, fmt.Errorf("decode config def: %w", err)
	}

	innerConfig = innerConfig.withDefaults()
	if err = innerConfig.Validate(); err != nil {
		return nil, err
	}
	return &innerConfig, nil
}
