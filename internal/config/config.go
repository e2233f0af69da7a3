// Package config loads gcsim settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	gcode "github.com/leftmike/gcsim"
	"github.com/leftmike/gcsim/playback"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Playback PlaybackConfig `toml:"playback" yaml:"playback"`
	Machine  MachineConfig  `toml:"machine" yaml:"machine"`
	Arcs     ArcsConfig     `toml:"arcs" yaml:"arcs"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

type PlaybackConfig struct {
	Interval Duration `toml:"interval" yaml:"interval"`
	Speed    float64  `toml:"speed" yaml:"speed"`
}

type Point struct {
	X float64 `toml:"x" yaml:"x"`
	Y float64 `toml:"y" yaml:"y"`
	Z float64 `toml:"z" yaml:"z"`
}

type MachineConfig struct {
	Start     Point   `toml:"start" yaml:"start"`
	RapidRate float64 `toml:"rapid_rate" yaml:"rapid_rate"` // mm per minute
}

type ArcsConfig struct {
	Tessellate bool    `toml:"tessellate" yaml:"tessellate"`
	Step       float64 `toml:"step" yaml:"step"` // mm
}

type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Duration is a time.Duration written as a string such as "100ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			Interval: Duration{playback.DefaultInterval},
			Speed:    playback.DefaultSpeed,
		},
		Machine: MachineConfig{
			RapidRate: 5000.0,
		},
		Arcs: ArcsConfig{
			Step: 0.5,
		},
		Server: ServerConfig{
			Addr: "localhost:8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults; the format is picked by extension
// (.yaml or .yml for YAML, anything else is TOML). An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(buf, cfg)
	default:
		_, err = toml.Decode(string(buf), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Playback.Interval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("%w: playback.interval must be positive: %s", ErrInvalid,
			cfg.Playback.Interval))
	}
	if !finite(cfg.Playback.Speed) || cfg.Playback.Speed < playback.MinSpeed ||
		cfg.Playback.Speed > playback.MaxSpeed {
		errs = append(errs, fmt.Errorf("%w: playback.speed must be in [%v, %v]: %v", ErrInvalid,
			playback.MinSpeed, playback.MaxSpeed, cfg.Playback.Speed))
	}
	if !finite(cfg.Machine.RapidRate) || cfg.Machine.RapidRate <= 0.0 {
		errs = append(errs, fmt.Errorf("%w: machine.rapid_rate must be positive: %v", ErrInvalid,
			cfg.Machine.RapidRate))
	}
	if !finite(cfg.Arcs.Step) || cfg.Arcs.Step <= 0.0 {
		errs = append(errs, fmt.Errorf("%w: arcs.step must be positive: %v", ErrInvalid,
			cfg.Arcs.Step))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log.format must be text or json: %q", ErrInvalid,
			cfg.Log.Format))
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown log.level: %q", ErrInvalid, cfg.Log.Level))
	}
	return errors.Join(errs...)
}

func (cfg *Config) Start() gcode.Position {
	return gcode.Position{X: cfg.Machine.Start.X, Y: cfg.Machine.Start.Y, Z: cfg.Machine.Start.Z}
}

// PlaybackOptions are the controller options set by the config.
func (cfg *Config) PlaybackOptions() []playback.Option {
	return []playback.Option{
		playback.WithInterval(cfg.Playback.Interval.Duration),
		playback.WithSpeed(cfg.Playback.Speed),
	}
}
