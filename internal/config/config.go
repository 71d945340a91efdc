// Package config handles pcgextras configuration loading and management.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings.
type Config struct {
	Snap    SnapConfig    `yaml:"snap" toml:"snap"`
	PCG     PCGConfig     `yaml:"pcg" toml:"pcg"`
	Editor  EditorConfig  `yaml:"editor" toml:"editor"`
	Scene   SceneConfig   `yaml:"scene" toml:"scene"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// SnapConfig holds the defaults of new spline mesh actors.
type SnapConfig struct {
	Enabled       bool    `yaml:"enabled" toml:"enabled"`
	ZOffset       float32 `yaml:"z_offset" toml:"z_offset"`             // fraction of mesh height
	TraceDistance float32 `yaml:"trace_distance" toml:"trace_distance"` // downward trace length
	Mesh          string  `yaml:"mesh" toml:"mesh"`
	Material      string  `yaml:"material" toml:"material"`
}

// PCGConfig holds the exclusion node settings.
type PCGConfig struct {
	ActorTag       string `yaml:"actor_tag" toml:"actor_tag"`
	SortByPosition bool   `yaml:"sort_by_position" toml:"sort_by_position"`
	Seed           int32  `yaml:"seed" toml:"seed"`
}

// EditorConfig holds refresh behaviour.
type EditorConfig struct {
	AutoRefresh     bool     `yaml:"auto_refresh" toml:"auto_refresh"`
	RefreshInterval Duration `yaml:"refresh_interval" toml:"refresh_interval"`
}

// SceneConfig selects the level to build.
type SceneConfig struct {
	Level     string `yaml:"level" toml:"level"`
	Watch     bool   `yaml:"watch" toml:"watch"`
	GameWorld bool   `yaml:"game_world" toml:"game_world"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
	JSON    bool   `yaml:"json" toml:"json"`
}

// Duration is a time.Duration written as "300ms" in both YAML and TOML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Snap: SnapConfig{
			Enabled:       true,
			ZOffset:       0.25,
			TraceDistance: 200,
			Mesh:          "/Engine/BasicShapes/Cube",
			Material:      "/Engine/BasicShapes/BasicShapeMaterial",
		},
		PCG: PCGConfig{
			ActorTag: "PCG_EXCLUDE",
			Seed:     42,
		},
		Editor: EditorConfig{
			AutoRefresh:     true,
			RefreshInterval: Duration(300 * time.Millisecond),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
