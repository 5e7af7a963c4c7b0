package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with text parsing ("300ms", "1.2s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration %q not allowed", s)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML decodes a scalar duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// File is the on-disk configuration. Zero values leave the environment
// setting in place.
type File struct {
	Server struct {
		Port          string `toml:"port" yaml:"port"`
		LogLevel      string `toml:"log_level" yaml:"log_level"`
		SingleSession *bool  `toml:"single_session" yaml:"single_session"`
	} `toml:"server" yaml:"server"`
	Export struct {
		Enabled *bool  `toml:"enabled" yaml:"enabled"`
		File    string `toml:"file" yaml:"file"`
	} `toml:"export" yaml:"export"`
	Round struct {
		DefaultTargetCount int   `toml:"default_target_count" yaml:"default_target_count"`
		Spread             *bool `toml:"spread" yaml:"spread"`
	} `toml:"round" yaml:"round"`
	Timings struct {
		RemoveDelay  Duration `toml:"remove_delay" yaml:"remove_delay"`
		EntryDelay   Duration `toml:"entry_delay" yaml:"entry_delay"`
		IntroDelay   Duration `toml:"intro_delay" yaml:"intro_delay"`
		WinDelay     Duration `toml:"win_delay" yaml:"win_delay"`
		MissDelay    Duration `toml:"miss_delay" yaml:"miss_delay"`
		ClockTick    Duration `toml:"clock_tick" yaml:"clock_tick"`
		AutoPlayTick Duration `toml:"autoplay_tick" yaml:"autoplay_tick"`
	} `toml:"timings" yaml:"timings"`
}

// LoadFile decodes a TOML or YAML file, chosen by extension.
func LoadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("config: parse YAML: %w", err)
		}
	default:
		md, err := toml.Decode(string(b), &f)
		if err != nil {
			return nil, fmt.Errorf("config: parse TOML: %w", err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("config: unknown key %q", keys[0].String())
		}
	}
	return &f, nil
}

// Apply overlays the non-zero file settings onto c.
func (f *File) Apply(c *Config) {
	if f.Server.Port != "" {
		c.Port = f.Server.Port
	}
	if f.Server.LogLevel != "" {
		c.LogLevel = f.Server.LogLevel
	}
	if f.Server.SingleSession != nil {
		c.SingleSession = *f.Server.SingleSession
	}
	if f.Export.Enabled != nil {
		c.ExportEnabled = *f.Export.Enabled
	}
	if f.Export.File != "" {
		c.ExportFile = f.Export.File
	}
	if f.Round.DefaultTargetCount > 0 {
		c.DefaultTargetCount = f.Round.DefaultTargetCount
	}
	if f.Round.Spread != nil {
		c.Spread = *f.Round.Spread
	}
	setDuration(&c.Timings.RemoveDelay, f.Timings.RemoveDelay)
	setDuration(&c.Timings.EntryDelay, f.Timings.EntryDelay)
	setDuration(&c.Timings.IntroDelay, f.Timings.IntroDelay)
	setDuration(&c.Timings.WinDelay, f.Timings.WinDelay)
	setDuration(&c.Timings.MissDelay, f.Timings.MissDelay)
	setDuration(&c.Timings.ClockTick, f.Timings.ClockTick)
	setDuration(&c.Timings.AutoPlayTick, f.Timings.AutoPlayTick)
}

func setDuration(dst *time.Duration, d Duration) {
	if d.Duration > 0 {
		*dst = d.Duration
	}
}
