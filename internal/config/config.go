// ABOUTME: Configuration schema and defaults
// Package config defines the micmonitor configuration file and its defaults.
package config

import (
	"time"

	"github.com/micmonitor/micmonitor/internal/version"
	"github.com/micmonitor/micmonitor/pkg/audio"
	"github.com/micmonitor/micmonitor/pkg/audio/capture"
	"github.com/micmonitor/micmonitor/pkg/audio/level"
	"github.com/micmonitor/micmonitor/pkg/icon"
)

// Config is the root configuration.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	Audio AudioConfig `yaml:"audio"`
	Icon  IconConfig  `yaml:"icon"`
	Tray  TrayConfig  `yaml:"tray"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// File always receives logs. Empty disables file logging.
	File string `yaml:"file"`
}

// AudioConfig controls capture.
type AudioConfig struct {
	// Backend is malgo, portaudio or tone.
	Backend string `yaml:"backend"`

	// Device is a device name or case-insensitive substring. Empty means
	// ask interactively, or use the default device.
	Device string `yaml:"device"`

	SampleRate int `yaml:"sample_rate"`

	// ChunkMS is the capture chunk length; one icon update per chunk.
	ChunkMS int `yaml:"chunk_ms"`

	// MaxTransientErrors is how many consecutive recoverable read errors the
	// monitor tolerates before stopping.
	MaxTransientErrors int `yaml:"max_transient_errors"`

	// SidetoneVolume is the Listen playback volume, 0-100.
	SidetoneVolume int `yaml:"sidetone_volume"`
}

// IconConfig controls the rendered level icon.
type IconConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Bars   int     `yaml:"bars"`
	Gain   float64 `yaml:"gain"`
}

// Link is a tray menu entry that opens a URL.
type Link struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// TrayConfig controls the notification-area host.
type TrayConfig struct {
	Title         string `yaml:"title"`
	Links         []Link `yaml:"links"`
	Notifications bool   `yaml:"notifications"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
			File:  version.Binary + ".log",
		},
		Audio: AudioConfig{
			Backend:            capture.BackendMalgo,
			SampleRate:         audio.DefaultSampleRate,
			ChunkMS:            100,
			MaxTransientErrors: 5,
			SidetoneVolume:     100,
		},
		Icon: IconConfig{
			Width:  icon.DefaultWidth,
			Height: icon.DefaultHeight,
			Bars:   icon.DefaultBars,
			Gain:   level.DefaultGain,
		},
		Tray: TrayConfig{
			Title: version.Product,
			Links: []Link{
				{Title: "GitHub", URL: "https://github.com/gabrielmf1998"},
				{Title: "LinkedIn", URL: "https://www.linkedin.com/in/gabriel-marques-ferrarezi-8a0913190/"},
			},
			Notifications: true,
		},
	}
}

// Format returns the capture format.
func (c *Config) Format() audio.Format {
	f := audio.DefaultFormat()
	f.SampleRate = c.Audio.SampleRate
	return f
}

// ChunkDuration returns the capture chunk length.
func (c *Config) ChunkDuration() time.Duration {
	return time.Duration(c.Audio.ChunkMS) * time.Millisecond
}

// ChunkBytes returns the capture chunk size in bytes.
func (c *Config) ChunkBytes() int {
	return c.Format().ChunkBytes(c.ChunkDuration())
}

// Layout returns the icon layout.
func (c *Config) Layout() icon.Layout {
	return icon.Layout{Width: c.Icon.Width, Height: c.Icon.Height, Bars: c.Icon.Bars}
}
