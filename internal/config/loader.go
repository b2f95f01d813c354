// ABOUTME: Loads the YAML config over the defaults
// ABOUTME: Validates every field and joins the problems into one error
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/micmonitor/micmonitor/internal/logging"
	"github.com/micmonitor/micmonitor/pkg/audio/capture"
)

// Load reads the YAML configuration file at path on top of [Default] and
// validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates it.
// Unknown keys are rejected. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if cfg.Audio.Backend != "" && !slices.Contains(capture.Backends, cfg.Audio.Backend) {
		errs = append(errs, fmt.Errorf("audio.backend %q is invalid; valid values: %v", cfg.Audio.Backend, capture.Backends))
	}
	if cfg.Audio.SampleRate < 8000 || cfg.Audio.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d is out of range [8000, 192000]", cfg.Audio.SampleRate))
	}
	if cfg.Audio.ChunkMS < 10 || cfg.Audio.ChunkMS > 1000 {
		errs = append(errs, fmt.Errorf("audio.chunk_ms %d is out of range [10, 1000]", cfg.Audio.ChunkMS))
	}
	if cfg.Audio.MaxTransientErrors < 0 {
		errs = append(errs, fmt.Errorf("audio.max_transient_errors %d must not be negative", cfg.Audio.MaxTransientErrors))
	}
	if cfg.Audio.SidetoneVolume < 0 || cfg.Audio.SidetoneVolume > 100 {
		errs = append(errs, fmt.Errorf("audio.sidetone_volume %d is out of range [0, 100]", cfg.Audio.SidetoneVolume))
	}

	if err := cfg.Layout().Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Icon.Width > 256 || cfg.Icon.Height > 256 {
		errs = append(errs, fmt.Errorf("icon size %dx%d exceeds 256x256", cfg.Icon.Width, cfg.Icon.Height))
	}
	if cfg.Icon.Gain <= 0 {
		errs = append(errs, fmt.Errorf("icon.gain %.1f must be positive", cfg.Icon.Gain))
	}

	for i, l := range cfg.Tray.Links {
		prefix := fmt.Sprintf("tray.links[%d]", i)
		if l.Title == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if l.URL == "" {
			continue // reported to the user when clicked
		}
		u, err := url.Parse(l.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s.url %q must be an absolute http(s) URL", prefix, l.URL))
		}
	}

	return errors.Join(errs...)
}
