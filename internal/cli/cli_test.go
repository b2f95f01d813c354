// ABOUTME: Tests for the command-line interface
package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micmonitor/micmonitor/internal/version"
	"github.com/micmonitor/micmonitor/pkg/audio/capture"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// keep the user's real config out of the tests
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, version.String()))
}

func TestDevicesCommandToneBackend(t *testing.T) {
	out, err := execute(t, "devices", "--backend", "tone")
	require.NoError(t, err)
	assert.Contains(t, out, "Capture devices (tone)")
	assert.Contains(t, out, "* "+capture.ToneDeviceName)
}

func TestDevicesCommandUnknownBackend(t *testing.T) {
	_, err := execute(t, "devices", "--backend", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audio:\n  device: Built-in\n  backend: tone\nlog:\n  level: debug\n"), 0o644))

	f := &flags{}
	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--device", "USB", "--log-file", "x.log"}))
	f.cfgFile, _ = cmd.Flags().GetString("config")
	f.device, _ = cmd.Flags().GetString("device")
	f.logFile, _ = cmd.Flags().GetString("log-file")

	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, "USB", cfg.Audio.Device)
	assert.Equal(t, "tone", cfg.Audio.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "x.log", cfg.Log.File)
}

func TestLoadConfigMissingFile(t *testing.T) {
	f := &flags{cfgFile: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := loadConfig(NewRootCmd(), f)
	assert.Error(t, err)
}

func TestLoadConfigInvalidOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--log-level", "loud"}))
	f := &flags{logLevel: "loud"}

	_, err := loadConfig(cmd, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestTerminalMode(t *testing.T) {
	tests := []struct {
		name                    string
		noTray, interactive, ok bool
		terminal, fellBack      bool
	}{
		{"flag wins", true, false, true, true, false},
		{"tray available", false, true, true, false, false},
		{"no tray on a terminal", false, true, false, true, true},
		{"no tray headless", false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terminal, fellBack := terminalMode(tt.noTray, tt.interactive, tt.ok)
			assert.Equal(t, tt.terminal, terminal)
			assert.Equal(t, tt.fellBack, fellBack)
		})
	}
}
