// ABOUTME: Cobra root command and configuration loading
// ABOUTME: Merges the config file with command-line overrides
// Package cli provides the command-line interface for micmonitor.
package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/micmonitor/micmonitor/internal/config"
	"github.com/micmonitor/micmonitor/internal/version"
)

// flags holds every command-line option
type flags struct {
	cfgFile  string
	device   string
	backend  string
	noTray   bool
	logLevel string
	logFile  string
}

// NewRootCmd creates the root command. Without a subcommand it runs the monitor.
func NewRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   version.Binary,
		Short: version.Product + " - microphone level in the notification area",
		Long: version.Product + ` ` + version.Version + `

Samples the microphone continuously and shows its loudness as a bar
icon in the system tray. Use --no-tray for a terminal meter instead.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, f)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&f.cfgFile, "config", "c", "", "Configuration file path (default: user config dir)")
	rootCmd.PersistentFlags().StringVarP(&f.device, "device", "d", "", "Microphone name or substring")
	rootCmd.PersistentFlags().StringVarP(&f.backend, "backend", "b", "", "Capture backend: malgo, portaudio or tone")
	rootCmd.PersistentFlags().BoolVar(&f.noTray, "no-tray", false, "Show a terminal meter instead of the tray icon")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&f.logFile, "log-file", "", "Log file path")

	rootCmd.AddCommand(newRunCmd(f))
	rootCmd.AddCommand(newDevicesCmd(f))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

// defaultConfigPath is <user config dir>/micmonitor/config.yaml
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, version.Binary, "config.yaml")
}

// loadConfig reads the config file, if any, and applies flag overrides
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	path := f.cfgFile
	if path == "" {
		if p := defaultConfigPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	pf := cmd.Flags()
	if pf.Changed("device") {
		cfg.Audio.Device = f.device
	}
	if pf.Changed("backend") {
		cfg.Audio.Backend = f.backend
	}
	if pf.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if pf.Changed("log-file") {
		cfg.Log.File = f.logFile
	}

	if err := config.Validate(cfg); err != nil {
		return nil, errors.Join(errors.New("invalid configuration"), err)
	}
	return cfg, nil
}
