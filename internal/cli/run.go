// ABOUTME: Run command: starts monitoring with a tray icon or terminal meter
// ABOUTME: Sets up logging and signals, reports startup failures to the user
package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/micmonitor/micmonitor/internal/app"
	"github.com/micmonitor/micmonitor/internal/logging"
	"github.com/micmonitor/micmonitor/internal/ui"
	"github.com/micmonitor/micmonitor/internal/version"
)

func newRunCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Monitor the microphone (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, f)
		},
	}
}

func runMonitor(cmd *cobra.Command, f *flags) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		report(interactive, "Configuration error", err)
		return err
	}

	noTray, fellBack := terminalMode(f.noTray, interactive, app.TrayAvailable(runtime.GOOS, os.Getenv))

	session := uuid.NewString()
	closer, err := logging.Setup(logging.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		// the meter owns the terminal in --no-tray mode
		Console: !noTray,
		Session: session,
	})
	if err != nil {
		report(interactive, "Logging error", err)
		return err
	}
	defer closer.Close()

	log.Info().
		Str("version", version.Version).
		Str("backend", cfg.Audio.Backend).
		Bool("tray", !noTray).
		Msg("Starting " + version.Product)
	if fellBack {
		log.Warn().Msg("No system tray in this session, showing the terminal meter")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(app.Options{
		Config:      cfg,
		NoTray:      noTray,
		Interactive: interactive,
	})

	err = a.Run(ctx)
	switch {
	case err == nil:
		log.Info().Msg("Stopped")
		return nil
	case errors.Is(err, app.ErrNoDeviceSelected):
		log.Info().Msg("No microphone selected, exiting")
		return nil
	case app.IsStartupError(err):
		log.Error().Err(err).Msg("Startup failed")
		var se *app.StartupError
		errors.As(err, &se)
		if interactive {
			reportBox(se.Title, se.Err)
		} else {
			a.Notifier().Alert(se.Error())
		}
		return err
	default:
		log.Error().Err(err).Msg("Monitoring ended with an error")
		return err
	}
}

// terminalMode decides between tray and terminal meter. Without a tray an
// interactive run falls back to the meter; otherwise the app reports it.
func terminalMode(noTray, interactive, trayOK bool) (terminal, fellBack bool) {
	if noTray {
		return true, false
	}
	if !trayOK && interactive {
		return true, true
	}
	return false, false
}

// report shows an error before the app exists: a box on a terminal, stderr otherwise
func report(interactive bool, title string, err error) {
	if interactive {
		reportBox(title, err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", title, err)
}

func reportBox(title string, err error) {
	if boxErr := ui.ShowError(title, err.Error()); boxErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", title, err)
	}
}
