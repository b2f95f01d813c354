// ABOUTME: Devices command: lists capture devices on the selected backend
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/micmonitor/micmonitor/pkg/audio/capture"
)

func newDevicesCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List capture devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}

			backend, err := capture.NewBackend(cfg.Audio.Backend)
			if err != nil {
				return err
			}
			defer backend.Close()

			devices, err := backend.Devices()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Capture devices (%s):\n", backend.Name())
			for _, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Fprintf(out, " %s %s\n", marker, d.Name)
			}
			return nil
		},
	}
}
