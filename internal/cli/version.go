// ABOUTME: Version command
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/micmonitor/micmonitor/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s/%s)\n", version.String(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
