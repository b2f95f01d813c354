// ABOUTME: Entry point for the microphone volume monitor
// ABOUTME: Hands off to the cobra command tree
package main

import (
	"os"

	"github.com/micmonitor/micmonitor/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
