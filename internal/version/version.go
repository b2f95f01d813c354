// ABOUTME: Build and product identification
// ABOUTME: Version is overridden at link time with -ldflags "-X"
package version

// Version is the release version, "dev" for local builds
var Version = "dev"

const (
	// Product is the display name used in the tray and dialogs
	Product = "Microphone Volume Monitor"

	// Manufacturer appears in the about line
	Manufacturer = "micmonitor"

	// Binary is the executable name
	Binary = "micmonitor"
)

// String returns "Product Version"
func String() string {
	return Product + " " + Version
}
