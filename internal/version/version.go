// ABOUTME: Version constants for the client
// ABOUTME: Reported in logs and the TUI header
package version

// Version is overridden at build time with -ldflags
var Version = "0.1.0"

const (
	Product      = "JamRadio"
	Manufacturer = "JamRadio"
)

// String returns product and version for display
func String() string {
	return Product + " " + Version
}
