// Package glvrdclient carries version information for the Glavred client.
//
// The client itself lives in the glvrd package; the command-line tool in
// cmd/glvrd reports this version.
package glvrdclient

// Version is the semantic version of the client. Pre-1.0 minor releases
// may break the API.
const Version = "0.1.0"

// VersionInfo describes this build of the client
type VersionInfo struct {
	// Version is the semver string
	Version string

	// Name is the canonical module name
	Name string
}

// GetVersion returns the client name and version.
//
// Usage:
//
//	info := GetVersion()
//	slog.Info("starting", "client", info.Name, "version", info.Version)
func GetVersion() VersionInfo {
	return VersionInfo{
		Version: Version,
		Name:    "glvrd-client",
	}
}
