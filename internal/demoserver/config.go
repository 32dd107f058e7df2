package demoserver

// Config holds configuration for the demo server.
type Config struct {
	// Port is the port on which the demo server listens.
	Port int `yaml:"port"`

	// InitialVersion is the starting version for all pages (default:
	// VersionAccessible).
	InitialVersion int `yaml:"initial_version"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:           9999,
		InitialVersion: VersionAccessible,
	}
}
