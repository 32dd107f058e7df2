package tracker

// MemoryPath keeps the database in memory for the life of the tracker.
const MemoryPath = ":memory:"

// Config controls where audit history is kept.
type Config struct {
	// Path is the SQLite database file. Parent directories are created.
	Path string `yaml:"path" json:"path"`
}

// DefaultConfig stores history under .wcag131 in the working directory.
func DefaultConfig() Config {
	return Config{Path: ".wcag131/audits.db"}
}
