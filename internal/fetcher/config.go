package fetcher

import "time"

type Config struct {
	MaxConcurrency int `yaml:"max_concurrency"`
	// CommitSize is how many reports are written to the tracker per transaction.
	CommitSize int `yaml:"commit_size"`
	// Timeout bounds fetching and auditing a single URL.
	Timeout time.Duration `yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		CommitSize:     10,
		Timeout:        120 * time.Second,
	}
}
