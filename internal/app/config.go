package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raysh454/wcag131/internal/assessor"
	"github.com/raysh454/wcag131/internal/demoserver"
	"github.com/raysh454/wcag131/internal/fetcher"
	"github.com/raysh454/wcag131/internal/report"
	"github.com/raysh454/wcag131/internal/tracker"
	"github.com/raysh454/wcag131/internal/webclient"
)

// Config gathers every component's settings. Zero sections in a YAML file
// keep their defaults.
type Config struct {
	Assessor  assessor.Config   `yaml:"assessor"`
	WebClient webclient.Config  `yaml:"webclient"`
	Fetcher   fetcher.Config    `yaml:"fetcher"`
	Tracker   tracker.Config    `yaml:"tracker"`
	Report    report.Config     `yaml:"report"`
	Server    ServerConfig      `yaml:"server"`
	Crawl     CrawlConfig       `yaml:"crawl"`
	Demo      demoserver.Config `yaml:"demo"`

	// JobRetention is how long finished jobs stay visible to GetJob.
	// Zero keeps them until the orchestrator is closed.
	JobRetention time.Duration `yaml:"job_retention"`
	LogLevel     string        `yaml:"log_level"`
}

// ServerConfig is the listen side of the HTTP API.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// AllowedOrigin is sent as Access-Control-Allow-Origin.
	AllowedOrigin string `yaml:"allowed_origin"`
}

type CrawlConfig struct {
	// MaxPages caps a single crawl; 0 means unbounded.
	MaxPages int `yaml:"max_pages"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Assessor:  assessor.DefaultConfig(),
		WebClient: webclient.DefaultConfig(),
		Fetcher:   fetcher.DefaultConfig(),
		Tracker:   tracker.DefaultConfig(),
		Report:    report.DefaultConfig(),
		Server: ServerConfig{
			ListenAddr:    ":8080",
			AllowedOrigin: "*",
		},
		Crawl:        CrawlConfig{MaxPages: 200},
		Demo:         demoserver.DefaultConfig(),
		JobRetention: time.Hour,
		LogLevel:     "info",
	}
}

// LoadConfig reads a YAML file over DefaultConfig. An empty path returns the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no component can work with and normalises the
// report format name.
func (c *Config) Validate() error {
	f, err := report.ParseFormat(string(c.Report.Format))
	if err != nil {
		return err
	}
	c.Report.Format = f
	if c.Fetcher.MaxConcurrency < 0 {
		return fmt.Errorf("fetcher.max_concurrency must not be negative")
	}
	if c.Crawl.MaxPages < 0 {
		return fmt.Errorf("crawl.max_pages must not be negative")
	}
	return nil
}
