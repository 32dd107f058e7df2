package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
	ClientRod      Client = "rod"
)

// Config selects and tunes a backend.
type Config struct {
	Client Client `yaml:"client"`
	// Timeout bounds a single fetch, including the wait for network idle.
	Timeout time.Duration `yaml:"timeout"`
	// IdleAfter is how long the network must stay quiet before a rendered page
	// is considered settled. Browser backends only.
	IdleAfter time.Duration `yaml:"idle_after"`
	// MaxIdleWait caps the wait for network idle on pages that never go quiet.
	MaxIdleWait time.Duration `yaml:"max_idle_wait"`
	Headless    bool          `yaml:"headless"`
	UserAgent   string        `yaml:"user_agent"`
	// MaxBodyBytes caps the page size read by the nethttp backend. Zero or
	// negative means DefaultMaxBodyBytes.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
	// BrowserPath overrides the Chrome binary the browser backends launch.
	BrowserPath string `yaml:"browser_path"`
}

// DefaultMaxBodyBytes is the largest page the nethttp backend will read.
const DefaultMaxBodyBytes = 10 << 20

// DefaultConfig renders pages with headless Chrome through chromedp.
func DefaultConfig() Config {
	return Config{
		Client:       ClientChromedp,
		Timeout:      60 * time.Second,
		IdleAfter:    2 * time.Second,
		MaxIdleWait:  15 * time.Second,
		Headless:     true,
		UserAgent:    "wcag131-auditor/1.0",
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}
