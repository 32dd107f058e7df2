package app

import (
	"fmt"

	"github.com/raysh454/wcag131/internal/assessor"
	"github.com/raysh454/wcag131/internal/fetcher"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/tracker"
	"github.com/raysh454/wcag131/internal/webclient"
)

// Components are the long-lived services an Orchestrator drives.
type Components struct {
	Assessor  assessor.Assessor
	Tracker   tracker.Tracker
	WebClient webclient.WebClient
	Fetcher   *fetcher.Fetcher
}

// NewComponents builds the assessor, tracker and web client described by cfg.
func NewComponents(cfg *Config, logger logging.Logger) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	a, err := assessor.NewHeuristicsAssessor(&cfg.Assessor, logger)
	if err != nil {
		return nil, fmt.Errorf("new assessor: %w", err)
	}

	tr, err := tracker.NewSQLiteTracker(logger, &cfg.Tracker)
	if err != nil {
		return nil, fmt.Errorf("new tracker: %w", err)
	}

	wc, err := webclient.NewWebClient(cfg.WebClient, logger)
	if err != nil {
		tr.Close()
		return nil, fmt.Errorf("new webclient: %w", err)
	}

	comps, err := AssembleComponents(cfg, a, tr, wc, logger)
	if err != nil {
		tr.Close()
		_ = wc.Close()
		return nil, err
	}
	return comps, nil
}

// AssembleComponents wires already-built services together. tr may be nil,
// in which case audits are not stored.
func AssembleComponents(cfg *Config, a assessor.Assessor, tr tracker.Tracker, wc webclient.WebClient, logger logging.Logger) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	f, err := fetcher.New(cfg.Fetcher, tr, wc, a, logger)
	if err != nil {
		return nil, fmt.Errorf("new fetcher: %w", err)
	}
	return &Components{
		Assessor:  a,
		Tracker:   tr,
		WebClient: wc,
		Fetcher:   f,
	}, nil
}

// Close releases the web client, tracker and assessor.
// Any ongoing fetch operations will be stopped.
func (c *Components) Close() error {
	var firstErr error
	if c.WebClient != nil {
		if err := c.WebClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close webclient: %w", err)
		}
	}
	if c.Tracker != nil {
		if err := c.Tracker.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close tracker: %w", err)
		}
	}
	if c.Assessor != nil {
		if err := c.Assessor.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close assessor: %w", err)
		}
	}
	return firstErr
}
