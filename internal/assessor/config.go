package assessor

import (
	"errors"

	"github.com/raysh454/wcag131/internal/model"
)

// DefaultScoringVersion tags reports produced by the current weight tables.
const DefaultScoringVersion = "1.3.1-heuristics/v1"

// Config holds runtime settings for the assessor.
type Config struct {
	// ScoringVersion allows safe evolution of scoring logic.
	ScoringVersion string `yaml:"scoring_version" json:"scoring_version"`

	// Categories limits the audit; empty runs all of them in report order.
	Categories []model.Category `yaml:"categories" json:"categories"`

	// Parallel runs the category checks concurrently on the shared document.
	Parallel bool `yaml:"parallel" json:"parallel"`

	SnippetLen int `yaml:"snippet_len" json:"snippet_len"`

	// RuleWeights overrides penalty weights per category and rule id.
	RuleWeights map[model.Category]map[string]float64 `yaml:"rule_weights" json:"rule_weights"`
}

// DefaultConfig runs all categories in parallel with the default weights.
func DefaultConfig() Config {
	return Config{
		ScoringVersion: DefaultScoringVersion,
		Parallel:       true,
		SnippetLen:     300,
	}
}

// ErrNilConfig is returned by constructors given no config.
var ErrNilConfig = errors.New("assessor: nil config")
