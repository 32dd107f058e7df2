package checks

import (
	"math"

	"github.com/raysh454/wcag131/internal/model"
)

// Weights maps a rule id to the confidence penalty each of its issues costs.
// Rules missing from the table cost nothing.
type Weights map[string]float64

// Penalty sums the weights of issues.
func (w Weights) Penalty(issues []model.Issue) float64 {
	total := 0.0
	for _, is := range issues {
		total += w[is.Rule]
	}
	return total
}

// Count returns how many issues were produced by rule id.
func Count(issues []model.Issue, id string) int {
	n := 0
	for _, is := range issues {
		if is.Rule == id {
			n++
		}
	}
	return n
}

func (w Weights) merge(over map[string]float64) Weights {
	out := make(Weights, len(w)+len(over))
	for k, v := range w {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// ratio is n/total, 0 when total is 0.
func ratio(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// DefaultWeights returns a copy of the built-in penalty table for c.
func DefaultWeights(c model.Category) Weights {
	return defaultWeights[c].merge(nil)
}

var defaultWeights = map[model.Category]Weights{
	model.CategoryHeading: {
		ruleMissingARIALevel: 10,
		ruleInvalidARIALevel: 10,
		ruleSkippedLevel:     5,
	},
	model.CategoryList: {
		ruleListMalformed: 20,
		ruleListNesting:   15,
		ruleListOrphan:    10,
	},
	model.CategoryBlockquote: {
		ruleQuoteAttribution: 20,
		ruleQuoteARIA:        15,
	},
	model.CategoryLandmark: {
		ruleLandmarkEmpty:  20,
		ruleNavLinks:       10,
		ruleMainContent:    10,
		ruleHeaderHeading:  10,
		ruleFooterContent:  10,
		ruleAsideContent:   10,
		ruleSectionContent: 10,
		ruleArticleContent: 10,
		ruleFormInputs:     10,
		ruleFormLabels:     10,
	},
	model.CategoryStructural: {
		ruleStructEmpty:         15,
		ruleStructRole:          10,
		ruleStructContent:       20,
		ruleMissingRegion:       15,
		ruleMissingLandmarkRole: 10,
	},
	model.CategoryForm: {
		ruleFormMissingLabel: 20,
		ruleFormMissingName:  15,
		ruleFormNotGrouped:   10,
		ruleFormMissingARIA:  10,
	},
}
