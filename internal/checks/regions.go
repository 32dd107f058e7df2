package checks

import (
	"fmt"

	"github.com/raysh454/wcag131/internal/dom"
	"github.com/raysh454/wcag131/internal/model"
)

const (
	ruleMissingRegion       = "missing-region"
	ruleMissingLandmarkRole = "missing-landmark-role"
)

var (
	requiredRegions = []string{"header", "nav", "main", "footer", "aside"}
	// Only explicit role attributes count; implicit roles of native elements do not.
	requiredRoles = []string{"banner", "navigation", "main", "contentinfo"}
)

// pageCompleteness reports each required region tag and landmark role the
// document lacks. The issues are not tied to any element.
func pageCompleteness(doc *dom.Document, code string) []model.Issue {
	var out []model.Issue
	for _, tag := range requiredRegions {
		if !doc.Has(tag) {
			out = append(out, documentIssue(ruleMissingRegion, code,
				fmt.Sprintf("Page is missing a <%s> region.", tag)))
		}
	}
	for _, role := range requiredRoles {
		if !doc.HasRole(role) {
			out = append(out, documentIssue(ruleMissingLandmarkRole, code,
				fmt.Sprintf("Page is missing a landmark with role=%q.", role)))
		}
	}
	return out
}

// isEmpty is true for elements with neither text nor element children.
func isEmpty(e *dom.Element) bool {
	return e.Text() == "" && e.ChildCount() == 0
}
