package model

import "time"

// CategoryReport pairs a category with its result.
type CategoryReport struct {
	Category Category        `json:"category"`
	Name     string          `json:"name"`
	Result   *CategoryResult `json:"result"`
}

// Report is the full audit of one document.
type Report struct {
	// ID is assigned when the report is created and kept when it is stored.
	ID string `json:"id"`
	// Source is the URL or file path the HTML came from.
	Source         string           `json:"source"`
	StatusCode     int              `json:"status_code,omitempty"`
	ScoringVersion string           `json:"scoring_version"`
	CreatedAt      time.Time        `json:"created_at"`
	Categories     []CategoryReport `json:"categories"`
}

// Result returns the result for c, or nil when the category was not run.
func (r *Report) Result(c Category) *CategoryResult {
	if r == nil {
		return nil
	}
	for _, cr := range r.Categories {
		if cr.Category == c {
			return cr.Result
		}
	}
	return nil
}

// Failing counts categories whose status is Malformed or Error.
func (r *Report) Failing() int {
	n := 0
	for _, cr := range r.Categories {
		if cr.Result != nil && (cr.Result.Status == StatusMalformed || cr.Result.Status == StatusError) {
			n++
		}
	}
	return n
}

// ReportSummary is the list view of a stored report.
type ReportSummary struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	Failing    int       `json:"failing"`
	IssueCount int       `json:"issue_count"`
}
