package report

import (
	"fmt"

	"github.com/raysh454/wcag131/internal/model"
)

const noIssues = "No issues found."

// IssueGroup collects issues that share a message. First is the earliest
// occurrence in document order.
type IssueGroup struct {
	Message string      `json:"issue"`
	Code    string      `json:"issue_code"`
	Count   int         `json:"count"`
	First   model.Issue `json:"first"`
}

// Detail is the summary line for the group.
func (g IssueGroup) Detail() string {
	return fmt.Sprintf("%s (Occurred %d times)", g.Message, g.Count)
}

// GroupIssues groups issues by message, in order of first appearance.
func GroupIssues(issues []model.Issue) []IssueGroup {
	out := make([]IssueGroup, 0)
	at := make(map[string]int)
	for _, is := range issues {
		if i, ok := at[is.Message]; ok {
			out[i].Count++
			continue
		}
		at[is.Message] = len(out)
		out = append(out, IssueGroup{Message: is.Message, Code: is.Code, Count: 1, First: is})
	}
	return out
}

// Row is one line of the long summary: one per grouped issue, or one per
// category when it has none.
type Row struct {
	URL        string
	Test       string
	Status     string
	Confidence string
	Details    string
}

// SummaryRows flattens reports into summary rows in category order.
func SummaryRows(reports ...*model.Report) []Row {
	var rows []Row
	for _, r := range reports {
		for _, cr := range r.Categories {
			res := cr.Result
			if res == nil {
				continue
			}
			base := Row{URL: r.Source, Test: cr.Name, Status: string(res.Status), Confidence: Percent(res.Confidence)}
			groups := GroupIssues(res.Issues)
			if len(groups) == 0 {
				base.Details = noIssues
				rows = append(rows, base)
				continue
			}
			for _, g := range groups {
				row := base
				row.Details = g.Detail()
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// Percent formats a confidence score the way every report shows it.
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
