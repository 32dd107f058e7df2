package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/report"
)

const (
	colorPassed = lipgloss.Color("42")
	colorWarn   = lipgloss.Color("220")
	colorFailed = lipgloss.Color("196")
	colorMuted  = lipgloss.Color("244")
	colorTitle  = lipgloss.Color("39")

	nameWidth   = 20
	statusWidth = 16
)

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

// pad left-aligns text in a column of width cells.
func pad(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}

func statusColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusPassed:
		return colorPassed
	case model.StatusMalformed:
		return colorFailed
	case model.StatusError:
		return colorWarn
	}
	return colorMuted
}

// printSummary writes one line per category followed by its grouped issues.
func printSummary(w io.Writer, r *model.Report, noColor bool) {
	fmt.Fprintln(w, stylize("Audit "+r.ID+" of "+r.Source, noColor, colorTitle))
	for _, cr := range r.Categories {
		res := cr.Result
		if res == nil {
			continue
		}
		fmt.Fprintf(w, "  %s%s%s\n",
			pad(cr.Name, nameWidth),
			stylize(pad(string(res.Status), statusWidth), noColor, statusColor(res.Status)),
			report.Percent(res.Confidence))
		for _, g := range report.GroupIssues(res.Issues) {
			fmt.Fprintln(w, stylize("      - "+g.Detail(), noColor, colorMuted))
		}
	}
	failing := r.Failing()
	line := fmt.Sprintf("%d of %d categories failing", failing, len(r.Categories))
	color := colorPassed
	if failing > 0 {
		color = colorFailed
	}
	fmt.Fprintln(w, stylize(line, noColor, color))
}

// printHistory lists stored audits newest first.
func printHistory(w io.Writer, source string, list []*model.ReportSummary, noColor bool) {
	if len(list) == 0 {
		fmt.Fprintf(w, "No audits recorded for %s\n", source)
		return
	}
	fmt.Fprintln(w, stylize(pad("ID", 38)+pad("CREATED", 22)+pad("FAILING", 9)+"ISSUES", noColor, colorTitle))
	for _, s := range list {
		failing := stylize(pad(fmt.Sprint(s.Failing), 9), noColor, colorPassed)
		if s.Failing > 0 {
			failing = stylize(pad(fmt.Sprint(s.Failing), 9), noColor, colorFailed)
		}
		fmt.Fprintf(w, "%s%s%s%d\n",
			pad(s.ID, 38),
			pad(s.CreatedAt.Local().Format("2006-01-02 15:04:05"), 22),
			failing,
			s.IssueCount)
	}
}

// printDiff shows status and confidence movement per category with the
// issue lines that appeared or disappeared.
func printDiff(w io.Writer, d *model.AuditDiff, noColor bool) {
	base := d.BaseID
	if base == "" {
		base = "(none)"
	}
	fmt.Fprintln(w, stylize("Diff "+base+" -> "+d.HeadID, noColor, colorTitle))
	if !d.Changed() {
		fmt.Fprintln(w, stylize("No changes", noColor, colorMuted))
		return
	}
	for _, c := range d.Categories {
		status := string(c.HeadStatus)
		if c.BaseStatus != c.HeadStatus {
			status = string(c.BaseStatus) + " -> " + string(c.HeadStatus)
		}
		delta := fmt.Sprintf("%+.2f", c.ConfidenceDelta)
		deltaColor := colorMuted
		switch {
		case c.ConfidenceDelta > 0:
			deltaColor = colorPassed
		case c.ConfidenceDelta < 0:
			deltaColor = colorFailed
		}
		fmt.Fprintf(w, "  %s%s%s\n",
			pad(c.Category.DisplayName(), nameWidth),
			pad(status, 2*statusWidth),
			stylize(delta, noColor, deltaColor))
		for _, ch := range c.Chunks {
			for _, line := range strings.Split(strings.TrimRight(ch.Content, "\n"), "\n") {
				if ch.Type == "added" {
					fmt.Fprintln(w, stylize("      + "+line, noColor, colorFailed))
				} else {
					fmt.Fprintln(w, stylize("      - "+line, noColor, colorPassed))
				}
			}
		}
	}
}
