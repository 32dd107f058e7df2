package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/raysh454/wcag131/internal/model"
)

var summaryHeader = []string{"URL", "Test Name", "Pass/Fail/N/A", "Confidence (%)", "Issue Details"}

func summaryRecords(rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.URL, r.Test, r.Status, r.Confidence, r.Details}
	}
	return out
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

var detailHeader = []string{"Element Index", "Tag", "Line", "Issue", "Issue Code", "Rule", "Confidence Percentage", "HTML", "Count"}

func writeDetailCSV(w io.Writer, groups []IssueGroup) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailHeader); err != nil {
		return err
	}
	for _, g := range groups {
		f := g.First
		conf := ""
		if f.Confidence != 0 {
			conf = strconv.FormatFloat(f.Confidence, 'f', 2, 64)
		}
		if err := cw.Write([]string{
			strconv.Itoa(f.ElementIndex), f.Tag, strconv.Itoa(f.LineNumber),
			g.Message, g.Code, f.Rule, conf, f.HTMLSnippet, strconv.Itoa(g.Count),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WideEntry is one URL in a batch: its report, or the error that stopped it.
type WideEntry struct {
	URL    string
	Report *model.Report
	Err    error
}

// WriteWide writes one row per URL with status, confidence and details
// columns for every category in model.Categories, as csv or xlsx.
func WriteWide(w io.Writer, f Format, entries []WideEntry) error {
	header := []string{"Tested URL"}
	for _, c := range model.Categories {
		name := strings.TrimSuffix(c.DisplayName(), " Markup")
		header = append(header, c.DisplayName(), name+" Confidence", name+" Details")
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{e.URL}
		for _, c := range model.Categories {
			var res *model.CategoryResult
			if e.Report != nil {
				res = e.Report.Result(c)
			}
			switch {
			case e.Err != nil:
				row = append(row, string(model.StatusError), Percent(0), e.Err.Error())
			case res == nil:
				row = append(row, "", "", "")
			default:
				row = append(row, string(res.Status), Percent(res.Confidence), wideDetails(res.Issues))
			}
		}
		rows = append(rows, row)
	}

	switch f {
	case FormatCSV:
		return writeCSV(w, header, rows)
	case FormatXLSX:
		return writeWorkbook(w, header, rows)
	}
	return fmt.Errorf("%w: %q for the batch summary", ErrUnsupportedFormat, f)
}

func wideDetails(issues []model.Issue) string {
	if len(issues) == 0 {
		return "No issues found"
	}
	lines := make([]string, len(issues))
	for i, is := range issues {
		lines[i] = fmt.Sprintf("Index: %d, Issue: %s, Code: %s, HTML: %s", is.ElementIndex, is.Message, is.Code, is.HTMLSnippet)
	}
	return strings.Join(lines, "\n")
}
