package report_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/report"
)

func issue(idx int, msg string) model.Issue {
	return model.Issue{ElementIndex: idx, Tag: "ul", HTMLSnippet: "<ul></ul>", Message: msg, Code: model.CodeList, Rule: "list-malformed"}
}

func sample(source string) *model.Report {
	return &model.Report{
		ID:             "r1",
		Source:         source,
		ScoringVersion: "test",
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Categories: []model.CategoryReport{
			{Category: model.CategoryHeading, Name: "Heading Markup", Result: &model.CategoryResult{
				Status: model.StatusPassed, Issues: []model.Issue{}, Confidence: 95,
			}},
			{Category: model.CategoryList, Name: "List Markup", Result: &model.CategoryResult{
				Status:     model.StatusMalformed,
				Issues:     []model.Issue{issue(0, "List is malformed. No <li> elements found."), issue(1, "Other | issue"), issue(2, "List is malformed. No <li> elements found.")},
				Confidence: 42.5,
				IssueCount: 3,
			}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]report.Format{"json": report.FormatJSON, "CSV": report.FormatCSV, "md": report.FormatMarkdown, " html ": report.FormatHTML, "xlsx": report.FormatXLSX, "Excel": report.FormatXLSX} {
		got, err := report.ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := report.ParseFormat("pdf"); !errors.Is(err, report.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if err := report.Write(&bytes.Buffer{}, "pdf", sample("x")); !errors.Is(err, report.ErrUnsupportedFormat) {
		t.Errorf("Write with bad format: %v", err)
	}
	if report.FormatMarkdown.Ext() != "md" || report.FormatHTML.Ext() != "html" || report.FormatXLSX.Ext() != "xlsx" {
		t.Error("unexpected extensions")
	}
}

func TestGroupIssues_KeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()
	groups := report.GroupIssues(sample("x").Result(model.CategoryList).Issues)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Count != 2 || groups[0].First.ElementIndex != 0 {
		t.Errorf("first group: %+v", groups[0])
	}
	if got := groups[0].Detail(); got != "List is malformed. No <li> elements found. (Occurred 2 times)" {
		t.Errorf("Detail() = %q", got)
	}
	if len(report.GroupIssues(nil)) != 0 {
		t.Error("expected no groups for nil issues")
	}
}

func TestWrite_CSVSummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := report.Write(&buf, report.FormatCSV, sample("https://a.test/")); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"URL", "Test Name", "Pass/Fail/N/A", "Confidence (%)", "Issue Details"},
		{"https://a.test/", "Heading Markup", "Passed", "95.00%", "No issues found."},
		{"https://a.test/", "List Markup", "Malformed", "42.50%", "List is malformed. No <li> elements found. (Occurred 2 times)"},
		{"https://a.test/", "List Markup", "Malformed", "42.50%", "Other | issue (Occurred 1 times)"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()
	var one bytes.Buffer
	if err := report.Write(&one, report.FormatJSON, sample("x")); err != nil {
		t.Fatal(err)
	}
	var got model.Report
	if err := json.Unmarshal(one.Bytes(), &got); err != nil {
		t.Fatalf("single report should be an object: %v", err)
	}
	if got.ID != "r1" || len(got.Categories) != 2 {
		t.Errorf("decoded %+v", got)
	}

	var many bytes.Buffer
	if err := report.Write(&many, report.FormatJSON, sample("x"), sample("y")); err != nil {
		t.Fatal(err)
	}
	var list []model.Report
	if err := json.Unmarshal(many.Bytes(), &list); err != nil || len(list) != 2 {
		t.Fatalf("expected array of 2, got %d (%v)", len(list), err)
	}
}

func TestMarkdown_EscapesAndGroups(t *testing.T) {
	t.Parallel()
	md := report.Markdown(sample("https://a.test/"))
	for _, want := range []string{
		"# WCAG 1.3.1 audit: https://a.test/",
		"| Heading Markup | Passed | 95.00% | 0 |",
		"| List Markup | Malformed | 42.50% | 3 |",
		"## List Markup",
		"- `1.3.1 (b)` List is malformed. No \\<li\\> elements found. (Occurred 2 times)",
		`Other \| issue`,
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Heading Markup") {
		t.Error("passing categories should not get an issue section")
	}
}

func TestWrite_HTMLIsSanitized(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := report.Write(&buf, report.FormatHTML, sample(`https://a.test/<script>alert(1)</script>`)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Fatalf("script tag leaked into html:\n%s", out)
	}
	for _, want := range []string{"<table>", "<h2>List Markup</h2>", "&lt;li&gt;", "<title>"} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestWriteDetails_FolderLayout(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths, err := report.WriteDetails(dir, sample("x"))
	if err != nil {
		t.Fatalf("WriteDetails: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 files, got %v", paths)
	}

	csvPath := filepath.Join(dir, "List_Markup", "List_Markup_details.csv")
	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][3] != "List is malformed. No <li> elements found." || rows[1][8] != "2" {
		t.Errorf("unexpected detail rows %v", rows)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "Heading_Markup", "Heading_Markup_details.json"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("passing category should export an empty list, got %s", raw)
	}
}

func TestWriteWide_OneRowPerURL(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := report.WriteWide(&buf, report.FormatCSV, wideEntries())
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || len(rows[0]) != 1+3*len(model.Categories) {
		t.Fatalf("unexpected shape %dx%d", len(rows), len(rows[0]))
	}
	if rows[0][1] != "Heading Markup" || rows[0][2] != "Heading Confidence" || rows[0][3] != "Heading Details" {
		t.Errorf("header = %v", rows[0][:4])
	}
	if rows[1][1] != "Passed" || rows[1][3] != "No issues found" {
		t.Errorf("heading cells = %v", rows[1][1:4])
	}
	if !strings.HasPrefix(rows[1][6], "Index: 0, Issue: List is malformed.") {
		t.Errorf("list details = %q", rows[1][6])
	}
	if rows[1][7] != "" {
		t.Errorf("categories not in the report should be blank, got %q", rows[1][7])
	}
	if rows[2][1] != "Error" || rows[2][2] != "0.00%" || rows[2][3] != "fetch failed" {
		t.Errorf("error row = %v", rows[2][:4])
	}
}

func wideEntries() []report.WideEntry {
	return []report.WideEntry{
		{URL: "https://a.test/", Report: sample("https://a.test/")},
		{URL: "https://down.test/", Err: errors.New("fetch failed")},
	}
}

// readSheet opens an xlsx workbook and returns the rows of its Summary sheet.
func readSheet(t *testing.T, raw []byte) [][]string {
	t.Helper()
	x, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer x.Close()
	if sheets := x.GetSheetList(); len(sheets) != 1 || sheets[0] != "Summary" {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := x.GetRows("Summary")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	return rows
}

func TestWrite_XLSXMatchesCSV(t *testing.T) {
	t.Parallel()
	r := sample("https://example.com/")
	var csvBuf, xlsxBuf bytes.Buffer
	if err := report.Write(&csvBuf, report.FormatCSV, r); err != nil {
		t.Fatal(err)
	}
	if err := report.Write(&xlsxBuf, report.FormatXLSX, r); err != nil {
		t.Fatal(err)
	}
	want, err := csv.NewReader(&csvBuf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	got := readSheet(t, xlsxBuf.Bytes())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("xlsx cells differ from csv (-csv +xlsx):\n%s", diff)
	}
}

func TestWriteWide_XLSX(t *testing.T) {
	t.Parallel()
	var csvBuf, xlsxBuf bytes.Buffer
	if err := report.WriteWide(&csvBuf, report.FormatCSV, wideEntries()); err != nil {
		t.Fatal(err)
	}
	if err := report.WriteWide(&xlsxBuf, report.FormatXLSX, wideEntries()); err != nil {
		t.Fatal(err)
	}
	want, err := csv.NewReader(&csvBuf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	got := readSheet(t, xlsxBuf.Bytes())
	if len(got) != 3 || got[0][0] != "Tested URL" || got[2][1] != "Error" {
		t.Fatalf("rows = %v", got)
	}
	// GetRows drops trailing empty cells; compare the populated prefix.
	for i := range want {
		if diff := cmp.Diff(want[i][:len(got[i])], got[i]); diff != "" {
			t.Errorf("row %d differs (-csv +xlsx):\n%s", i, diff)
		}
		if rest := strings.Join(want[i][len(got[i]):], ""); rest != "" {
			t.Errorf("row %d lost cells %q", i, rest)
		}
	}

	if err := report.WriteWide(&bytes.Buffer{}, report.FormatJSON, wideEntries()); !errors.Is(err, report.ErrUnsupportedFormat) {
		t.Errorf("json batch summary: %v", err)
	}
}

func TestDirName(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"https://example.com/a/b": "example.com_a_b",
		"http://example.com/":     "example.com",
		"page.html":               "page.html",
		"":                        "page",
	}
	for in, want := range cases {
		if got := report.DirName(in); got != want {
			t.Errorf("DirName(%q) = %q, want %q", in, got, want)
		}
	}
}
