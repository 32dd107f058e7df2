package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/raysh454/wcag131/internal/model"
)

var mdEscaper = strings.NewReplacer(`|`, `\|`, `<`, `\<`, `>`, `\>`, "\n", " ")

// Markdown renders reports as a document with a status table and the grouped
// issues of each failing category.
func Markdown(reports ...*model.Report) string {
	var b strings.Builder
	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "# WCAG 1.3.1 audit: %s\n\n", mdEscaper.Replace(r.Source))
		if !r.CreatedAt.IsZero() {
			fmt.Fprintf(&b, "Audited %s (scoring %s).\n\n", r.CreatedAt.Format("2006-01-02 15:04:05 MST"), r.ScoringVersion)
		}
		b.WriteString("| Test | Status | Confidence | Issues |\n|---|---|---:|---:|\n")
		for _, cr := range r.Categories {
			if cr.Result == nil {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %d |\n", cr.Name, cr.Result.Status, Percent(cr.Result.Confidence), cr.Result.IssueCount)
		}
		for _, cr := range r.Categories {
			if cr.Result == nil || len(cr.Result.Issues) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n## %s\n\n", cr.Name)
			for _, g := range GroupIssues(cr.Result.Issues) {
				fmt.Fprintf(&b, "- `%s` %s\n", g.Code, mdEscaper.Replace(g.Detail()))
			}
		}
	}
	return b.String()
}

var (
	md     = goldmark.New(goldmark.WithExtensions(extension.Table))
	policy = bluemonday.UGCPolicy()
)

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; }
</style>
</head>
<body>
%s</body>
</html>
`

func writeHTML(w io.Writer, reports ...*model.Report) error {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(reports...)), &buf); err != nil {
		return fmt.Errorf("report: render markdown: %w", err)
	}
	title := "WCAG 1.3.1 audit"
	if len(reports) == 1 {
		title += ": " + reports[0].Source
	}
	_, err := fmt.Fprintf(w, htmlPage, html.EscapeString(title), policy.SanitizeBytes(buf.Bytes()))
	return err
}
