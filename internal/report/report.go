// Package report renders audit reports for people and spreadsheets: json,
// csv, xlsx, markdown and html summaries, per-category detail folders and
// the wide one-row-per-URL batch summary.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/raysh454/wcag131/internal/model"
)

// ErrUnsupportedFormat is returned for any format not listed in Formats.
var ErrUnsupportedFormat = errors.New("report: unsupported format")

type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatHTML, FormatXLSX}

// ParseFormat accepts a format name or common alias ("md", "excel").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Ext is the file extension for f, without the dot.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

type Config struct {
	// Dir is where the CLI writes summaries and detail folders.
	Dir    string `yaml:"dir"`
	Format Format `yaml:"format"`
}

func DefaultConfig() Config {
	return Config{Dir: "output", Format: FormatCSV}
}

// Write renders reports in format f. JSON output is a single object when
// exactly one report is given and an array otherwise.
func Write(w io.Writer, f Format, reports ...*model.Report) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		if reports == nil {
			reports = []*model.Report{}
		}
		return enc.Encode(reports)
	case FormatCSV:
		return writeCSV(w, summaryHeader, summaryRecords(SummaryRows(reports...)))
	case FormatXLSX:
		return writeWorkbook(w, summaryHeader, summaryRecords(SummaryRows(reports...)))
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(reports...))
		return err
	case FormatHTML:
		return writeHTML(w, reports...)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}
