package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raysh454/wcag131/internal/model"
)

var dirEscaper = strings.NewReplacer("http://", "", "https://", "", "/", "_", "\\", "_", ":", "_", "?", "_", "*", "_", "\"", "_", "<", "_", ">", "_", "|", "_")

// DirName turns a URL or path into a single directory name.
func DirName(source string) string {
	name := strings.Trim(dirEscaper.Replace(strings.TrimSpace(source)), "_.")
	if name == "" {
		return "page"
	}
	return name
}

// TestDirName is the folder name used for a category, e.g. "Heading_Markup".
func TestDirName(c model.Category) string {
	return strings.ReplaceAll(c.DisplayName(), " ", "_")
}

// WriteDetails writes <dir>/<Test_Name>/<Test_Name>_details.csv and .json
// with the grouped issues of every category in r, and returns the paths
// written.
func WriteDetails(dir string, r *model.Report) ([]string, error) {
	var written []string
	for _, cr := range r.Categories {
		if cr.Result == nil {
			continue
		}
		name := TestDirName(cr.Category)
		folder := filepath.Join(dir, name)
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return written, fmt.Errorf("report: create %s: %w", folder, err)
		}
		groups := GroupIssues(cr.Result.Issues)

		csvPath := filepath.Join(folder, name+"_details.csv")
		if err := writeFile(csvPath, func(f *os.File) error { return writeDetailCSV(f, groups) }); err != nil {
			return written, err
		}
		written = append(written, csvPath)

		jsonPath := filepath.Join(folder, name+"_details.json")
		if err := writeFile(jsonPath, func(f *os.File) error {
			enc := json.NewEncoder(f)
			enc.SetIndent("", "    ")
			return enc.Encode(groups)
		}); err != nil {
			return written, err
		}
		written = append(written, jsonPath)
	}
	return written, nil
}

// WriteFile renders reports into path in format f.
func WriteFile(path string, f Format, reports ...*model.Report) error {
	if _, err := ParseFormat(string(f)); err != nil {
		return err
	}
	return writeFile(path, func(out *os.File) error { return Write(out, f, reports...) })
}

func writeFile(path string, fill func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return f.Close()
}
