package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/wcag131/internal/fetcher"
	"github.com/raysh454/wcag131/internal/report"
)

// errNothingAudited is returned when every URL in a batch failed.
var errNothingAudited = errors.New("no url could be audited")

func newBatchCmd(e *env) *cobra.Command {
	var flags struct {
		file        string
		crawlDepth  int
		concurrency int
	}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Audit every URL listed in a file",
		Long: "Reads one URL per line (blank lines and # comments are skipped),\n" +
			"audits them concurrently and writes a timestamped one-row-per-URL\n" +
			"summary into the output directory: an .xlsx workbook with\n" +
			"--format xlsx, CSV otherwise.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.concurrency > 0 {
				e.cfg.Fetcher.MaxConcurrency = flags.concurrency
			}
			return runBatch(cmd, e, flags.file, flags.crawlDepth)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.file, "file", "f", "", "File with one URL per line; - for stdin (required)")
	f.IntVar(&flags.crawlDepth, "crawl-depth", 0, "Also audit same-host pages up to this many links away")
	f.IntVar(&flags.concurrency, "concurrency", 0, "Pages fetched at once (default from config)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runBatch(cmd *cobra.Command, e *env, path string, crawlDepth int) (err error) {
	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		fh, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening url list: %w", err)
		}
		defer fh.Close()
		in = fh
	}
	urls, err := readURLs(in)
	if err != nil {
		return err
	}

	orch, err := e.orchestrator()
	if err != nil {
		return err
	}
	defer closeOrch(orch, &err)

	errOut := cmd.ErrOrStderr()
	outcomes, err := orch.AuditURLs(cmd.Context(), urls, crawlDepth, func(done, total int) {
		fmt.Fprintf(errOut, "audited %d/%d\n", done, total)
	})
	if err != nil && outcomes == nil {
		return err
	}

	summary, werr := writeBatchSummary(e.cfg.Report, time.Now(), outcomes)
	if werr != nil {
		return werr
	}

	out := cmd.OutOrStdout()
	audited := 0
	for _, o := range outcomes {
		if o.Report == nil {
			fmt.Fprintf(out, "%s %s: %s\n", stylize("FAIL", e.flags.noColor, colorWarn), o.URL, o.Error)
			continue
		}
		audited++
		failing := o.Report.Failing()
		tag := stylize("OK  ", e.flags.noColor, colorPassed)
		if failing > 0 {
			tag = stylize("BAD ", e.flags.noColor, colorFailed)
		}
		fmt.Fprintf(out, "%s %s: %d failing\n", tag, o.URL, failing)
	}
	fmt.Fprintf(out, "Audited %d of %d pages; summary written to %s\n", audited, len(outcomes), summary)

	if err != nil {
		return err
	}
	if audited == 0 {
		return errNothingAudited
	}
	return nil
}

// readURLs returns the non-empty, non-comment lines of in.
func readURLs(in io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading url list: %w", err)
	}
	if len(urls) == 0 {
		return nil, errors.New("url list is empty")
	}
	return urls, nil
}

// writeBatchSummary writes <Dir>/batch_summary_<timestamp>.xlsx when the
// configured format is xlsx and .csv for every other format.
func writeBatchSummary(rc report.Config, at time.Time, outcomes []fetcher.Outcome) (string, error) {
	if err := os.MkdirAll(rc.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", rc.Dir, err)
	}
	f := report.FormatCSV
	if rc.Format == report.FormatXLSX {
		f = report.FormatXLSX
	}
	path := filepath.Join(rc.Dir, "batch_summary_"+at.Format("20060102_150405")+"."+f.Ext())
	fh, err := os.Create(path)
	if err != nil {
		return "", err
	}
	entries := make([]report.WideEntry, 0, len(outcomes))
	for _, o := range outcomes {
		entries = append(entries, report.WideEntry{URL: o.URL, Report: o.Report, Err: o.Err})
	}
	if err := report.WriteWide(fh, f, entries); err != nil {
		fh.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, fh.Close()
}
