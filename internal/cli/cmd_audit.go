package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/report"
	"github.com/raysh454/wcag131/internal/utils"
)

func newAuditCmd(e *env) *cobra.Command {
	var flags struct {
		noFiles bool
	}
	cmd := &cobra.Command{
		Use:   "audit [url]",
		Short: "Fetch a page and audit it",
		Long: "Fetches the page, audits it and stores the report. Unless --no-files\n" +
			"is given, per-category detail files and a summary are written under\n" +
			"<output-dir>/<page>/. Prompts for the URL when none is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, e, args, flags.noFiles)
		},
	}
	cmd.Flags().BoolVar(&flags.noFiles, "no-files", false, "Only print the summary")
	return cmd
}

func runAudit(cmd *cobra.Command, e *env, args []string, noFiles bool) (err error) {
	out := cmd.OutOrStdout()
	target := ""
	if len(args) == 1 {
		target = args[0]
	} else {
		if target, err = promptURL(cmd.InOrStdin(), out); err != nil {
			return err
		}
	}

	orch, err := e.orchestrator()
	if err != nil {
		return err
	}
	defer closeOrch(orch, &err)

	rep, err := orch.AuditURL(cmd.Context(), target)
	if rep == nil {
		return err
	}
	if err != nil {
		e.logger.Warn("report not stored", logging.F("source", rep.Source), logging.F("error", err.Error()))
	}

	if !noFiles {
		dir, n, err := writeAuditFiles(e.cfg.Report, rep)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d files to %s\n", n, dir)
	}
	printSummary(out, rep, e.flags.noColor)
	return nil
}

// promptURL asks for a URL on in. An empty answer is an error.
func promptURL(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the URL to test: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading url: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", utils.ErrEmptyURL
	}
	return line, nil
}

// writeAuditFiles writes the per-category details and a summary in the
// configured format into <Dir>/<page>/, returning that directory and the
// number of files written.
func writeAuditFiles(rc report.Config, rep *model.Report) (string, int, error) {
	dir := filepath.Join(rc.Dir, report.DirName(rep.Source))
	paths, err := report.WriteDetails(dir, rep)
	if err != nil {
		return dir, len(paths), err
	}
	summary := filepath.Join(dir, "summary."+rc.Format.Ext())
	if err := report.WriteFile(summary, rc.Format, rep); err != nil {
		return dir, len(paths), err
	}
	return dir, len(paths) + 1, nil
}

func newFileCmd(e *env) *cobra.Command {
	var flags struct {
		source string
		output string
	}
	cmd := &cobra.Command{
		Use:   "file <path|->",
		Short: "Audit an HTML file, or stdin when the path is -",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd, e, args[0], flags.source, flags.output)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.source, "source", "", "Name stored with the report (default: the path)")
	f.StringVarP(&flags.output, "output", "o", "", "Write the full report here in --format; - for stdout")
	return cmd
}

func runFile(cmd *cobra.Command, e *env, path, source, output string) (err error) {
	var html []byte
	if path == "-" {
		html, err = io.ReadAll(cmd.InOrStdin())
		if source == "" {
			source = "stdin"
		}
	} else {
		html, err = os.ReadFile(path)
		if source == "" {
			source = path
		}
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	orch, err := e.orchestrator()
	if err != nil {
		return err
	}
	defer closeOrch(orch, &err)

	rep, err := orch.AuditHTML(cmd.Context(), html, source)
	if rep == nil {
		return err
	}
	if err != nil {
		e.logger.Warn("report not stored", logging.F("source", source), logging.F("error", err.Error()))
	}

	out := cmd.OutOrStdout()
	switch output {
	case "":
		printSummary(out, rep, e.flags.noColor)
	case "-":
		return report.Write(out, e.cfg.Report.Format, rep)
	default:
		if err := report.WriteFile(output, e.cfg.Report.Format, rep); err != nil {
			return err
		}
		printSummary(out, rep, e.flags.noColor)
	}
	return nil
}
