// Package cli is the wcag131 command line: single and batch audits, audit
// history, and the HTTP and MCP front ends.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raysh454/wcag131/internal/app"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/report"
	"github.com/raysh454/wcag131/internal/webclient"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// env is what every command shares once the persistent flags are parsed.
type env struct {
	flags struct {
		configPath string
		noColor    bool
		client     string
		outputDir  string
		format     string
		logLevel   string
	}
	cfg    *app.Config
	logger logging.Logger
}

// NewRootCmd builds the wcag131 command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "wcag131",
		Short: "Audit HTML markup against WCAG 1.3.1 Info and Relationships",
		Long: "wcag131 checks headings, lists, tables, blockquotes, landmarks,\n" +
			"structural elements and forms, scores each category and keeps\n" +
			"an audit history per URL.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load(cmd)
		},
	}
	root.Version = Version

	pf := root.PersistentFlags()
	pf.StringVar(&e.flags.configPath, "config", "", "YAML config file")
	pf.BoolVar(&e.flags.noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&e.flags.client, "client", "", "Fetch backend: nethttp, chromedp or rod")
	pf.StringVar(&e.flags.outputDir, "output-dir", "", "Directory for report files")
	pf.StringVar(&e.flags.format, "format", "", "Report format: json, csv, xlsx, markdown or html")
	pf.StringVar(&e.flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newAuditCmd(e),
		newFileCmd(e),
		newBatchCmd(e),
		newHistoryCmd(e),
		newDiffCmd(e),
		newServeCmd(e),
		newMCPCmd(e),
	)
	return root
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// load reads the config file and applies flag overrides on top of it.
func (e *env) load(cmd *cobra.Command) error {
	cfg, err := app.LoadConfig(e.flags.configPath)
	if err != nil {
		return err
	}
	if e.flags.client != "" {
		cfg.WebClient.Client = webclient.Client(e.flags.client)
	}
	if e.flags.outputDir != "" {
		cfg.Report.Dir = e.flags.outputDir
	}
	if e.flags.format != "" {
		f, err := report.ParseFormat(e.flags.format)
		if err != nil {
			return err
		}
		cfg.Report.Format = f
	}
	if e.flags.logLevel != "" {
		cfg.LogLevel = e.flags.logLevel
	}
	e.cfg = cfg
	// stdout carries results and, for the mcp command, the protocol
	e.logger = logging.NewWriterLogger("wcag131", cmd.ErrOrStderr(), cfg.LogLevel)
	return nil
}

func (e *env) orchestrator() (*app.Orchestrator, error) {
	orch, err := app.NewOrchestrator(e.cfg, e.logger)
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}
	return orch, nil
}

// closeOrch closes orch and keeps the first error seen.
func closeOrch(orch *app.Orchestrator, errp *error) {
	if err := orch.Close(); err != nil && *errp == nil {
		*errp = err
	}
}
