package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/raysh454/wcag131/internal/utils"
)

func newHistoryCmd(e *env) *cobra.Command {
	var flags struct {
		limit int
	}
	cmd := &cobra.Command{
		Use:   "history <url|path>",
		Short: "List stored audits of a page, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			source := storedSource(args[0])
			orch, err := e.orchestrator()
			if err != nil {
				return err
			}
			defer closeOrch(orch, &err)

			list, err := orch.ListAudits(cmd.Context(), source, flags.limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), source, list, e.flags.noColor)
			return nil
		},
	}
	cmd.Flags().IntVar(&flags.limit, "limit", 20, "Maximum audits to list; 0 for all")
	return cmd
}

// storedSource maps a command line argument to the source a report was
// stored under: files keep their path, URLs are canonicalized.
func storedSource(arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	if c, err := utils.Canonicalize(arg, utils.AuditOptions); err == nil {
		return c
	}
	return arg
}

func newDiffCmd(e *env) *cobra.Command {
	var flags struct {
		json bool
	}
	cmd := &cobra.Command{
		Use:   "diff <base-id> <head-id>",
		Short: "Compare two stored audits category by category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			orch, err := e.orchestrator()
			if err != nil {
				return err
			}
			defer closeOrch(orch, &err)

			d, err := orch.DiffAudits(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if flags.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			printDiff(cmd.OutOrStdout(), d, e.flags.noColor)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the diff as JSON")
	return cmd
}
