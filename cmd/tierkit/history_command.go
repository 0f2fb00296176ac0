package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tierkit/internal/catalog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent processing runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Catalog.Enabled {
				return fmt.Errorf("catalog is disabled in the configuration")
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			headers := []string{"ID", "When", "Kind", "Transcript", "Segments", "Outputs", "Status"}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				status := run.Status
				if run.Status == catalog.StatusFailed && run.Error != "" {
					status = fmt.Sprintf("%s (%s)", run.Status, run.Error)
				}
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
					run.Kind,
					run.Transcript,
					strconv.Itoa(run.Segments),
					strconv.Itoa(run.Outputs),
					status,
				})
			}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			fmt.Fprintln(out, renderRuns(out, headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}
