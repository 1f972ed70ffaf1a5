package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded pipeline runs",
		Long: `History lists the most recent runs from the sqlite run history (store.path).
Given a run id it prints that run in full.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hs, err := a.openHistory()
			if err != nil {
				return err
			}
			defer hs.Close()

			if len(args) == 1 {
				run, err := hs.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.out.Value(run, a.format)
			}

			runs, err := hs.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tSTATUS\tSOURCE\tPLAN\tCREATED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.RunID, r.Status, r.Source, short(r.PlanDigest), r.CreatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list")
	return cmd
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	if digest == "" {
		return "-"
	}
	return digest
}
