package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/capital/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List journaled runs or show one run's snapshots",
	Long: `Query runs recorded in a SQLite journal.

Without arguments every run is listed, newest last. With a run id the run
and its snapshots are printed as an Org-mode section.

Examples:
  capital history
  capital history 01HQ3K5Z8X9Y7W6V5T4S3R2Q1P --db ./capital.sqlite`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyDBPath string

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVarP(&historyDBPath, "db", "d", "./capital.sqlite", "path to SQLite journal DB")
}

func runHistory(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(historyDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	if len(args) == 1 {
		run, err := j.GetRun(args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		snaps, err := j.ListSnapshots(run.RunID)
		if err != nil {
			return fmt.Errorf("list snapshots: %w", err)
		}
		fmt.Println(journal.FormatRunOrg(run, snaps))
		return nil
	}

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tACCOUNT\tCURRENCY\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.RunID, r.AccountID, r.Currency, r.StartedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}
