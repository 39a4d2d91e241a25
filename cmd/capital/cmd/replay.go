package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/capital/journal"
	"github.com/rustyeddy/capital/ledger"
	"github.com/rustyeddy/capital/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an event stream from CSV into the ledger",
	Long: `Replay ledger events from a CSV file and journal every snapshot.

The account is initialized from the configured balances unless the file
starts with an INITIALIZED row of its own.

Examples:
  capital replay --events data/events.csv
  capital replay --config capital.yaml --events data/events.csv --json`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

var (
	replayEventsPath string
	replayDBPath     string
	replayJSON       bool
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayEventsPath, "events", "e", "", "CSV file of events (required)")
	replayCmd.Flags().StringVarP(&replayDBPath, "db", "d", "", "SQLite journal path; overrides the configured journal")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "print the final state as JSON")
	_ = replayCmd.MarkFlagRequired("events")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if replayDBPath != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = replayDBPath
	}
	log := newLogger(cfg, "replay")

	feed, err := replay.OpenCSVFeed(replayEventsPath)
	if err != nil {
		return fmt.Errorf("open events: %w", err)
	}
	defer feed.Close()

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &replay.Runner{
		Journal:   j,
		Log:       log,
		AccountID: cfg.Account.ID,
		Currency:  cfg.Account.Currency,
	}
	s, stats, err := r.Run(ctx, ledger.New(), newSeededSource(feed, cfg.Account.Overrides()))
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	if replayJSON {
		return printStateJSON(r.RunID, s)
	}

	fmt.Printf("Run %s (%s, %s)\n", r.RunID, cfg.Account.ID, cfg.Account.Currency)
	fmt.Printf("  Events:     %d\n", total(stats.Events))
	fmt.Printf("  Snapshots:  %d\n", stats.Snapshots)
	printState(s, cfg.Account.Currency)
	return nil
}

func printState(s ledger.State, currency string) {
	fmt.Printf("  Cash:       %s %s\n", s.Cash, currency)
	fmt.Printf("  Reserved:   %s %s\n", s.ReservedCash, currency)
	fmt.Printf("  Commission: %s %s\n", s.Commission, currency)
}

func printStateJSON(runID string, s ledger.State) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		RunID string `json:"runId"`
		ledger.State
	}{runID, s})
}

func total(counts map[ledger.Kind]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
