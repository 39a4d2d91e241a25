package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/capital/broker"
	"github.com/rustyeddy/capital/broker/sim"
	"github.com/rustyeddy/capital/config"
	"github.com/rustyeddy/capital/journal"
	"github.com/rustyeddy/capital/ledger"
	"github.com/rustyeddy/capital/replay"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Trade against the simulated broker and replay the result",
	Long: `Run a short scripted session against the simulated broker and feed
everything it reports through the ledger.

The session:
  1. Buys 100 units at market
  2. Fills it over the following bars (see broker.max_fill_quantity)
  3. Sells half of it with a limit order
  4. Places a second buy and cancels it before it fills

Examples:
  capital demo
  capital demo --instrument AAPL --cash 50000`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

var (
	demoInstrument string
	demoCash       string
	demoDBPath     string
)

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVarP(&demoInstrument, "instrument", "i", "MSFT", "instrument to trade")
	demoCmd.Flags().StringVar(&demoCash, "cash", "100000", "starting cash when the config does not set account.cash")
	demoCmd.Flags().StringVarP(&demoDBPath, "db", "d", "", "SQLite journal path; overrides the configured journal")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if demoDBPath != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = demoDBPath
	}
	if cfg.Account.Cash == nil {
		cash, err := decimal.NewFromString(demoCash)
		if err != nil {
			return fmt.Errorf("bad --cash %q: %w", demoCash, err)
		}
		cfg.Account.Cash = &cash
	}
	log := newLogger(cfg, "demo")

	start := time.Now().UTC().Truncate(time.Minute)
	events, err := demoSession(context.Background(), cfg.Broker, demoInstrument, start)
	if err != nil {
		return err
	}

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	seed := ledger.Initialized{Timestamp: start, Overrides: cfg.Account.Overrides()}
	r := &replay.Runner{
		Journal:   j,
		Log:       log,
		AccountID: cfg.Account.ID,
		Currency:  cfg.Account.Currency,
	}
	s, stats, err := r.Run(context.Background(), ledger.New(), replay.NewSliceSource(append([]ledger.Event{seed}, events...)...))
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	fmt.Printf("=== Demo %s ===\n", r.RunID)
	for _, e := range events {
		fmt.Printf("  %s\n", e.Kind())
	}
	fmt.Printf("\nSnapshots journaled: %d\n", stats.Snapshots)
	printState(s, cfg.Account.Currency)
	return nil
}

// demoSession drives a simulated broker through a fixed script and returns
// the events it reported.
func demoSession(ctx context.Context, bc config.BrokerConfig, instrument string, start time.Time) ([]ledger.Event, error) {
	var events []ledger.Event
	opts := []sim.Option{sim.WithCommissionRate(bc.CommissionRate)}
	if bc.MaxFillQuantity != nil {
		opts = append(opts, sim.WithMaxFillQuantity(*bc.MaxFillQuantity))
	}
	client := sim.NewClient(func(e ledger.Event) { events = append(events, e) }, opts...)

	client.SetQuote(broker.Quote{
		Instrument: instrument,
		Buy:        decimal.RequireFromString("100.05"),
		Sell:       decimal.RequireFromString("99.95"),
		Time:       start,
	})

	closes := []string{"100.10", "100.40", "101.20", "101.80", "102.50", "102.10"}
	bar := func(i int) {
		c := decimal.RequireFromString(closes[i])
		client.OnBar(sim.Bar{
			Instrument: instrument,
			Time:       start.Add(time.Duration(i+1) * time.Minute),
			Open:       c, High: c, Low: c, Close: c,
		})
	}

	q, err := client.GetMarketPrice(ctx, instrument)
	if err != nil {
		return nil, err
	}
	qty := decimal.NewFromInt(100)
	if _, err := client.ExecuteOrder(ctx, broker.OrderRequest{
		Instrument: instrument,
		Quantity:   qty,
		Commission: client.CalculateCommission(qty, q.Buy),
	}); err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}
	for i := 0; i < 3; i++ {
		bar(i)
	}

	sellQty := decimal.NewFromInt(-50)
	sellPx := decimal.RequireFromString("102.50")
	if _, err := client.ExecuteOrder(ctx, broker.OrderRequest{
		Instrument: instrument,
		Quantity:   sellQty,
		Price:      sellPx,
		Commission: client.CalculateCommission(sellQty, sellPx),
	}); err != nil {
		return nil, fmt.Errorf("sell: %w", err)
	}
	bar(3)
	bar(4)

	// Anything still open at this point is cancelled along with the new buy.
	rebuyQty := decimal.NewFromInt(25)
	rebuyPx := decimal.RequireFromString("99.00")
	if _, err := client.ExecuteOrder(ctx, broker.OrderRequest{
		Instrument: instrument,
		Quantity:   rebuyQty,
		Price:      rebuyPx,
		Commission: client.CalculateCommission(rebuyQty, rebuyPx),
	}); err != nil {
		return nil, fmt.Errorf("rebuy: %w", err)
	}
	for _, o := range client.Pending() {
		if err := client.CancelOrder(ctx, o.ID); err != nil {
			return nil, fmt.Errorf("cancel %s: %w", o.ID, err)
		}
	}
	bar(5)

	return events, nil
}
