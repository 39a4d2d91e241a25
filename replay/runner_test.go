package replay

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/capital/journal"
	"github.com/rustyeddy/capital/ledger"
)

func TestRunnerJournalsEverySnapshot(t *testing.T) {
	f, err := NewCSVFeed(strings.NewReader(scenario))
	require.NoError(t, err)

	mem := journal.NewMemory(1)
	var logs bytes.Buffer
	r := &Runner{
		Journal:   mem,
		Log:       zerolog.New(&logs).Level(zerolog.DebugLevel),
		RunID:     "R1",
		AccountID: "ACC",
		Currency:  "USD",
	}

	s, stats, err := r.Run(context.Background(), ledger.New(), f)
	require.NoError(t, err)

	// Buys settle out of the reservation at the expected price, so the
	// improvement on the fill does not reach cash.
	assert.True(t, d("19995").Equal(s.Cash), "cash %s", s.Cash)
	assert.True(t, s.ReservedCash.IsZero(), "reserved %s", s.ReservedCash)
	assert.True(t, d("5").Equal(s.Commission))

	assert.Equal(t, 4, stats.Snapshots)
	assert.Equal(t, 2, stats.Events[ledger.KindBarReceived])
	assert.Equal(t, 1, stats.Events[ledger.KindOrderCancelled])

	snaps := mem.Snapshots("R1")
	require.Len(t, snaps, 4)
	for i := range snaps {
		assert.True(t, s.History[i].Equal(snaps[i]))
	}

	run, ok := mem.Run("R1")
	require.True(t, ok)
	assert.Equal(t, "ACC", run.AccountID)

	assert.Contains(t, logs.String(), `"event":"ORDER_PLACED"`)
	assert.Contains(t, logs.String(), "replay finished")
}

func TestRunnerSQLite(t *testing.T) {
	j, err := journal.NewSQLite(filepath.Join(t.TempDir(), "capital.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := NewSliceSource(
		ledger.Initialized{Timestamp: ts},
		ledger.OrderPlaced{Quantity: d("-100"), Price: d("100"), Commission: d("10")},
		ledger.OrderFilled{
			Quantity: d("-100"), Price: d("110"), Commission: d("11"),
			ExpectedQuantity: d("-100"), ExpectedPrice: d("100"), ExpectedCommission: d("10"),
			Timestamp: ts.Add(time.Hour),
		},
	)

	r := &Runner{Journal: j, Log: zerolog.Nop()}
	s, _, err := r.Run(context.Background(), ledger.New(), src)
	require.NoError(t, err)
	assert.NotEmpty(t, r.RunID)
	assert.True(t, d("10979").Equal(s.Cash))

	got, err := j.ListSnapshots(r.RunID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, d("-10").Equal(got[1].Cash))
	assert.True(t, d("10").Equal(got[1].ReservedCash))

	_, err = j.GetRun(r.RunID)
	assert.NoError(t, err)
}

func TestRunnerJournalsSuppliedHistory(t *testing.T) {
	mem := journal.NewMemory(1)
	prior := []ledger.Snapshot{{Cash: d("1"), Timestamp: time.Unix(1, 0)}}

	r := &Runner{Journal: mem, Log: zerolog.Nop(), RunID: "R"}
	s, stats, err := r.Run(context.Background(), ledger.New(), NewSliceSource(
		ledger.Initialized{Timestamp: time.Unix(2, 0), Overrides: ledger.Overrides{History: prior}},
	))
	require.NoError(t, err)
	assert.Len(t, s.History, 2)
	assert.Equal(t, 2, stats.Snapshots)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Log: zerolog.Nop()}
	s, _, err := r.Run(ctx, ledger.New(), NewSliceSource(ledger.BarReceived{Timestamp: time.Unix(1, 0)}))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, s.History)
}

type failingJournal struct{}

func (failingJournal) RecordSnapshot(string, ledger.Snapshot) error { return errors.New("disk full") }
func (failingJournal) Close() error { return nil }

func TestRunnerPropagatesJournalErrors(t *testing.T) {
	r := &Runner{Journal: failingJournal{}, Log: zerolog.Nop()}
	_, _, err := r.Run(context.Background(), ledger.New(), NewSliceSource(ledger.BarReceived{Timestamp: time.Unix(1, 0)}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRunnerPropagatesSourceErrors(t *testing.T) {
	f, err := NewCSVFeed(strings.NewReader("time,event\n1,BAR_RECEIVED\n2,NOPE\n"))
	require.NoError(t, err)

	r := &Runner{Log: zerolog.Nop()}
	s, stats, err := r.Run(context.Background(), ledger.New(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Len(t, s.History, 1, "state reached before the error is returned")
	assert.Equal(t, 1, stats.Events[ledger.KindBarReceived])
}
