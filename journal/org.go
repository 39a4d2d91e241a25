package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/capital/ledger"
)

// FormatRunOrg renders a run and its snapshots as an Org-mode block: the run
// facts in a PROPERTIES drawer followed by a table of balances.
func FormatRunOrg(r Run, snaps []ledger.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Run: %s (%s)\n", r.AccountID, shortID(r.RunID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":RUN_ID: %s\n", r.RunID)
	fmt.Fprintf(&b, ":ACCOUNT: %s\n", r.AccountID)
	fmt.Fprintf(&b, ":CURRENCY: %s\n", r.Currency)
	fmt.Fprintf(&b, ":STARTED: %s\n", r.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":SNAPSHOTS: %d\n", len(snaps))
	b.WriteString(":END:\n\n")
	b.WriteString(FormatSnapshotsOrg(snaps))
	return b.String()
}

// FormatSnapshotsOrg renders snapshots as an Org table.
func FormatSnapshotsOrg(snaps []ledger.Snapshot) string {
	var b strings.Builder
	b.WriteString("| Time | Cash | Reserved | Commission |\n")
	b.WriteString("|------+------+----------+------------|\n")
	for _, s := range snaps {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			s.Timestamp.UTC().Format(time.RFC3339Nano),
			s.Cash.String(),
			s.ReservedCash.String(),
			s.Commission.String(),
		)
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
