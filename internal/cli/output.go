package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"tranxledger/internal/core"
)

// PrintHistory writes one row per entry.
func PrintHistory(w io.Writer, entries []core.Tranx) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMOMENT\tDIRECTION\tAMOUNT\tPURPOSE\tTID")
	for _, t := range entries {
		purpose := string(t.Purpose)
		if purpose == "" {
			purpose = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Moment, t.Direction, t.Amount, purpose, t.TID)
	}
	return tw.Flush()
}

// PrintExtrema writes the ledger bounds, or a note when the ledger is empty.
func PrintExtrema(w io.Writer, e core.Extrema, ok bool) error {
	if !ok {
		_, err := fmt.Fprintln(w, "ledger is empty")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "first\t%s\n", e.MinMoment)
	fmt.Fprintf(tw, "last\t%s\n", e.MaxMoment)
	fmt.Fprintf(tw, "smallest\t%s\n", e.MinAmount)
	fmt.Fprintf(tw, "largest\t%s\n", e.MaxAmount)
	return tw.Flush()
}

type tranxJSON struct {
	ID          int64  `json:"id"`
	TID         string `json:"tid"`
	Moment      string `json:"moment"`
	EpochMillis int64  `json:"epoch_milliseconds"`
	Direction   string `json:"direction"`
	Purpose     string `json:"purpose,omitempty"`
	Amount      string `json:"amount"`
}

// WriteHistoryJSON writes the entries as a JSON array.
func WriteHistoryJSON(w io.Writer, entries []core.Tranx) error {
	out := make([]tranxJSON, 0, len(entries))
	for _, t := range entries {
		out = append(out, tranxJSON{
			ID:          t.ID,
			TID:         t.TID,
			Moment:      t.Moment.String(),
			EpochMillis: t.Moment.EpochMillis(),
			Direction:   string(t.Direction),
			Purpose:     string(t.Purpose),
			Amount:      t.Amount.String(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
