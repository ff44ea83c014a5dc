package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/paylens/bookkeeper/internal/ledger"
)

// Encoder writes the account report as delimited text.
type Encoder struct {
	w *csv.Writer
}

// NewEncoder creates an encoder over w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: csv.NewWriter(w)}
}

// WriteReport writes the header followed by one row per snapshot, in the
// order given. Monetary columns carry exactly four fractional digits.
func (e *Encoder) WriteReport(snaps []ledger.Snapshot) error {
	if err := e.w.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, s := range snaps {
		row := []string{
			strconv.FormatUint(uint64(s.ClientID), 10),
			s.Available.StringFixed(ledger.MaxScale),
			s.Held.StringFixed(ledger.MaxScale),
			s.Total.StringFixed(ledger.MaxScale),
			strconv.FormatBool(s.Locked),
		}
		if err := e.w.Write(row); err != nil {
			return fmt.Errorf("write client %d: %w", s.ClientID, err)
		}
	}

	e.w.Flush()
	return e.w.Error()
}
