package pricetail

import (
	"fmt"
	"time"

	"github.com/jpalmerr/pricetail/internal/poller"
)

// DiagnosticPrefix starts every line written for a failed cycle.
const DiagnosticPrefix = "Error reading CSV: "

// PriceRecord is the latest row of the source, reduced to the four fields
// pricetail prints.
//
// Values are carried exactly as they appear in the file. pricetail does not
// parse, round or validate prices.
type PriceRecord struct {
	Timestamp string
	BTC       string
	ETH       string
	SOL       string
}

// String renders the record as a console line:
//
//	Timestamp: <t>, BTC Price: <b>, ETH Price: <e>, SOL Price: <s>
func (r PriceRecord) String() string {
	return fmt.Sprintf("Timestamp: %s, BTC Price: %s, ETH Price: %s, SOL Price: %s",
		r.Timestamp, r.BTC, r.ETH, r.SOL)
}

// Reading is the outcome of one cycle: either a [PriceRecord] or the error
// that prevented reading one.
type Reading struct {
	// Source is the path that was read.
	Source string

	// Record is the latest row. Zero when Err is set.
	Record PriceRecord

	// ReadAt is when the cycle started.
	ReadAt time.Time

	// Duration is how long the read took.
	Duration time.Duration

	// Err is the cycle failure, nil on success. It wraps one of the
	// sentinel errors in this package or the underlying *fs.PathError.
	Err error
}

// Line returns the console line for the reading: the formatted record on
// success, or [DiagnosticPrefix] followed by the error on failure.
func (r Reading) Line() string {
	if r.Err != nil {
		return DiagnosticPrefix + r.Err.Error()
	}
	return r.Record.String()
}

// Sentinel errors for cycle failures. Test with errors.Is.
var (
	ErrNoHeader      = poller.ErrNoHeader
	ErrNoRows        = poller.ErrNoRows
	ErrMissingColumn = poller.ErrMissingColumn
	ErrMalformed     = poller.ErrMalformed
)

// Columns names the header cells that hold each price field.
type Columns struct {
	Timestamp string
	BTC       string
	ETH       string
	SOL       string
}

// DefaultColumns returns the header names written by the price producer:
// "timestamp (date/time)", "btc", "eth" and "sol".
func DefaultColumns() Columns {
	return Columns(poller.DefaultColumns())
}

func (c Columns) validate() error {
	names := []struct{ field, name string }{
		{"timestamp", c.Timestamp},
		{"btc", c.BTC},
		{"eth", c.ETH},
		{"sol", c.SOL},
	}

	seen := make(map[string]string, len(names))
	for _, n := range names {
		if n.name == "" {
			return fmt.Errorf("column name for %s cannot be empty", n.field)
		}
		if other, dup := seen[n.name]; dup {
			return fmt.Errorf("column %q used for both %s and %s", n.name, other, n.field)
		}
		seen[n.name] = n.field
	}
	return nil
}
