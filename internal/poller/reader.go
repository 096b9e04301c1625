package poller

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// utf8BOM is stripped from the first header cell when present.
const utf8BOM = "\ufeff"

var (
	// ErrNoHeader is returned when the source has no header row at all.
	ErrNoHeader = errors.New("no header row")

	// ErrNoRows is returned when the source has a header but no data rows.
	ErrNoRows = errors.New("no data rows")

	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing column")

	// ErrMalformed is returned when the CSV cannot be parsed.
	ErrMalformed = errors.New("malformed csv")
)

// Columns names the header cells that hold each price field.
type Columns struct {
	Timestamp string
	BTC       string
	ETH       string
	SOL       string
}

// DefaultColumns returns the header names written by the price producer.
func DefaultColumns() Columns {
	return Columns{
		Timestamp: "timestamp (date/time)",
		BTC:       "btc",
		ETH:       "eth",
		SOL:       "sol",
	}
}

// names returns the column names in output order.
func (c Columns) names() [4]string {
	return [4]string{c.Timestamp, c.BTC, c.ETH, c.SOL}
}

// Row is the last record of a source, reduced to the four price fields.
// Values are passed through exactly as they appear in the file.
type Row struct {
	Timestamp string
	BTC       string
	ETH       string
	SOL       string

	// Line is the 1-based line number of the record in the source.
	Line int
}

// ReadLatest opens path and returns the last data row.
//
// The file is streamed, so only the header and the current record are held
// in memory. Row order decides which record is latest; timestamps are not
// compared. Any failure is returned as an error wrapping one of
// [ErrNoHeader], [ErrNoRows], [ErrMissingColumn], [ErrMalformed], or the
// underlying *fs.PathError when the file cannot be opened.
func ReadLatest(path string, cols Columns) (Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return Row{}, err
	}
	defer func() { _ = f.Close() }()

	return readLatest(f, cols)
}

func readLatest(r io.Reader, cols Columns) (Row, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	// a torn row earlier in the file must not hide the rows after it
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Row{}, ErrNoHeader
	}
	if err != nil {
		return Row{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	index, err := resolveColumns(header, cols)
	if err != nil {
		return Row{}, err
	}

	var (
		last  [4]string
		line  int
		short bool
		found bool
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Row{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		short = false
		for i, idx := range index {
			if idx >= len(record) {
				short = true
				last[i] = ""
				continue
			}
			last[i] = record[idx]
		}
		line, _ = reader.FieldPos(0)
		found = true
	}

	if !found {
		return Row{}, ErrNoRows
	}
	if short {
		return Row{}, fmt.Errorf("%w: record on line %d: wrong number of fields", ErrMalformed, line)
	}

	return Row{
		Timestamp: last[0],
		BTC:       last[1],
		ETH:       last[2],
		SOL:       last[3],
		Line:      line,
	}, nil
}

// resolveColumns maps each configured column to its header position.
func resolveColumns(header []string, cols Columns) ([4]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		// first occurrence wins on duplicate headers
		if _, exists := positions[name]; !exists {
			positions[name] = i
		}
	}

	var index [4]int
	for i, name := range cols.names() {
		pos, ok := positions[name]
		if !ok {
			return index, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		index[i] = pos
	}
	return index, nil
}
