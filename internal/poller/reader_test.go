package poller

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeCSV writes content to a temp file and returns its path.
func writeCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}

func TestReadLatest_ReturnsLastRow(t *testing.T) {
	path := writeCSV(t, `timestamp (date/time),btc,eth,sol
2024-01-01T00:00:00,42000,2200,95
2024-01-01T00:00:05,42010,2201,96
2024-01-01T00:00:10,42020,2202,97
`)

	row, err := ReadLatest(path, DefaultColumns())
	if err != nil {
		t.Fatalf("ReadLatest() error = %v", err)
	}

	want := Row{Timestamp: "2024-01-01T00:00:10", BTC: "42020", ETH: "2202", SOL: "97", Line: 4}
	if row != want {
		t.Errorf("ReadLatest() = %+v, want %+v", row, want)
	}
}

func TestReadLatest_IgnoresExtraColumnsAndOrder(t *testing.T) {
	path := writeCSV(t, `sol,volume,eth,timestamp (date/time),btc
95,123,2200,2024-01-01T00:00:00,42000
`)

	row, err := ReadLatest(path, DefaultColumns())
	if err != nil {
		t.Fatalf("ReadLatest() error = %v", err)
	}

	if row.Timestamp != "2024-01-01T00:00:00" || row.BTC != "42000" || row.ETH != "2200" || row.SOL != "95" {
		t.Errorf("ReadLatest() = %+v", row)
	}
}

func TestReadLatest_PassesValuesThrough(t *testing.T) {
	path := writeCSV(t, `timestamp (date/time),btc,eth,sol
2024-01-01 00:00:00,"42,000.50",2200.000,n/a
`)

	row, err := ReadLatest(path, DefaultColumns())
	if err != nil {
		t.Fatalf("ReadLatest() error = %v", err)
	}

	if row.BTC != "42,000.50" {
		t.Errorf("BTC = %q, want %q", row.BTC, "42,000.50")
	}
	if row.ETH != "2200.000" {
		t.Errorf("ETH = %q, want %q", row.ETH, "2200.000")
	}
	if row.SOL != "n/a" {
		t.Errorf("SOL = %q, want %q", row.SOL, "n/a")
	}
}

func TestReadLatest_StripsByteOrderMark(t *testing.T) {
	path := writeCSV(t, "\ufefftimestamp (date/time),btc,eth,sol\n2024-01-01T00:00:00,1,2,3\n")

	row, err := ReadLatest(path, DefaultColumns())
	if err != nil {
		t.Fatalf("ReadLatest() error = %v", err)
	}
	if row.Timestamp != "2024-01-01T00:00:00" {
		t.Errorf("Timestamp = %q", row.Timestamp)
	}
}

func TestReadLatest_SkipsTrailingBlankLines(t *testing.T) {
	path := writeCSV(t, "timestamp (date/time),btc,eth,sol\n2024-01-01T00:00:00,1,2,3\n\n\n")

	row, err := ReadLatest(path, DefaultColumns())
	if err != nil {
		t.Fatalf("ReadLatest() error = %v", err)
	}
	if row.SOL != "3" {
		t.Errorf("SOL = %q, want 3", row.SOL)
	}
}

func TestReadLatest_CustomColumns(t *testing.T) {
	path := writeCSV(t, "time,bitcoin,ether,solana\nt1,1,2,3\n")

	cols := Columns{Timestamp: "time", BTC: "bitcoin", ETH: "ether", SOL: "solana"}
	row, err := ReadLatest(path, cols)
	if err != nil {
		t.Fatalf("ReadLatest() error = %v", err)
	}
	if row.Timestamp != "t1" || row.BTC != "1" {
		t.Errorf("ReadLatest() = %+v", row)
	}
}

func TestReadLatest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		wantMsg string
	}{
		{
			name:    "empty file",
			content: "",
			wantErr: ErrNoHeader,
		},
		{
			name:    "header only",
			content: "timestamp (date/time),btc,eth,sol\n",
			wantErr: ErrNoRows,
		},
		{
			name:    "missing sol column",
			content: "timestamp (date/time),btc,eth\n2024-01-01T00:00:00,1,2\n",
			wantErr: ErrMissingColumn,
			wantMsg: `"sol"`,
		},
		{
			name:    "missing timestamp column",
			content: "timestamp,btc,eth,sol\n2024-01-01T00:00:00,1,2,3\n",
			wantErr: ErrMissingColumn,
			wantMsg: `"timestamp (date/time)"`,
		},
		{
			name:    "ragged last row",
			content: "timestamp (date/time),btc,eth,sol\nt0,1,2,3\n2024-01-01T00:00:00,1,2\n",
			wantErr: ErrMalformed,
			wantMsg: "line 3",
		},
		{
			name:    "unterminated quote",
			content: "timestamp (date/time),btc,eth,sol\n\"2024-01-01T00:00:00,1,2,3\n",
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, tt.content)

			_, err := ReadLatest(path, DefaultColumns())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadLatest() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestReadLatest_RaggedEarlierRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Row
	}{
		{
			name:    "torn row before last",
			content: "timestamp (date/time),btc,eth,sol\nt0,1\nt1,1,2,3\n",
			want:    Row{Timestamp: "t1", BTC: "1", ETH: "2", SOL: "3", Line: 3},
		},
		{
			name:    "wide row before last",
			content: "timestamp (date/time),btc,eth,sol\nt0,1,2,3,4,5\nt1,1,2,3\n",
			want:    Row{Timestamp: "t1", BTC: "1", ETH: "2", SOL: "3", Line: 3},
		},
		{
			name:    "wide last row",
			content: "timestamp (date/time),btc,eth,sol\nt1,1,2,3,extra\n",
			want:    Row{Timestamp: "t1", BTC: "1", ETH: "2", SOL: "3", Line: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := ReadLatest(writeCSV(t, tt.content), DefaultColumns())
			if err != nil {
				t.Fatalf("ReadLatest() error = %v", err)
			}
			if row != tt.want {
				t.Errorf("ReadLatest() = %+v, want %+v", row, tt.want)
			}
		})
	}
}

func TestReadLatest_MissingFile(t *testing.T) {
	_, err := ReadLatest(filepath.Join(t.TempDir(), "nope.csv"), DefaultColumns())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("ReadLatest() error = %v, want fs.ErrNotExist", err)
	}
}

func TestReadLatest_UnchangedFileIsStable(t *testing.T) {
	path := writeCSV(t, "timestamp (date/time),btc,eth,sol\nt1,1,2,3\nt2,4,5,6\n")

	first, err := ReadLatest(path, DefaultColumns())
	if err != nil {
		t.Fatalf("first ReadLatest() error = %v", err)
	}
	second, err := ReadLatest(path, DefaultColumns())
	if err != nil {
		t.Fatalf("second ReadLatest() error = %v", err)
	}
	if first != second {
		t.Errorf("reads differ: %+v vs %+v", first, second)
	}
}
