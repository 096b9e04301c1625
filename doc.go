// Package pricetail tails a CSV price file and prints its latest row.
//
// A producer process appends rows of crypto prices to a CSV file. pricetail
// reads that file on a fixed interval, takes the last row, and writes one
// line per cycle:
//
//	Timestamp: 2024-01-01T00:00:00, BTC Price: 42000, ETH Price: 2200, SOL Price: 95
//
// A cycle that cannot read the file (missing, empty, malformed, or lacking a
// column) writes a single diagnostic line instead and the loop carries on:
//
//	Error reading CSV: no data rows
//
// # Quick Start
//
//	m, _ := pricetail.New(pricetail.WithSource("prices.csv"))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	m.Start(ctx) // blocks until context is cancelled
//
// For a single read, use [Poll]:
//
//	pricetail.Poll(os.Stdout, "prices.csv")
//
// # Configuration
//
//	m, err := pricetail.New(
//	    pricetail.WithSource("/var/lib/prices/prices.csv"),
//	    pricetail.WithInterval(5 * time.Second),
//	    pricetail.WithColumns(pricetail.Columns{
//	        Timestamp: "time", BTC: "bitcoin", ETH: "ether", SOL: "solana",
//	    }),
//	    pricetail.WithHTTPPort(8080),
//	)
//
// Values are passed through exactly as written in the file; pricetail does
// not parse or reformat prices. "Latest" means last in file order, not the
// greatest timestamp.
//
// # Architecture
//
//   - internal/poller: CSV last-row reader and the fixed-interval read loop
//   - internal/store: Latest-reading holder with pub/sub
//   - internal/server: Optional HTTP view with JSON and Server-Sent Events
//   - config: YAML configuration for the pricetail binary
package pricetail
