package config

import (
	"github.com/jpalmerr/pricetail"
)

// BuildOptions converts a validated configuration into SDK options.
//
// Logger and output are left to the caller.
func BuildOptions(cfg *Config) []pricetail.Option {
	return []pricetail.Option{
		pricetail.WithSource(cfg.Source),
		pricetail.WithInterval(cfg.Interval.Duration()),
		pricetail.WithColumns(pricetail.Columns{
			Timestamp: cfg.Columns.Timestamp,
			BTC:       cfg.Columns.BTC,
			ETH:       cfg.Columns.ETH,
			SOL:       cfg.Columns.SOL,
		}),
		pricetail.WithHTTPPort(cfg.HTTPPort),
	}
}
