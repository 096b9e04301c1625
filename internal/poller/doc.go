// Package poller reads the latest price row from a CSV source on a fixed
// interval.
//
// This package is internal to pricetail. It owns the file side of a cycle:
// opening the source, walking it to the final record and resolving the
// configured columns by header name.
//
// The main components are:
//
//   - [ReadLatest]: Reads the last row of a CSV file
//   - [Scheduler]: Runs ReadLatest on a fixed interval and emits [Result] values
//   - [Columns]: Header names for the four price fields
//
// Users of the pricetail library should not need to interact with this
// package directly. Configuration is done through the main pricetail package.
package poller
