// Package store holds the latest price reading and fans it out to subscribers.
//
// This package is internal to pricetail. Only the most recent [Reading] is
// kept; each update replaces the previous one. Subscribers receive updates
// via channels with non-blocking sends (slow subscribers miss updates rather
// than block the read loop).
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store
//   - [Reading]: Storage representation of one cycle
package store
