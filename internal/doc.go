// Package internal contains helper utilities that are intentionally private to goSession,
// including secure random generation and keyed token hashing.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - metrics — lock-free counters and latency histograms
//   - rate — Redis-backed fixed-window rate limit primitives
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
//   - Be imported by any package outside the goSession module.
package internal
