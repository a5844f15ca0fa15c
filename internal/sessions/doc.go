// Package sessions groups timestamped user events into sessions.
//
// A session is a maximal run of one user's events, ordered by timestamp, in
// which every pair of consecutive events is at most SessionGap seconds apart.
// Each session carries the distinct event types in order of first occurrence
// and a single meta map built by folding every event's meta into an
// accumulator where the earliest value wins on conflicts.
//
// The package is a pure batch transform: it never mutates its input, keeps
// no state between calls and performs no I/O.
package sessions
