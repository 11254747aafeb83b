// Package registry owns room and client membership bookkeeping.
//
// It creates rooms lazily on first join or first document access,
// tracks per-room statistics, and destroys a room together with its
// document the instant the last member leaves. Room and client
// records are owned exclusively by this package; callers receive
// snapshots, never live references.
package registry
