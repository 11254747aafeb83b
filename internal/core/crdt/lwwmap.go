package crdt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// LWWMap is the default Document implementation: a last-writer-wins
// element map. Each field holds the write with the largest
// (timestamp, origin) pair, which makes Merge commutative,
// associative, and idempotent regardless of delivery order or
// duplication.
type LWWMap struct {
	mu      sync.RWMutex
	origin  string
	entries map[string]*entry
	lastTS  int64 // local clock floor, keeps per-origin timestamps monotonic
}

// NewLWWMap creates an empty map owned by the given origin.
func NewLWWMap(origin string) *LWWMap {
	return &LWWMap{
		origin:  origin,
		entries: make(map[string]*entry),
	}
}

// NewFactory returns a Factory producing LWWMap documents.
func NewFactory() Factory {
	return func(origin string) Document {
		return NewLWWMap(origin)
	}
}

// Merge applies a delta, keeping the newer write per field.
func (m *LWWMap) Merge(delta []byte) error {
	incoming, err := decodeEntries(delta)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range incoming {
		cur, ok := m.entries[e.field]
		if !ok || e.newerThan(cur) {
			m.entries[e.field] = e
		}
		if e.timestamp > m.lastTS {
			m.lastTS = e.timestamp
		}
	}
	return nil
}

// Patch atomically upserts each field with a local write stamped at
// the current physical time. All fields of one patch share a single
// timestamp and become visible together.
func (m *LWWMap) Patch(fields map[string]any) error {
	staged := make(map[string][]byte, len(fields))
	for field, value := range fields {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("crdt: encode field %q: %w", field, err)
		}
		staged[field] = encoded
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.tickLocked()
	for field, value := range staged {
		m.entries[field] = &entry{
			field:     field,
			value:     value,
			timestamp: ts,
			origin:    m.origin,
		}
	}
	return nil
}

// tickLocked returns a timestamp that is both current and strictly
// newer than every write this replica has seen.
func (m *LWWMap) tickLocked() int64 {
	ts := time.Now().UnixMilli()
	if ts <= m.lastTS {
		ts = m.lastTS + 1
	}
	m.lastTS = ts
	return ts
}

// EncodeState encodes every entry as one delta. Merging the result
// into a fresh map reconstructs equivalent state.
func (m *LWWMap) EncodeState() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	return encodeEntries(entries)
}

// Snapshot returns a field-to-value view of the current state.
func (m *LWWMap) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]any, len(m.entries))
	for field, e := range m.entries {
		var value any
		if err := json.Unmarshal(e.value, &value); err != nil {
			continue
		}
		out[field] = value
	}
	return out
}

// Empty reports whether the map holds no entries.
func (m *LWWMap) Empty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries) == 0
}

// EncodeWrite encodes a single field write as a standalone delta.
// Clients use this to produce merge updates without holding a full
// document replica.
func EncodeWrite(field string, value any, timestamp int64, origin string) ([]byte, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("crdt: encode field %q: %w", field, err)
	}
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}
	return encodeEntries([]*entry{{
		field:     field,
		value:     encoded,
		timestamp: timestamp,
		origin:    origin,
	}})
}
