package crdt

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Encoding limits to prevent abuse by malformed or hostile deltas.
const (
	// MaxEntries limits the number of entries in a single delta.
	MaxEntries = 65536

	// MaxFieldLen limits the length of a field name.
	MaxFieldLen = 4 * 1024

	// MaxValueLen limits the size of a single encoded value (1MB).
	MaxValueLen = 1024 * 1024
)

// deltaVersion is the first byte of every encoded delta. It is never
// '{' so that deltas remain distinguishable from JSON field patches.
const deltaVersion = 0x01

var (
	ErrDeltaEncoding = errors.New("crdt: invalid delta encoding")
	ErrDeltaLimit    = errors.New("crdt: delta limit exceeded")
)

// entry is one replicated field write.
type entry struct {
	field     string
	value     []byte // JSON-encoded value
	timestamp int64  // ms since epoch
	origin    string // replica that produced the write
}

// newerThan reports whether e wins over other under last-writer-wins
// ordering. Equal (timestamp, origin) pairs are duplicates and lose,
// which makes merge idempotent.
func (e *entry) newerThan(other *entry) bool {
	if e.timestamp != other.timestamp {
		return e.timestamp > other.timestamp
	}
	return e.origin > other.origin
}

// encodeEntries serializes entries into the delta wire format:
//
//	byte 0        : version (0x01)
//	bytes 1..4    : entry count (uint32)
//	per entry     : field len (uint16) | field | timestamp (uint64, ms)
//	              : origin len (uint16) | origin | value len (uint32) | value
//
// All multi-byte fields are little-endian.
func encodeEntries(entries []*entry) ([]byte, error) {
	if len(entries) > MaxEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrDeltaLimit, len(entries))
	}

	size := 1 + 4
	for _, e := range entries {
		if len(e.field) > MaxFieldLen {
			return nil, fmt.Errorf("%w: field length %d", ErrDeltaLimit, len(e.field))
		}
		if len(e.value) > MaxValueLen {
			return nil, fmt.Errorf("%w: value length %d", ErrDeltaLimit, len(e.value))
		}
		size += 2 + len(e.field) + 8 + 2 + len(e.origin) + 4 + len(e.value)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, deltaVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(entries)))

	for _, e := range entries {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(e.field)))
		buf = append(buf, e.field...)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(e.timestamp))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(e.origin)))
		buf = append(buf, e.origin...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.value)))
		buf = append(buf, e.value...)
	}

	return buf, nil
}

// decodeEntries parses a delta. The input must be consumed exactly;
// truncated or oversized deltas are rejected.
func decodeEntries(delta []byte) ([]*entry, error) {
	if len(delta) < 5 {
		return nil, fmt.Errorf("%w: %d bytes", ErrDeltaEncoding, len(delta))
	}
	if delta[0] != deltaVersion {
		return nil, fmt.Errorf("%w: version %#x", ErrDeltaEncoding, delta[0])
	}

	count := binary.LittleEndian.Uint32(delta[1:5])
	if count > MaxEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrDeltaLimit, count)
	}

	entries := make([]*entry, 0, count)
	off := 5

	for i := uint32(0); i < count; i++ {
		var (
			fieldLen, originLen, valueLen int
			field, origin, value          []byte
			err                           error
		)

		fieldLen, off, err = readLen16(delta, off)
		if err != nil {
			return nil, err
		}
		if fieldLen > MaxFieldLen {
			return nil, fmt.Errorf("%w: field length %d", ErrDeltaLimit, fieldLen)
		}
		field, off, err = readBytes(delta, off, fieldLen)
		if err != nil {
			return nil, err
		}

		if off+8 > len(delta) {
			return nil, fmt.Errorf("%w: truncated timestamp", ErrDeltaEncoding)
		}
		ts := int64(binary.LittleEndian.Uint64(delta[off : off+8]))
		off += 8

		originLen, off, err = readLen16(delta, off)
		if err != nil {
			return nil, err
		}
		origin, off, err = readBytes(delta, off, originLen)
		if err != nil {
			return nil, err
		}

		if off+4 > len(delta) {
			return nil, fmt.Errorf("%w: truncated value length", ErrDeltaEncoding)
		}
		valueLen = int(binary.LittleEndian.Uint32(delta[off : off+4]))
		off += 4
		if valueLen > MaxValueLen {
			return nil, fmt.Errorf("%w: value length %d", ErrDeltaLimit, valueLen)
		}
		value, off, err = readBytes(delta, off, valueLen)
		if err != nil {
			return nil, err
		}

		entries = append(entries, &entry{
			field:     string(field),
			value:     append([]byte(nil), value...),
			timestamp: ts,
			origin:    string(origin),
		})
	}

	if off != len(delta) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrDeltaEncoding, len(delta)-off)
	}

	return entries, nil
}

// readLen16 reads a little-endian uint16 length prefix at off.
func readLen16(data []byte, off int) (int, int, error) {
	if off+2 > len(data) {
		return 0, 0, fmt.Errorf("%w: truncated length prefix", ErrDeltaEncoding)
	}
	return int(binary.LittleEndian.Uint16(data[off : off+2])), off + 2, nil
}

// readBytes reads n bytes at off.
func readBytes(data []byte, off, n int) ([]byte, int, error) {
	if n < 0 || off+n > len(data) {
		return nil, 0, fmt.Errorf("%w: truncated data", ErrDeltaEncoding)
	}
	return data[off : off+n], off + n, nil
}
