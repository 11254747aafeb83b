package gateway

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/yndnr/docmesh-go/internal/core/domain"
)

// Binary frame layout (little-endian for all multi-byte fields):
//
//	byte 0        : message kind (1 = document-update)
//	bytes 1..2    : room-id length L (uint16)
//	bytes 3..3+L-1: room id, UTF-8
//	next 8 bytes  : timestamp (uint64, ms since epoch)
//	next 4 bytes  : update length U (uint32)
//	next U bytes  : raw update bytes
//
// The total length must equal 1+2+L+8+4+U exactly.
const (
	frameKindDocumentUpdate = 0x01

	frameHeaderLen = 1 + 2 // kind + room-id length
	frameFixedLen  = frameHeaderLen + 8 + 4
)

// MaxFrameRoomIDLen limits the room id carried in a binary frame.
const MaxFrameRoomIDLen = 1024

var ErrInvalidFrame = errors.New("gateway: invalid binary frame")

// DecodeFrame parses a binary document-update frame into the same
// in-memory message shape used for JSON, with the raw update bytes
// carried base64-encoded in the payload. Any length mismatch or
// truncation is rejected.
func DecodeFrame(data []byte) (*domain.Message, error) {
	if len(data) < frameFixedLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidFrame, len(data))
	}
	if data[0] != frameKindDocumentUpdate {
		return nil, fmt.Errorf("%w: kind %#x", ErrInvalidFrame, data[0])
	}

	roomLen := int(binary.LittleEndian.Uint16(data[1:3]))
	if roomLen == 0 || roomLen > MaxFrameRoomIDLen {
		return nil, fmt.Errorf("%w: room-id length %d", ErrInvalidFrame, roomLen)
	}

	off := frameHeaderLen
	if off+roomLen+8+4 > len(data) {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidFrame)
	}
	roomID := string(data[off : off+roomLen])
	off += roomLen

	ts := int64(binary.LittleEndian.Uint64(data[off : off+8]))
	off += 8

	updateLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4

	if len(data) != off+updateLen {
		return nil, fmt.Errorf("%w: declared %d update bytes, got %d",
			ErrInvalidFrame, updateLen, len(data)-off)
	}
	update := data[off:]

	return domain.NewDocumentUpdate(roomID, "", base64.StdEncoding.EncodeToString(update), ts), nil
}

// EncodeFrame builds a binary document-update frame. It is the
// counterpart of DecodeFrame, used by clients that prefer the compact
// encoding over the JSON envelope.
func EncodeFrame(roomID string, timestamp int64, update []byte) ([]byte, error) {
	if len(roomID) == 0 || len(roomID) > MaxFrameRoomIDLen {
		return nil, fmt.Errorf("%w: room-id length %d", ErrInvalidFrame, len(roomID))
	}

	buf := make([]byte, 0, frameFixedLen+len(roomID)+len(update))
	buf = append(buf, frameKindDocumentUpdate)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(roomID)))
	buf = append(buf, roomID...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(timestamp))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(update)))
	buf = append(buf, update...)
	return buf, nil
}
