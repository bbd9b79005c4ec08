package packet

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader deserializes one inbound packet. All multi-byte values are
// little-endian. Every method returns an error on truncated input; handlers
// treat any such error as a malformed packet.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a reader over one packet's payload.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadByte: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool reads one byte as a bool.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

// ReadShort reads an int16.
func (r *Reader) ReadShort() (int16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("ReadShort: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	v := int16(binary.LittleEndian.Uint16(r.data[r.pos:]))
	r.pos += 2
	return v, nil
}

// ReadUint16 reads a uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	v, err := r.ReadShort()
	return uint16(v), err
}

// ReadInt reads an int32.
func (r *Reader) ReadInt() (int32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadInt: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

// ReadUint32 reads a uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.ReadInt()
	return uint32(v), err
}

// ReadLong reads an int64.
func (r *Reader) ReadLong() (int64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("ReadLong: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	v := int64(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

// ReadUint64 reads a uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	v, err := r.ReadLong()
	return uint64(v), err
}

// ReadDouble reads a float64.
func (r *Reader) ReadDouble() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, fmt.Errorf("ReadDouble: %w", err)
	}
	return math.Float64frombits(v), nil
}

// ReadString reads a UTF-8 string with a uint16 byte-length prefix. maxLen
// bounds the accepted length; anything larger is malformed input.
func (r *Reader) ReadString(maxLen int) (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", fmt.Errorf("ReadString: %w", err)
	}
	if int(n) > maxLen {
		return "", fmt.Errorf("ReadString: length %d exceeds limit %d", n, maxLen)
	}
	if r.pos+int(n) > len(r.data) {
		return "", fmt.Errorf("ReadString: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadBytes reads exactly n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}
