// Package packet is the binary wire codec: little-endian scalars, length-
// prefixed UTF-8 strings, one Writer/Reader pair per message.
package packet

import (
	"bytes"
	"math"
	"sync"
)

// Writer serializes one outbound packet. All multi-byte values are
// little-endian.
type Writer struct {
	buf *bytes.Buffer
}

// writerPool reuses Writers across packets to keep broadcast paths
// allocation-light.
var writerPool = sync.Pool{
	New: func() any {
		return &Writer{buf: bytes.NewBuffer(make([]byte, 0, 256))}
	},
}

// Get returns a reset Writer from the pool.
func Get() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// Put returns the Writer to the pool. The Writer must not be used after.
func (w *Writer) Put() {
	writerPool.Put(w)
}

// NewWriter creates a standalone Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: bytes.NewBuffer(make([]byte, 0, capacity))}
}

// Reset clears the buffer for reuse.
func (w *Writer) Reset() {
	w.buf.Reset()
}

// WriteByte writes a single byte. The error is always nil; the signature
// matches io.ByteWriter.
func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

// WriteBool writes a bool as one byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteShort writes an int16.
func (w *Writer) WriteShort(v int16) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
}

// WriteUint16 writes a uint16.
func (w *Writer) WriteUint16(v uint16) {
	w.WriteShort(int16(v))
}

// WriteInt writes an int32.
func (w *Writer) WriteInt(v int32) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
	w.buf.WriteByte(byte(v >> 16))
	w.buf.WriteByte(byte(v >> 24))
}

// WriteUint32 writes a uint32.
func (w *Writer) WriteUint32(v uint32) {
	w.WriteInt(int32(v))
}

// WriteLong writes an int64.
func (w *Writer) WriteLong(v int64) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
	w.buf.WriteByte(byte(v >> 16))
	w.buf.WriteByte(byte(v >> 24))
	w.buf.WriteByte(byte(v >> 32))
	w.buf.WriteByte(byte(v >> 40))
	w.buf.WriteByte(byte(v >> 48))
	w.buf.WriteByte(byte(v >> 56))
}

// WriteUint64 writes a uint64.
func (w *Writer) WriteUint64(v uint64) {
	w.WriteLong(int64(v))
}

// WriteDouble writes a float64.
func (w *Writer) WriteDouble(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteString writes a UTF-8 string with a uint16 byte-length prefix.
func (w *Writer) WriteString(s string) {
	w.WriteUint16(uint16(len(s)))
	w.buf.WriteString(s)
}

// WriteBytes writes raw bytes with no length prefix.
func (w *Writer) WriteBytes(b []byte) {
	w.buf.Write(b)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Bytes returns the serialized packet. The slice is owned by the Writer and
// is invalid after Reset or Put.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Copy returns a detached copy of the serialized packet, safe to hold after
// the Writer goes back to the pool.
func (w *Writer) Copy() []byte {
	out := make([]byte, w.buf.Len())
	copy(out, w.buf.Bytes())
	return out
}
