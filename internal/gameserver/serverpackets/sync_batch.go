package serverpackets

import (
	"github.com/klauspost/compress/zstd"

	"github.com/openrift/riftd/internal/gameserver/packet"
)

// compressThreshold is the payload size above which a SyncBatch body is
// zstd-compressed before framing.
const compressThreshold = 256

const flagCompressed = 0x01

var batchEncoder, _ = zstd.NewWriter(nil,
	zstd.WithEncoderLevel(zstd.SpeedFastest),
	zstd.WithEncoderConcurrency(1),
)

// SyncBatch frames one broadcast window's worth of position messages as a
// single packet: a count and the server timestamp the batch was built at,
// followed by concatenated PosSnapshot/PosDelta bodies, zstd-compressed when
// large enough to be worth it. The timestamp lets clients time-order delta
// updates, which carry no timestamp of their own.
type SyncBatch struct {
	Count    uint16
	ServerTs int64
	Payload  []byte
}

// NewSyncBatch serializes the given position messages into one batch stamped
// with the current tick time.
func NewSyncBatch(msgs []interface{ WriteTo(*packet.Writer) }, serverTs int64) SyncBatch {
	w := packet.Get()
	defer w.Put()

	for _, m := range msgs {
		m.WriteTo(w)
	}
	return SyncBatch{Count: uint16(len(msgs)), ServerTs: serverTs, Payload: w.Copy()}
}

func (p SyncBatch) Write() []byte {
	w := packet.Get()
	defer w.Put()

	body := p.Payload
	var flags byte
	if len(body) > compressThreshold {
		body = batchEncoder.EncodeAll(body, nil)
		flags |= flagCompressed
	}

	w.WriteByte(OpcodeSyncBatch)
	w.WriteByte(flags)
	w.WriteUint16(p.Count)
	w.WriteLong(p.ServerTs)
	w.WriteUint32(uint32(len(body)))
	w.WriteBytes(body)

	return w.Copy()
}
