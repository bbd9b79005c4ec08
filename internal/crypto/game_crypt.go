// Package crypto implements the transport obfuscation used on TCP game
// connections: a per-session rolling XOR cipher whose key is delivered inside
// a Blowfish-wrapped Init block.
package crypto

import (
	"encoding/binary"
	"sync/atomic"
)

// GameCrypt is the rolling XOR cipher applied to every game packet after the
// Init handshake.
//
// Algorithm:
//   - Encrypt: out[i] = in[i] ^ outKey[i & 0x0F] ^ out[i-1]
//   - Decrypt: out[i] = in[i] ^ inKey[i & 0x0F] ^ in[i-1]
//   - After each call, key bytes [8:12] (LE uint32) advance by the packet
//     size, so identical packets never encrypt identically.
//   - The FIRST Encrypt call is skipped: the Init packet itself travels in
//     the clear, carrying the key.
type GameCrypt struct {
	inKey   [16]byte
	outKey  [16]byte
	enabled atomic.Bool
}

// NewGameCrypt creates a cipher, disabled until SetKey and the first Encrypt.
func NewGameCrypt() *GameCrypt {
	return &GameCrypt{}
}

// SetKey initializes both directions from the same 16-byte session key.
func (gc *GameCrypt) SetKey(key []byte) {
	copy(gc.inKey[:], key[:16])
	copy(gc.outKey[:], key[:16])
}

// Encrypt obfuscates data in place. The first call only arms the cipher and
// leaves the data untouched.
func (gc *GameCrypt) Encrypt(data []byte) {
	if !gc.enabled.Swap(true) {
		return
	}
	var prev byte
	for i := range data {
		prev = data[i] ^ gc.outKey[i&0x0F] ^ prev
		data[i] = prev
	}
	advanceKey(gc.outKey[:], len(data))
}

// Decrypt reverses Encrypt in place. No-op while the cipher is unarmed.
func (gc *GameCrypt) Decrypt(data []byte) {
	if !gc.enabled.Load() {
		return
	}
	var prev byte
	for i := range data {
		raw := data[i]
		data[i] = raw ^ gc.inKey[i&0x0F] ^ prev
		prev = raw
	}
	advanceKey(gc.inKey[:], len(data))
}

// Enabled reports whether the cipher has been armed by a first Encrypt.
func (gc *GameCrypt) Enabled() bool {
	return gc.enabled.Load()
}

// advanceKey rolls the mutable window of the key forward by size bytes.
func advanceKey(key []byte, size int) {
	old := binary.LittleEndian.Uint32(key[8:12])
	binary.LittleEndian.PutUint32(key[8:12], old+uint32(size))
}
