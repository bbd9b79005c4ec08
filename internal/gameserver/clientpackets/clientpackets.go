// Package clientpackets parses the C2S binary messages.
package clientpackets

// C2S opcodes.
const (
	OpcodeHandshake   = 0x00
	OpcodeEnterWorld  = 0x01
	OpcodeMoveIntent  = 0x02
	OpcodeCastRequest = 0x03
)
