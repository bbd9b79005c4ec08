// Package serverpackets builds the S2C binary messages.
package serverpackets

// S2C opcodes. Stable; append only.
const (
	OpcodeInit            = 0x00
	OpcodeEnterAck        = 0x01
	OpcodeSpawnEntity     = 0x02
	OpcodeDespawnEntity   = 0x03
	OpcodePosSnapshot     = 0x04
	OpcodePosDelta        = 0x05
	OpcodeSyncBatch       = 0x06
	OpcodeCastStart       = 0x07
	OpcodeCastEnd         = 0x08
	OpcodeCastFail        = 0x09
	OpcodeProjectileSpawn = 0x0A
	OpcodeProjectileHit   = 0x0B
	OpcodeEntityUpdated   = 0x0C
	OpcodeStatusApplied   = 0x0D
)
