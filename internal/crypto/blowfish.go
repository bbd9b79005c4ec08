package crypto

import (
	"fmt"

	"golang.org/x/crypto/blowfish"
)

// KeyBlockSize is the Blowfish-wrapped section of the Init packet: the
// 16-byte session key padded to a cipher-block multiple.
const KeyBlockSize = 16

// BlowfishCipher wraps Blowfish ECB for the Init key block. Only the session
// key ever travels under it; gameplay traffic uses GameCrypt.
type BlowfishCipher struct {
	cipher *blowfish.Cipher
}

// NewBlowfishCipher creates a cipher from the shared transport key.
func NewBlowfishCipher(key []byte) (*BlowfishCipher, error) {
	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating blowfish cipher: %w", err)
	}
	return &BlowfishCipher{cipher: c}, nil
}

// EncryptBlock encrypts data in place. Length must be a multiple of 8.
func (b *BlowfishCipher) EncryptBlock(data []byte) error {
	if len(data)%8 != 0 {
		return fmt.Errorf("blowfish encrypt: length %d is not a multiple of 8", len(data))
	}
	for i := 0; i < len(data); i += 8 {
		b.cipher.Encrypt(data[i:i+8], data[i:i+8])
	}
	return nil
}

// DecryptBlock decrypts data in place. Length must be a multiple of 8.
func (b *BlowfishCipher) DecryptBlock(data []byte) error {
	if len(data)%8 != 0 {
		return fmt.Errorf("blowfish decrypt: length %d is not a multiple of 8", len(data))
	}
	for i := 0; i < len(data); i += 8 {
		b.cipher.Decrypt(data[i:i+8], data[i:i+8])
	}
	return nil
}
