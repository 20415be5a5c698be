package hashutil

import (
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2SHA512Seed derives a 64-byte seed from the mnemonic words and an
// optional passphrase, per BIP-39: PBKDF2-HMAC-SHA-512 with 2048
// iterations, password = the mnemonic joined by single spaces, salt =
// "mnemonic" || passphrase.
func PBKDF2SHA512Seed(mnemonic, passphrase string) [64]byte {
	var out [64]byte
	derived := pbkdf2.Key([]byte(mnemonic), []byte("mnemonic"+passphrase), 2048, 64, sha512.New)
	copy(out[:], derived)
	return out
}
