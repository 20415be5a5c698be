package hashutil

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"golang.org/x/crypto/argon2"
)

// fixedSalt and fixedNonce are the constant Argon2id salt and AES-GCM
// nonce carried over unchanged from the system this wallet's persistence
// format was modeled on.
//
// Reusing a GCM nonce under the same key across distinct plaintexts is
// catastrophic (it allows recovery of the authentication key), and a
// fixed salt defeats per-installation Argon2 hardening. This is flagged
// here deliberately rather than silently replaced with random salt/nonce,
// because doing so would change the on-disk wallet file format.
var (
	fixedSalt  = []byte("saltsaltsaltsaltsaltsalt")
	fixedNonce = []byte("unique nonce")
)

// ErrWrongPassword is returned by Decrypt when the GCM authentication tag
// does not verify, which — since the salt and nonce are fixed — means the
// derived key does not match the key the ciphertext was sealed under.
var ErrWrongPassword = errors.New("hashutil: wrong password")

// deriveKey runs Argon2id over password with the fixed salt, producing the
// 32-byte key AES-256-GCM requires.
func deriveKey(password string) []byte {
	return argon2.IDKey([]byte(password), fixedSalt, 1, 64*1024, 4, 32)
}

// Encrypt seals plaintext under a key derived from password, returning
// ciphertext with the GCM tag appended.
func Encrypt(password string, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(deriveKey(password))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, fixedNonce, plaintext, nil), nil
}

// Decrypt reverses Encrypt. A tag mismatch surfaces as ErrWrongPassword,
// since under the fixed salt/nonce scheme it is the only way decryption
// can fail short of a truncated file.
func Decrypt(password string, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(deriveKey(password))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, fixedNonce, ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}
