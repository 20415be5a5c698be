// Package hashutil wraps the hash and AEAD primitives the wallet needs
// behind small, deterministic functions, pulling RIPEMD-160, PBKDF2, and
// Argon2id from golang.org/x/crypto since the standard library carries
// none of the three.
package hashutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD160 is required by the Bitcoin address format, not a crypto recommendation.
)

// SHA256 returns the SHA-256 digest of b.
func SHA256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// DoubleSHA256 returns SHA256(SHA256(b)), Bitcoin's standard checksum and
// transaction-id hash.
func DoubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

// Hash160 returns RIPEMD160(SHA256(b)) — the digest used for extended-key
// fingerprints and P2PKH address payloads.
func Hash160(b []byte) [20]byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sum[:]) //nolint:errcheck // ripemd160.Write never errors.
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HMACSHA512 computes HMAC-SHA-512 over data with the given key, as used
// for BIP-32 master-key generation and child derivation.
func HMACSHA512(key, data []byte) [64]byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data) //nolint:errcheck // hmac.Write never errors.
	var out [64]byte
	copy(out[:], mac.Sum(nil))
	return out
}
