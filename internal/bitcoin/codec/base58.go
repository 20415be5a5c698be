package codec

import (
	"errors"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// ErrInvalidBase58 is returned when a string contains characters outside
// the 58-character alphabet.
var ErrInvalidBase58 = errors.New("codec: invalid base58 character")

// ErrChecksumMismatch is returned by Base58CheckDecode when the trailing
// four checksum bytes do not match the double-SHA-256 of the payload.
var ErrChecksumMismatch = errors.New("codec: base58check checksum mismatch")

// Base58Encode encodes b using the Bitcoin Base58 alphabet.
func Base58Encode(b []byte) string {
	return base58.Encode(b)
}

// Base58Decode decodes s, rejecting any character outside the alphabet.
func Base58Decode(s string) ([]byte, error) {
	for _, c := range s {
		if !strings.ContainsRune(base58Alphabet, c) {
			return nil, ErrInvalidBase58
		}
	}
	return base58.Decode(s), nil
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Base58CheckEncode encodes version||payload with a 4-byte double-SHA-256
// checksum appended before Base58 encoding.
func Base58CheckEncode(version byte, payload []byte) string {
	return base58.CheckEncode(payload, version)
}

// Base58CheckDecode reverses Base58CheckEncode, verifying the checksum and
// returning the version byte and payload separately.
func Base58CheckDecode(s string) (version byte, payload []byte, err error) {
	payload, version, err = base58.CheckDecode(s)
	if err != nil {
		if errors.Is(err, base58.ErrChecksum) {
			return 0, nil, ErrChecksumMismatch
		}
		return 0, nil, err
	}
	return version, payload, nil
}
