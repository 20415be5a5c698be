// Package bip39 implements mnemonic generation and seed derivation per
// BIP-39, using the go-bip39 dependency for the wordlist and
// entropy<->mnemonic conversion, and a directly-wired PBKDF2-HMAC-SHA-512
// call for seed derivation so that primitive is exercised explicitly
// rather than only transitively inside a third-party helper.
package bip39

import (
	"errors"
	"io"
	"strings"

	bip39lib "github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/hashutil"
)

// ErrInvalidEntropyLength is returned when the requested entropy length is
// not one of the five BIP-39-sanctioned sizes.
var ErrInvalidEntropyLength = errors.New("bip39: entropy length must be 128, 160, 192, 224, or 256 bits")

var validEntropyBits = map[int]bool{128: true, 160: true, 192: true, 224: true, 256: true}

// GenerateMnemonic draws entropyBits of randomness from rng (nil uses the
// OS CSPRNG) and returns the resulting mnemonic as a slice of words.
func GenerateMnemonic(entropyBits int, rng io.Reader) ([]string, error) {
	if !validEntropyBits[entropyBits] {
		return nil, ErrInvalidEntropyLength
	}
	entropy := make([]byte, entropyBits/8)
	if rng == nil {
		var err error
		entropy, err = bip39lib.NewEntropy(entropyBits)
		if err != nil {
			return nil, err
		}
	} else if _, err := io.ReadFull(rng, entropy); err != nil {
		return nil, err
	}
	return MnemonicFromEntropy(entropy)
}

// MnemonicFromEntropy deterministically converts raw entropy into its
// mnemonic words (entropy length must be one of the five BIP-39 sizes).
func MnemonicFromEntropy(entropy []byte) ([]string, error) {
	if !validEntropyBits[len(entropy)*8] {
		return nil, ErrInvalidEntropyLength
	}
	sentence, err := bip39lib.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Fields(sentence), nil
}

// IsValid reports whether every word in mnemonic is in the wordlist and
// the embedded checksum verifies.
func IsValid(mnemonic []string) bool {
	return bip39lib.IsMnemonicValid(strings.Join(mnemonic, " "))
}

// Seed derives the 64-byte BIP-39 seed from mnemonic and an optional
// passphrase: PBKDF2-HMAC-SHA-512, 2048 iterations, password = the
// NFKD-normalized mnemonic joined by single spaces, salt = "mnemonic" ||
// NFKD-normalized passphrase.
func Seed(mnemonic []string, passphrase string) [64]byte {
	normalizedMnemonic := norm.NFKD.String(strings.Join(mnemonic, " "))
	normalizedPassphrase := norm.NFKD.String(passphrase)
	return hashutil.PBKDF2SHA512Seed(normalizedMnemonic, normalizedPassphrase)
}
