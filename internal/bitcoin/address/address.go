// Package address implements Base58Check P2PKH addresses.
package address

import (
	"errors"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip32"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/codec"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/hashutil"
)

const (
	versionMainnet = 0x00
	versionTestnet = 0x6f
)

var (
	ErrInvalidCharacter = errors.New("address: invalid base58 character")
	ErrInvalidLength    = errors.New("address: decoded hash160 payload must be 20 bytes")
	ErrInvalidVersion   = errors.New("address: unrecognized version byte")
	ErrChecksumMismatch = errors.New("address: checksum verification failed")
)

// Address is a (network, hash160) pair — a legacy P2PKH pay-to address.
type Address struct {
	Testnet bool
	Hash160 [20]byte
}

// Create derives the address owning xpub: Hash160 of its compressed
// public point.
func Create(xpub *bip32.ExtendedPublicKey) Address {
	return Address{
		Testnet: xpub.Testnet,
		Hash160: hashutil.Hash160(xpub.Key[:]),
	}
}

// String encodes a with version byte 0x00 (mainnet) or 0x6F (testnet).
func (a Address) String() string {
	version := byte(versionMainnet)
	if a.Testnet {
		version = versionTestnet
	}
	return codec.Base58CheckEncode(version, a.Hash160[:])
}

// Parse decodes a Base58Check address string, verifying the alphabet,
// checksum, 20-byte payload length, and version byte in that order.
func Parse(s string) (Address, error) {
	for _, c := range s {
		found := false
		for _, a := range base58Alphabet {
			if c == a {
				found = true
				break
			}
		}
		if !found {
			return Address{}, ErrInvalidCharacter
		}
	}
	version, payload, err := codec.Base58CheckDecode(s)
	if err != nil {
		if errors.Is(err, codec.ErrChecksumMismatch) {
			return Address{}, ErrChecksumMismatch
		}
		return Address{}, ErrInvalidCharacter
	}
	if len(payload) != 20 {
		return Address{}, ErrInvalidLength
	}
	var testnet bool
	switch version {
	case versionMainnet:
		testnet = false
	case versionTestnet:
		testnet = true
	default:
		return Address{}, ErrInvalidVersion
	}
	var h160 [20]byte
	copy(h160[:], payload)
	return Address{Testnet: testnet, Hash160: h160}, nil
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
