// Package bip32 implements hierarchical deterministic extended keys over
// secp256k1: master-key generation, CKDpriv/CKDpub child derivation, and
// the 78-byte Base58Check serialization format.
package bip32

import (
	"encoding/binary"
	"errors"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/codec"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/hashutil"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/seckey"
)

// HardenedOffset is added to a child index to request hardened
// derivation (child index >= 2^31).
const HardenedOffset = uint32(1) << 31

// Version bytes for the four (key type x network) combinations, sourced
// directly from chaincfg's network parameters rather than re-declared as
// literals, so a typo here would show up as a compile-time field-name
// error instead of a silently wrong serialization prefix.
var (
	versionXprvMainnet = chaincfg.MainNetParams.HDPrivateKeyID
	versionXprvTestnet = chaincfg.TestNet3Params.HDPrivateKeyID
	versionXpubMainnet = chaincfg.MainNetParams.HDPublicKeyID
	versionXpubTestnet = chaincfg.TestNet3Params.HDPublicKeyID
)

var (
	// ErrInvalidMasterKey is returned by CreateMasterKey when the derived
	// scalar is zero or out of range (astronomically unlikely).
	ErrInvalidMasterKey = errors.New("bip32: invalid master key material")
	// ErrDepthExhausted is returned when a child derivation would exceed
	// the maximum depth of 255.
	ErrDepthExhausted = errors.New("bip32: maximum derivation depth exceeded")
	// ErrHardenedPublicDerivation is returned when CKDpub is asked to
	// derive a hardened child, which is mathematically impossible.
	ErrHardenedPublicDerivation = errors.New("bip32: cannot derive a hardened child from a public key")
	ErrInvalidBase58Check       = errors.New("bip32: invalid base58check encoding")
	ErrUnknownVersion           = errors.New("bip32: unrecognized extended key version bytes")
	ErrMalformedPayload         = errors.New("bip32: extended key payload must be 78 bytes")
)

// ExtendedPrivateKey is a BIP-32 node carrying a secp256k1 private scalar.
type ExtendedPrivateKey struct {
	Testnet     bool
	Depth       uint8
	Fingerprint [4]byte
	ChildNumber uint32
	ChainCode   [32]byte
	Key         [32]byte
}

// ExtendedPublicKey is a BIP-32 node carrying a compressed public point.
type ExtendedPublicKey struct {
	Testnet     bool
	Depth       uint8
	Fingerprint [4]byte
	ChildNumber uint32
	ChainCode   [32]byte
	Key         [33]byte
}

// CreateMasterKey derives the master extended private key from a 64-byte
// BIP-39 seed: I = HMAC-SHA512("Bitcoin seed", seed); k = I[0:32]; c =
// I[32:64].
func CreateMasterKey(seed [64]byte, testnet bool) (*ExtendedPrivateKey, error) {
	i := hashutil.HMACSHA512([]byte("Bitcoin seed"), seed[:])
	var k [32]byte
	copy(k[:], i[:32])
	if !seckey.ScalarValid(k) {
		return nil, ErrInvalidMasterKey
	}
	var c [32]byte
	copy(c[:], i[32:])
	return &ExtendedPrivateKey{
		Testnet:   testnet,
		Depth:     0,
		Key:       k,
		ChainCode: c,
	}, nil
}

// publicPoint returns the compressed public point corresponding to k.Key.
func (k *ExtendedPrivateKey) publicPoint() ([33]byte, error) {
	return seckey.PointMulG(k.Key)
}

// Neuter returns the extended public key corresponding to k (BIP-32's
// N()).
func (k *ExtendedPrivateKey) Neuter() (*ExtendedPublicKey, error) {
	pub, err := k.publicPoint()
	if err != nil {
		return nil, err
	}
	return &ExtendedPublicKey{
		Testnet:     k.Testnet,
		Depth:       k.Depth,
		Fingerprint: k.Fingerprint,
		ChildNumber: k.ChildNumber,
		ChainCode:   k.ChainCode,
		Key:         pub,
	}, nil
}

// fingerprintOf returns the first 4 bytes of Hash160 of a compressed
// public point, used as the parent fingerprint stamped into children.
func fingerprintOf(pub [33]byte) [4]byte {
	h := hashutil.Hash160(pub[:])
	var fp [4]byte
	copy(fp[:], h[:4])
	return fp
}

// DeriveChild computes CKDpriv(k, c, i), retrying at i+1 whenever the HMAC
// output is out of range, per BIP-32 section "Child key derivation".
// Hardened derivation is requested by i >= HardenedOffset.
func (k *ExtendedPrivateKey) DeriveChild(i uint32) (*ExtendedPrivateKey, error) {
	if k.Depth == 255 {
		return nil, ErrDepthExhausted
	}
	parentPub, err := k.publicPoint()
	if err != nil {
		return nil, err
	}

	var data []byte
	if i >= HardenedOffset {
		data = make([]byte, 0, 1+32+4)
		data = append(data, 0x00)
		data = append(data, k.Key[:]...)
	} else {
		data = make([]byte, 0, 33+4)
		data = append(data, parentPub[:]...)
	}
	var iBE [4]byte
	binary.BigEndian.PutUint32(iBE[:], i)
	data = append(data, iBE[:]...)

	im := hashutil.HMACSHA512(k.ChainCode[:], data)
	var il, ir [32]byte
	copy(il[:], im[:32])
	copy(ir[:], im[32:])

	if !seckey.ScalarValid(il) {
		return k.retryNextIndex(i)
	}
	childKey, zero := seckey.ScalarAdd(il, k.Key)
	if zero {
		return k.retryNextIndex(i)
	}

	return &ExtendedPrivateKey{
		Testnet:     k.Testnet,
		Depth:       k.Depth + 1,
		Fingerprint: fingerprintOf(parentPub),
		ChildNumber: i,
		ChainCode:   ir,
		Key:         childKey,
	}, nil
}

func (k *ExtendedPrivateKey) retryNextIndex(i uint32) (*ExtendedPrivateKey, error) {
	if i == 0xFFFFFFFF {
		return nil, ErrDepthExhausted
	}
	return k.DeriveChild(i + 1)
}

// DeriveChild computes CKDpub(K, c, i) for a non-hardened index, retrying
// at i+1 whenever the HMAC output is out of range or the resulting point
// is the point at infinity.
func (k *ExtendedPublicKey) DeriveChild(i uint32) (*ExtendedPublicKey, error) {
	if i >= HardenedOffset {
		return nil, ErrHardenedPublicDerivation
	}
	if k.Depth == 255 {
		return nil, ErrDepthExhausted
	}

	data := make([]byte, 0, 33+4)
	data = append(data, k.Key[:]...)
	var iBE [4]byte
	binary.BigEndian.PutUint32(iBE[:], i)
	data = append(data, iBE[:]...)

	im := hashutil.HMACSHA512(k.ChainCode[:], data)
	var il, ir [32]byte
	copy(il[:], im[:32])
	copy(ir[:], im[32:])

	if !seckey.ScalarValid(il) {
		return k.retryNextIndex(i)
	}
	ilPoint, err := seckey.PointMulG(il)
	if err != nil {
		return k.retryNextIndex(i)
	}
	childPoint, err := seckey.PointAdd(ilPoint, k.Key)
	if errors.Is(err, seckey.ErrPointAtInfinity) {
		return k.retryNextIndex(i)
	} else if err != nil {
		return nil, err
	}

	return &ExtendedPublicKey{
		Testnet:     k.Testnet,
		Depth:       k.Depth + 1,
		Fingerprint: fingerprintOf(k.Key),
		ChildNumber: i,
		ChainCode:   ir,
		Key:         childPoint,
	}, nil
}

func (k *ExtendedPublicKey) retryNextIndex(i uint32) (*ExtendedPublicKey, error) {
	if i == HardenedOffset-1 {
		return nil, ErrDepthExhausted
	}
	return k.DeriveChild(i + 1)
}

// GetFingerprint returns the first 4 bytes of Hash160 of k's own public
// point, used as the parent fingerprint when this key derives children
// (callers compare it against a claimed child's Fingerprint field).
func (k *ExtendedPrivateKey) GetFingerprint() ([4]byte, error) {
	pub, err := k.publicPoint()
	if err != nil {
		return [4]byte{}, err
	}
	return fingerprintOf(pub), nil
}

// ToBase58Check serializes k into the 78-byte extended-key payload and
// Base58Check-encodes it with the xprv version byte for k's network.
func (k *ExtendedPrivateKey) ToBase58Check() string {
	version := versionXprvMainnet
	if k.Testnet {
		version = versionXprvTestnet
	}
	payload := make([]byte, 0, 78)
	payload = append(payload, version[:]...)
	payload = append(payload, byte(k.Depth))
	payload = append(payload, k.Fingerprint[:]...)
	var cn [4]byte
	binary.BigEndian.PutUint32(cn[:], k.ChildNumber)
	payload = append(payload, cn[:]...)
	payload = append(payload, k.ChainCode[:]...)
	payload = append(payload, 0x00)
	payload = append(payload, k.Key[:]...)
	return checkEncode(payload)
}

// ToBase58Check serializes k's 78-byte payload with the xpub version byte.
func (k *ExtendedPublicKey) ToBase58Check() string {
	version := versionXpubMainnet
	if k.Testnet {
		version = versionXpubTestnet
	}
	payload := make([]byte, 0, 78)
	payload = append(payload, version[:]...)
	payload = append(payload, byte(k.Depth))
	payload = append(payload, k.Fingerprint[:]...)
	var cn [4]byte
	binary.BigEndian.PutUint32(cn[:], k.ChildNumber)
	payload = append(payload, cn[:]...)
	payload = append(payload, k.ChainCode[:]...)
	payload = append(payload, k.Key[:]...)
	return checkEncode(payload)
}

// checkEncode base58-encodes payload with a trailing double-SHA-256
// checksum, matching the 4-byte-version-prefixed layout used by extended
// keys (the version bytes are already part of payload, so no separate
// version argument is passed to the codec helper here).
func checkEncode(payload []byte) string {
	checksum := hashutil.DoubleSHA256(payload)
	full := append(append([]byte{}, payload...), checksum[:4]...)
	return codec.Base58Encode(full)
}

// ParsePrivateBase58Check decodes an xprv string into an ExtendedPrivateKey.
func ParsePrivateBase58Check(s string) (*ExtendedPrivateKey, error) {
	payload, err := decodeAndVerify(s)
	if err != nil {
		return nil, err
	}
	var version [4]byte
	copy(version[:], payload[:4])
	var testnet bool
	switch version {
	case versionXprvMainnet:
		testnet = false
	case versionXprvTestnet:
		testnet = true
	default:
		return nil, ErrUnknownVersion
	}
	k := &ExtendedPrivateKey{Testnet: testnet}
	k.Depth = payload[4]
	copy(k.Fingerprint[:], payload[5:9])
	k.ChildNumber = binary.BigEndian.Uint32(payload[9:13])
	copy(k.ChainCode[:], payload[13:45])
	if payload[45] != 0x00 {
		return nil, ErrMalformedPayload
	}
	copy(k.Key[:], payload[46:78])
	return k, nil
}

// ParsePublicBase58Check decodes an xpub string into an ExtendedPublicKey.
func ParsePublicBase58Check(s string) (*ExtendedPublicKey, error) {
	payload, err := decodeAndVerify(s)
	if err != nil {
		return nil, err
	}
	var version [4]byte
	copy(version[:], payload[:4])
	var testnet bool
	switch version {
	case versionXpubMainnet:
		testnet = false
	case versionXpubTestnet:
		testnet = true
	default:
		return nil, ErrUnknownVersion
	}
	k := &ExtendedPublicKey{Testnet: testnet}
	k.Depth = payload[4]
	copy(k.Fingerprint[:], payload[5:9])
	k.ChildNumber = binary.BigEndian.Uint32(payload[9:13])
	copy(k.ChainCode[:], payload[13:45])
	copy(k.Key[:], payload[45:78])
	return k, nil
}

func decodeAndVerify(s string) ([]byte, error) {
	decoded, err := codec.Base58Decode(s)
	if err != nil {
		return nil, ErrInvalidBase58Check
	}
	if len(decoded) != 82 {
		return nil, ErrMalformedPayload
	}
	payload, checksum := decoded[:78], decoded[78:]
	want := hashutil.DoubleSHA256(payload)
	for i := 0; i < 4; i++ {
		if checksum[i] != want[i] {
			return nil, ErrInvalidBase58Check
		}
	}
	return payload, nil
}
