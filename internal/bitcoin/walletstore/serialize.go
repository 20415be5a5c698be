// Package walletstore implements the canonical binary serialization of a
// BIP-44 private hierarchy and its AES-256-GCM encrypted-at-rest envelope.
//
// The binary layout is hand-rolled over encoding/binary rather than a
// general-purpose Go serializer: fields appear in a fixed order, integers
// are little-endian, variable-length fields are length-prefixed, and maps
// serialize as a count followed by (key, value) pairs in ascending key
// order, so two runs over the same tree always produce byte-identical
// output.
package walletstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sort"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip32"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip44"
)

var errTruncated = errors.New("walletstore: truncated or malformed wallet file")

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, errTruncated
	}
	return b[0] == 1, nil
}

func writeExtendedPrivate(buf *bytes.Buffer, k *bip32.ExtendedPrivateKey) {
	writeBool(buf, k.Testnet)
	buf.WriteByte(k.Depth)
	buf.Write(k.Fingerprint[:])
	var cn [4]byte
	binary.LittleEndian.PutUint32(cn[:], k.ChildNumber)
	buf.Write(cn[:])
	buf.Write(k.ChainCode[:])
	buf.Write(k.Key[:])
}

func readExtendedPrivate(r io.Reader) (*bip32.ExtendedPrivateKey, error) {
	k := &bip32.ExtendedPrivateKey{}
	var err error
	if k.Testnet, err = readBool(r); err != nil {
		return nil, err
	}
	var depth [1]byte
	if _, err := io.ReadFull(r, depth[:]); err != nil {
		return nil, errTruncated
	}
	k.Depth = depth[0]
	if _, err := io.ReadFull(r, k.Fingerprint[:]); err != nil {
		return nil, errTruncated
	}
	var cn [4]byte
	if _, err := io.ReadFull(r, cn[:]); err != nil {
		return nil, errTruncated
	}
	k.ChildNumber = binary.LittleEndian.Uint32(cn[:])
	if _, err := io.ReadFull(r, k.ChainCode[:]); err != nil {
		return nil, errTruncated
	}
	if _, err := io.ReadFull(r, k.Key[:]); err != nil {
		return nil, errTruncated
	}
	return k, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errTruncated
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// sortedKeysOfAccounts returns the keys of an account map in ascending order.
func sortedKeysOfAccounts(m map[uint32]*bip44.Account) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedKeysOfCoinTypes(m map[uint32]*bip44.CoinType) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedKeysOfKeypairs(m map[uint32]*bip44.Keypair) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func writeChain(buf *bytes.Buffer, chain *bip44.Chain) {
	keys := sortedKeysOfKeypairs(chain.Keypairs)
	writeUint32(buf, uint32(len(keys)))
	for _, idx := range keys {
		writeUint32(buf, idx)
		writeExtendedPrivate(buf, chain.Keypairs[idx].PrivateKey)
	}
}

// Serialize encodes h's private hierarchy into the canonical binary
// layout: master, purpose, then coin types in ascending index order, each
// with its accounts in ascending index order and each account's two
// chains' allocated keypairs in ascending index order.
func Serialize(h *bip44.PrivateHierarchy) []byte {
	buf := &bytes.Buffer{}
	writeExtendedPrivate(buf, h.Master)
	writeExtendedPrivate(buf, h.Purpose)

	coinKeys := sortedKeysOfCoinTypes(h.CoinTypes)
	writeUint32(buf, uint32(len(coinKeys)))
	for _, ctIdx := range coinKeys {
		ct := h.CoinTypes[ctIdx]
		writeUint32(buf, ct.Index)
		writeBool(buf, ct.Testnet)
		writeExtendedPrivate(buf, ct.Base())

		accKeys := sortedKeysOfAccounts(ct.Accounts)
		writeUint32(buf, uint32(len(accKeys)))
		for _, accIdx := range accKeys {
			acc := ct.Accounts[accIdx]
			writeUint32(buf, acc.Index)
			writeExtendedPrivate(buf, acc.External.Base())
			writeChain(buf, acc.External)
			writeExtendedPrivate(buf, acc.Internal.Base())
			writeChain(buf, acc.Internal)
		}
	}
	return buf.Bytes()
}

// Deserialize reverses Serialize, rebuilding a fully populated
// PrivateHierarchy without re-deriving anything from the seed.
func Deserialize(data []byte) (*bip44.PrivateHierarchy, error) {
	r := bytes.NewReader(data)
	master, err := readExtendedPrivate(r)
	if err != nil {
		return nil, err
	}
	purpose, err := readExtendedPrivate(r)
	if err != nil {
		return nil, err
	}
	h := bip44.NewPrivateHierarchy(master, purpose)

	coinCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < coinCount; i++ {
		ctIndex, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		testnet, err := readBool(r)
		if err != nil {
			return nil, err
		}
		base, err := readExtendedPrivate(r)
		if err != nil {
			return nil, err
		}
		ct := h.AddCoinType(ctIndex, testnet, base)

		accCount, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < accCount; j++ {
			accIndex, err := readUint32(r)
			if err != nil {
				return nil, err
			}
			extBase, err := readExtendedPrivate(r)
			if err != nil {
				return nil, err
			}
			extKeys, err := readChainKeys(r)
			if err != nil {
				return nil, err
			}
			intBase, err := readExtendedPrivate(r)
			if err != nil {
				return nil, err
			}
			intKeys, err := readChainKeys(r)
			if err != nil {
				return nil, err
			}
			if err := ct.RestoreAccount(accIndex, extBase, extKeys, intBase, intKeys); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

func readChainKeys(r io.Reader) (map[uint32]*bip32.ExtendedPrivateKey, error) {
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	keys := make(map[uint32]*bip32.ExtendedPrivateKey, count)
	for i := uint32(0); i < count; i++ {
		idx, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		k, err := readExtendedPrivate(r)
		if err != nil {
			return nil, err
		}
		keys[idx] = k
	}
	return keys, nil
}
