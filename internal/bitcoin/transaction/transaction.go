// Package transaction implements the legacy Bitcoin transaction model:
// construction from boxed UTXOs and targets, legacy SIGHASH_ALL
// computation, ECDSA signing, and canonical wire serialization.
package transaction

import (
	"encoding/binary"
	"encoding/hex"
	"errors"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/codec"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/hashutil"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/script"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/seckey"
)

// SigHashAll is the only sighash type this wallet produces.
const SigHashAll uint32 = 0x01

// ErrUnsupportedScript is returned when a UTXO's previous output is not a
// P2PKH scriptPubKey.
var ErrUnsupportedScript = errors.New("transaction: unsupported previous output script type")

// TxOut is a transaction output.
type TxOut struct {
	Value           uint64
	ScriptPubKey    []byte
	ScriptPubKeyASM string
	Type            script.Type
	Address         string
}

// TxIn is a transaction input.
type TxIn struct {
	PrevTxID     [32]byte // natural (big-endian display) byte order
	PrevVout     uint32
	Prevout      TxOut
	ScriptSig    []byte
	ScriptSigASM string
	Sequence     uint32
}

// Transaction is a legacy, version-1 Bitcoin transaction.
type Transaction struct {
	Version  uint32
	Locktime uint32
	Vin      []TxIn
	Vout     []TxOut
}

// Target is a (address script, value) pair used to build outputs.
type Target struct {
	ScriptPubKeyASM string
	Value           uint64
}

// BoxedUTXOInput is the minimal shape Build needs from a boxed UTXO: the
// previous outpoint, its scriptPubKey (to validate type and to compute
// the sighash), and the private key that signs it.
type BoxedUTXOInput struct {
	TxID       [32]byte
	Vout       uint32
	Prevout    TxOut
	PrivateKey [32]byte
	PublicKey  [33]byte
}

// Build assembles an unsigned transaction from boxed UTXOs and spend
// targets. Every UTXO's previous output must be a P2PKH script.
func Build(inputs []BoxedUTXOInput, targets []Target) (*Transaction, error) {
	tx := &Transaction{Version: 1, Locktime: 0}
	for _, in := range inputs {
		if in.Prevout.Type != script.TypeP2PKH {
			return nil, ErrUnsupportedScript
		}
		tx.Vin = append(tx.Vin, TxIn{
			PrevTxID: in.TxID,
			PrevVout: in.Vout,
			Prevout:  in.Prevout,
			Sequence: 0xFFFFFFFF,
		})
	}
	for _, t := range targets {
		scriptBytes, err := script.Serialize(t.ScriptPubKeyASM)
		if err != nil {
			return nil, err
		}
		// Strip the VarInt length prefix script.Serialize adds: TxOut
		// stores raw script bytes and re-prefixes at wire-serialize time.
		_, n, err := codec.DecodeVarInt(scriptBytes)
		if err != nil {
			return nil, err
		}
		tx.Vout = append(tx.Vout, TxOut{
			Value:           t.Value,
			ScriptPubKey:    scriptBytes[n:],
			ScriptPubKeyASM: t.ScriptPubKeyASM,
			Type:            script.TypeP2PKH,
		})
	}
	return tx, nil
}

// shallowCopy duplicates tx's input/output slices (but not their nested
// byte slices) so the sighash computation can mutate scriptSigs without
// disturbing the caller's transaction.
func (tx *Transaction) shallowCopy() *Transaction {
	cp := &Transaction{Version: tx.Version, Locktime: tx.Locktime}
	cp.Vin = make([]TxIn, len(tx.Vin))
	copy(cp.Vin, tx.Vin)
	cp.Vout = make([]TxOut, len(tx.Vout))
	copy(cp.Vout, tx.Vout)
	return cp
}

// SignatureHash computes the legacy SIGHASH_ALL digest for input index i:
// every scriptSig is blanked except input i's, which is set to the
// previous output's scriptPubKey; the serialized transaction (through
// locktime) is double-SHA-256'd after appending the 4-byte sighash type.
func (tx *Transaction) SignatureHash(i int) ([32]byte, error) {
	if i < 0 || i >= len(tx.Vin) {
		return [32]byte{}, errors.New("transaction: input index out of range")
	}
	cp := tx.shallowCopy()
	for idx := range cp.Vin {
		if idx == i {
			scriptBytes, err := script.Serialize(cp.Vin[idx].Prevout.ScriptPubKeyASM)
			if err != nil {
				return [32]byte{}, err
			}
			_, n, err := codec.DecodeVarInt(scriptBytes)
			if err != nil {
				return [32]byte{}, err
			}
			cp.Vin[idx].ScriptSig = scriptBytes[n:]
		} else {
			cp.Vin[idx].ScriptSig = nil
		}
	}
	buf := cp.Serialize()
	var sighash [4]byte
	binary.LittleEndian.PutUint32(sighash[:], SigHashAll)
	buf = append(buf, sighash[:]...)
	return hashutil.DoubleSHA256(buf), nil
}

// SignInput signs input i with the given private/public key pair and sets
// its scriptSig asm. Inputs may be signed in any order.
func (tx *Transaction) SignInput(i int, privKey [32]byte, pubKey [33]byte) error {
	z, err := tx.SignatureHash(i)
	if err != nil {
		return err
	}
	der, err := seckey.ECDSASignDER(z, privKey)
	if err != nil {
		return err
	}
	sigWithType := append(append([]byte{}, der...), byte(SigHashAll))
	tx.Vin[i].ScriptSigASM = script.P2PKHScriptSigASM(sigWithType, pubKey)
	scriptBytes, err := script.Serialize(tx.Vin[i].ScriptSigASM)
	if err != nil {
		return err
	}
	_, n, err := codec.DecodeVarInt(scriptBytes)
	if err != nil {
		return err
	}
	tx.Vin[i].ScriptSig = scriptBytes[n:]
	return nil
}

// SignAllInputs signs every input against its own (privateKey, publicKey)
// pair, supplied in input order.
func (tx *Transaction) SignAllInputs(keys []struct {
	PrivateKey [32]byte
	PublicKey  [33]byte
}) error {
	for i, k := range keys {
		if err := tx.SignInput(i, k.PrivateKey, k.PublicKey); err != nil {
			return err
		}
	}
	return nil
}

// serializeBase serializes version, inputs, and outputs — everything the
// wire format and the sighash preimage have in common before locktime (and
// before the sighash's own trailing type word).
func (tx *Transaction) serializeBase() []byte {
	var buf []byte
	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], tx.Version)
	buf = append(buf, version[:]...)
	buf = append(buf, codec.EncodeVarInt(uint64(len(tx.Vin)))...)
	for _, in := range tx.Vin {
		buf = append(buf, serializeTxIn(in)...)
	}
	buf = append(buf, codec.EncodeVarInt(uint64(len(tx.Vout)))...)
	for _, out := range tx.Vout {
		buf = append(buf, serializeTxOut(out)...)
	}
	return buf
}

// Serialize produces the canonical wire bytes of a (presumably signed)
// transaction.
func (tx *Transaction) Serialize() []byte {
	buf := tx.serializeBase()
	var locktime [4]byte
	binary.LittleEndian.PutUint32(locktime[:], tx.Locktime)
	return append(buf, locktime[:]...)
}

// SerializeHex is Serialize hex-encoded, the form handed to the broadcast
// collaborator.
func (tx *Transaction) SerializeHex() string {
	return hex.EncodeToString(tx.Serialize())
}

func serializeTxIn(in TxIn) []byte {
	var buf []byte
	reversed := reverseBytes(in.PrevTxID[:])
	buf = append(buf, reversed...)
	var vout [4]byte
	binary.LittleEndian.PutUint32(vout[:], in.PrevVout)
	buf = append(buf, vout[:]...)
	buf = append(buf, codec.EncodeVarInt(uint64(len(in.ScriptSig)))...)
	buf = append(buf, in.ScriptSig...)
	var seq [4]byte
	binary.LittleEndian.PutUint32(seq[:], in.Sequence)
	buf = append(buf, seq[:]...)
	return buf
}

func serializeTxOut(out TxOut) []byte {
	var buf []byte
	var value [8]byte
	binary.LittleEndian.PutUint64(value[:], out.Value)
	buf = append(buf, value[:]...)
	buf = append(buf, codec.EncodeVarInt(uint64(len(out.ScriptPubKey)))...)
	buf = append(buf, out.ScriptPubKey...)
	return buf
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
