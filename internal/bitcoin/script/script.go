// Package script implements the minimal legacy Bitcoin script codec this
// wallet needs: an opcode table, an asm<->bytes tokenizer, and the P2PKH
// templates. It is not a general script interpreter.
package script

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/codec"
)

// Opcodes used by the P2PKH template and push-data encoding.
const (
	OpDup         = 0x76
	OpHash160     = 0xa9
	OpEqualVerify = 0x88
	OpCheckSig    = 0xac
	OpPushData1   = 0x4c
	OpPushData2   = 0x4d
)

var opToWord = map[byte]string{
	OpDup:         "OP_DUP",
	OpHash160:     "OP_HASH160",
	OpEqualVerify: "OP_EQUALVERIFY",
	OpCheckSig:    "OP_CHECKSIG",
	OpPushData1:   "OP_PUSHDATA1",
	OpPushData2:   "OP_PUSHDATA2",
}

var wordToOp = func() map[string]byte {
	m := make(map[string]byte, len(opToWord))
	for op, word := range opToWord {
		m[word] = op
	}
	return m
}()

// ErrPushTooLarge is returned by Serialize when a data push exceeds 520
// bytes, the maximum this codec's templates ever need to emit.
var ErrPushTooLarge = errors.New("script: push data exceeds 520 bytes")

// Type names a supported scriptPubKey template.
type Type string

// The only script type this wallet supports end-to-end.
const TypeP2PKH Type = "p2pkh"

// ParseType parses a script type name, failing on anything but "p2pkh".
func ParseType(s string) (Type, error) {
	if Type(s) != TypeP2PKH {
		return "", fmt.Errorf("script: unsupported script type %q", s)
	}
	return TypeP2PKH, nil
}

// Serialize tokenizes an asm string on whitespace and encodes it to raw
// script bytes, VarInt-length-prefixed. OP_PUSHBYTES_n pseudo-tokens are
// ignored (the following hex token carries the actual data); opcode
// tokens are looked up in the table; any other token is treated as a hex
// push whose length determines direct-push vs OP_PUSHDATA1/2 encoding.
func Serialize(asm string) ([]byte, error) {
	var raw []byte
	for _, tok := range strings.Fields(asm) {
		if strings.HasPrefix(tok, "OP_PUSHBYTES_") {
			continue
		}
		if op, ok := wordToOp[tok]; ok {
			raw = append(raw, op)
			continue
		}
		data, err := hex.DecodeString(tok)
		if err != nil {
			return nil, fmt.Errorf("script: unrecognized token %q", tok)
		}
		switch {
		case len(data) < 75:
			raw = append(raw, byte(len(data)))
		case len(data) < 256:
			raw = append(raw, OpPushData1, byte(len(data)))
		case len(data) <= 520:
			raw = append(raw, OpPushData2, byte(len(data)), byte(len(data)>>8))
		default:
			return nil, ErrPushTooLarge
		}
		raw = append(raw, data...)
	}
	prefixed := append(codec.EncodeVarInt(uint64(len(raw))), raw...)
	return prefixed, nil
}

// P2PKHScriptPubKeyASM returns the scriptPubKey asm for a P2PKH output
// paying the given 20-byte hash160.
func P2PKHScriptPubKeyASM(h160 [20]byte) string {
	return fmt.Sprintf("%s %s OP_PUSHBYTES_20 %s %s %s",
		opToWord[OpDup], opToWord[OpHash160], hex.EncodeToString(h160[:]),
		opToWord[OpEqualVerify], opToWord[OpCheckSig])
}

// P2PKHScriptSigASM returns the scriptSig asm for a P2PKH input: the
// DER signature (with appended sighash-type byte) followed by the
// compressed public key, both hex-encoded.
func P2PKHScriptSigASM(sigWithSighashType []byte, compressedPubKey [33]byte) string {
	return fmt.Sprintf("%s %s", hex.EncodeToString(sigWithSighashType), hex.EncodeToString(compressedPubKey[:]))
}
