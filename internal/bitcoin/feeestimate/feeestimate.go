// Package feeestimate estimates the on-wire size and fee of a legacy
// P2PKH transaction from its input/output counts.
package feeestimate

import "github.com/jasony/bitcoinwallet/internal/bitcoin/codec"

// Per-input/output byte costs for a legacy P2PKH transaction: a
// DER-signature-bearing scriptSig plus outpoint/sequence overhead for
// inputs, and a P2PKH scriptPubKey plus value for outputs.
const (
	txInputSize  = 147
	txOutputSize = 34
)

// EstimateSize returns the estimated serialized size in bytes of a
// transaction with nIn inputs and nOut outputs.
func EstimateSize(nIn, nOut uint64) uint64 {
	return 4 +
		uint64(len(codec.EncodeVarInt(nIn))) + nIn*txInputSize +
		uint64(len(codec.EncodeVarInt(nOut))) + nOut*txOutputSize +
		4
}

// EstimateFee returns EstimateSize(nIn, nOut) * feePerByte.
func EstimateFee(nIn, nOut, feePerByte uint64) uint64 {
	return EstimateSize(nIn, nOut) * feePerByte
}
