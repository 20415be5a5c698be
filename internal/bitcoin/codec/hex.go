// Package codec implements the lossless byte encodings the rest of the
// wallet builds on: hex, VarInt, and Base58/Base58Check.
package codec

import "encoding/hex"

// HexToBytes decodes a lowercase or uppercase hex string. It rejects
// odd-length input the same way the underlying encoding does.
func HexToBytes(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// BytesToHex returns the lowercase hex encoding of b.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}
