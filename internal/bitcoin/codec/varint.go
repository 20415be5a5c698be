package codec

import "encoding/binary"

// EncodeVarInt encodes num using Bitcoin's compact integer encoding:
// n < 0xFD is a single byte; n < 2^16 is 0xFD plus a little-endian u16;
// n < 2^32 is 0xFE plus a little-endian u32; otherwise 0xFF plus a
// little-endian u64.
func EncodeVarInt(num uint64) []byte {
	switch {
	case num < 0xfd:
		return []byte{byte(num)}
	case num < 0x10000:
		buf := make([]byte, 3)
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(num))
		return buf
	case num < 0x100000000:
		buf := make([]byte, 5)
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(num))
		return buf
	default:
		buf := make([]byte, 9)
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], num)
		return buf
	}
}

// DecodeVarInt reads a VarInt from the start of b and returns its value
// together with the number of bytes consumed.
func DecodeVarInt(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, errShortVarInt
	}
	switch b[0] {
	case 0xfd:
		if len(b) < 3 {
			return 0, 0, errShortVarInt
		}
		return uint64(binary.LittleEndian.Uint16(b[1:3])), 3, nil
	case 0xfe:
		if len(b) < 5 {
			return 0, 0, errShortVarInt
		}
		return uint64(binary.LittleEndian.Uint32(b[1:5])), 5, nil
	case 0xff:
		if len(b) < 9 {
			return 0, 0, errShortVarInt
		}
		return binary.LittleEndian.Uint64(b[1:9]), 9, nil
	default:
		return uint64(b[0]), 1, nil
	}
}
