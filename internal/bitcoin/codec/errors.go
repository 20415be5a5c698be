package codec

import "errors"

var errShortVarInt = errors.New("codec: truncated varint")
