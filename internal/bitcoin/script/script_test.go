package script

import (
	"encoding/hex"
	"testing"
)

func TestParseTypeAcceptsOnlyP2PKH(t *testing.T) {
	got, err := ParseType("p2pkh")
	if err != nil || got != TypeP2PKH {
		t.Fatalf("ParseType(p2pkh) = (%v, %v), want (TypeP2PKH, nil)", got, err)
	}
	if _, err := ParseType("v0_p2wpkh"); err == nil {
		t.Error("ParseType(v0_p2wpkh) succeeded, want error")
	}
}

func TestP2PKHScriptPubKeyASM(t *testing.T) {
	h160 := [20]byte{}
	copy(h160[:], mustHex(t, "fc20f7fc8b0a6785e02ebe93adbcc66f3065c997"))
	got := P2PKHScriptPubKeyASM(h160)
	want := "OP_DUP OP_HASH160 OP_PUSHBYTES_20 fc20f7fc8b0a6785e02ebe93adbcc66f3065c997 OP_EQUALVERIFY OP_CHECKSIG"
	if got != want {
		t.Errorf("P2PKHScriptPubKeyASM = %q, want %q", got, want)
	}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("mustHex(%q): %v", s, err)
	}
	return b
}

func TestSerializeP2PKHScriptPubKey(t *testing.T) {
	asm := "OP_DUP OP_HASH160 OP_PUSHBYTES_20 fc20f7fc8b0a6785e02ebe93adbcc66f3065c997 OP_EQUALVERIFY OP_CHECKSIG"
	got, err := Serialize(asm)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	// VarInt(25) + 0x76 0xa9 0x14 <20 bytes> 0x88 0xac
	want := "1976a914fc20f7fc8b0a6785e02ebe93adbcc66f3065c99788ac"
	if got := hex.EncodeToString(got); got != want {
		t.Errorf("Serialize = %s, want %s", got, want)
	}
}

func TestSerializeScriptSig(t *testing.T) {
	sig := mustHex(t, "304502210082d5afc04466b7566bcc44a4670980393edbfa88d0daf02c163372fdcb5a1dc902203aa732322fd0cfca0d7fef4889779471d832dc0fa73ff5518a30f92054b02d5101")
	pub := [33]byte{0x03}
	for i := 1; i < 33; i++ {
		pub[i] = byte(i)
	}
	asm := P2PKHScriptSigASM(sig, pub)
	got, err := Serialize(asm)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	wantLen := byte(1 + len(sig) + 1 + len(pub))
	if got[0] != wantLen {
		t.Errorf("serialized scriptSig VarInt length prefix = %#x, want %#x", got[0], wantLen)
	}
	if got[1] != byte(len(sig)) || got[1+len(sig)+1] != 0x21 {
		t.Errorf("serialized scriptSig push-length bytes malformed: %x", got)
	}
}

func TestSerializeRejectsUnrecognizedToken(t *testing.T) {
	if _, err := Serialize("OP_DUP not-hex-or-opcode"); err == nil {
		t.Error("Serialize with a garbage token succeeded, want error")
	}
}

func TestSerializeOpPushData1Boundary(t *testing.T) {
	data := make([]byte, 75)
	for i := range data {
		data[i] = 0xAB
	}
	asm := hex.EncodeToString(data)
	got, err := Serialize(asm)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	// VarInt(1+1+75) then OpPushData1, length byte, then the data itself.
	if got[1] != OpPushData1 || got[2] != 75 {
		t.Errorf("75-byte push encoded as %x, want OP_PUSHDATA1 75 ...", got[:3])
	}
}
