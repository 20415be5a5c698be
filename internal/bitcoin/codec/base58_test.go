package codec

import (
	"bytes"
	"testing"
)

func TestBase58EncodeVector(t *testing.T) {
	got := Base58Encode([]byte("asdfg4d04kblm58slq"))
	want := "53SBFPHJ2fYLpcrVQBRy8st9v"
	if got != want {
		t.Errorf("Base58Encode = %q, want %q", got, want)
	}
}

func TestBase58DecodeVector(t *testing.T) {
	got, err := Base58Decode("hQgQJ9mLxjdhSrmqbiFy1HXkezgWP9bQ99")
	if err != nil {
		t.Fatalf("Base58Decode: %v", err)
	}
	want := []byte("dlbaSl391032flml20s0x1lsd")
	if !bytes.Equal(got, want) {
		t.Errorf("Base58Decode = %q, want %q", got, want)
	}
}

func TestBase58DecodeRejectsInvalidCharacter(t *testing.T) {
	if _, err := Base58Decode("0OIl"); err != ErrInvalidBase58 {
		t.Errorf("Base58Decode(\"0OIl\") error = %v, want ErrInvalidBase58", err)
	}
}

func TestBase58RoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x00},
		{0x00, 0x00, 0x01},
		[]byte("hello, bitcoin"),
		bytes.Repeat([]byte{0xff}, 32),
	}
	for _, in := range inputs {
		encoded := Base58Encode(in)
		decoded, err := Base58Decode(encoded)
		if err != nil {
			t.Fatalf("Base58Decode(%x): %v", encoded, err)
		}
		if !bytes.Equal(decoded, in) {
			t.Errorf("round trip of % x: got % x", in, decoded)
		}
	}
}

func TestBase58CheckRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte{0x11}, 20)
	for _, version := range []byte{0x00, 0x6f} {
		encoded := Base58CheckEncode(version, payload)
		gotVersion, gotPayload, err := Base58CheckDecode(encoded)
		if err != nil {
			t.Fatalf("Base58CheckDecode(%s): %v", encoded, err)
		}
		if gotVersion != version || !bytes.Equal(gotPayload, payload) {
			t.Errorf("Base58CheckDecode(%s) = (%x, %x), want (%x, %x)", encoded, gotVersion, gotPayload, version, payload)
		}
	}
}

func TestBase58CheckDecodeChecksumMismatch(t *testing.T) {
	encoded := Base58CheckEncode(0x00, bytes.Repeat([]byte{0x01}, 20))
	replacement := "2"
	if encoded[len(encoded)-1] == '2' {
		replacement = "3"
	}
	tampered := encoded[:len(encoded)-1] + replacement
	if _, _, err := Base58CheckDecode(tampered); err == nil {
		t.Error("Base58CheckDecode of tampered string: expected error, got nil")
	}
}
