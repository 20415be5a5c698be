package transaction

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/script"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/seckey"
)

func TestSerializeTxOutVector(t *testing.T) {
	asm := "OP_DUP OP_HASH160 fc20f7fc8b0a6785e02ebe93adbcc66f3065c997 OP_EQUALVERIFY OP_CHECKSIG"
	scriptBytes, err := script.Serialize(asm)
	if err != nil {
		t.Fatalf("script.Serialize: %v", err)
	}
	// script.Serialize VarInt-prefixes its output; TxOut stores the raw
	// bytes and serializeTxOut re-prefixes them, so strip the prefix here.
	out := TxOut{Value: 1000, ScriptPubKey: scriptBytes[1:]}
	got := hex.EncodeToString(serializeTxOut(out))
	want := "e8030000000000001976a914fc20f7fc8b0a6785e02ebe93adbcc66f3065c99788ac"
	if got != want {
		t.Errorf("serializeTxOut = %s, want %s", got, want)
	}
}

func mustHex32(t *testing.T, s string) [32]byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		t.Fatalf("mustHex32(%q): bad fixture", s)
	}
	var out [32]byte
	copy(out[:], b)
	return out
}

func TestBuildSignSerializeVector(t *testing.T) {
	secret, ok := new(big.Int).SetString("54471658843786062176644521799104358682409094809685530415586086977504002449585", 10)
	if !ok {
		t.Fatal("bad fixture secret")
	}
	var sk [32]byte
	secret.FillBytes(sk[:])
	pk, err := seckey.PointMulG(sk)
	if err != nil {
		t.Fatalf("PointMulG: %v", err)
	}

	txid := mustHex32(t, "d8cb1a81c683dde549e474566345c4d74f649e6dad642aab7d5fcee5d4583e5a")
	prevout := TxOut{
		Value:           10000,
		Type:            script.TypeP2PKH,
		ScriptPubKeyASM: "OP_DUP OP_HASH160 OP_PUSHBYTES_20 6bd18c889da9d66610354ccdc4676f055bae2980 OP_EQUALVERIFY OP_CHECKSIG",
	}
	inputs := []BoxedUTXOInput{{TxID: txid, Vout: 0, Prevout: prevout, PrivateKey: sk, PublicKey: pk}}
	targets := []Target{
		{ScriptPubKeyASM: "OP_DUP OP_HASH160 fd158402792612f4d87a9f5f37e14a584e364a65 OP_EQUALVERIFY OP_CHECKSIG", Value: 1000},
		{ScriptPubKeyASM: "OP_DUP OP_HASH160 6bd18c889da9d66610354ccdc4676f055bae2980 OP_EQUALVERIFY OP_CHECKSIG", Value: 8800},
	}

	tx, err := Build(inputs, targets)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := tx.SignInput(0, sk, pk); err != nil {
		t.Fatalf("SignInput: %v", err)
	}

	want := "01000000015a3e58d4e5ce5f7dab2a64ad6d9e644fd7c445635674e449e5dd83c6811acb" +
		"d8000000006b48304502210082d5afc04466b7566bcc44a4670980393edbfa88d0daf02c" +
		"163372fdcb5a1dc902203aa732322fd0cfca0d7fef4889779471d832dc0fa73ff5518a30" +
		"f92054b02d51012103597f57b176a4fd0bbf9b163ad341ed002101572b595485c537c367" +
		"3281a83ebcffffffff02e8030000000000001976a914fd158402792612f4d87a9f5f37e1" +
		"4a584e364a6588ac60220000000000001976a9146bd18c889da9d66610354ccdc4676f05" +
		"5bae298088ac00000000"
	if got := tx.SerializeHex(); got != want {
		t.Errorf("SerializeHex =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildRejectsNonP2PKHPrevout(t *testing.T) {
	inputs := []BoxedUTXOInput{{Prevout: TxOut{Type: "p2sh"}}}
	if _, err := Build(inputs, nil); err != ErrUnsupportedScript {
		t.Errorf("Build error = %v, want ErrUnsupportedScript", err)
	}
}
