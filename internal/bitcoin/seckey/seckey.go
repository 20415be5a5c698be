// Package seckey wraps the secp256k1 scalar and point arithmetic the
// wallet needs — scalar validity, point derivation, point addition, and
// ECDSA signing — over the vetted decred secp256k1 implementation rather
// than rolling field arithmetic by hand.
package seckey

import (
	"crypto/rand"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// ErrInvalidScalar is returned for a 32-byte value that is zero or not
// less than the curve order n.
var ErrInvalidScalar = errors.New("seckey: scalar not in [1, n)")

// ErrPointAtInfinity is returned by PointAdd when the sum of two points is
// the identity element.
var ErrPointAtInfinity = errors.New("seckey: point addition yielded the point at infinity")

// ScalarValid reports whether the 32 bytes in s form a value in [1, n).
func ScalarValid(s [32]byte) bool {
	var scalar secp256k1.ModNScalar
	overflow := scalar.SetBytes(&s)
	return overflow == 0 && !scalar.IsZero()
}

// PointMulG returns the compressed SEC1 encoding of s*G.
func PointMulG(s [32]byte) ([33]byte, error) {
	if !ScalarValid(s) {
		return [33]byte{}, ErrInvalidScalar
	}
	var scalar secp256k1.ModNScalar
	scalar.SetBytes(&s)
	var point secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&scalar, &point)
	point.ToAffine()
	pub := secp256k1.NewPublicKey(&point.X, &point.Y)
	var out [33]byte
	copy(out[:], pub.SerializeCompressed())
	return out, nil
}

// PointAdd adds two compressed points, failing if the result is the point
// at infinity (only possible when P == -Q).
func PointAdd(p, q [33]byte) ([33]byte, error) {
	pp, err := secp256k1.ParsePubKey(p[:])
	if err != nil {
		return [33]byte{}, err
	}
	qq, err := secp256k1.ParsePubKey(q[:])
	if err != nil {
		return [33]byte{}, err
	}
	var jp, jq, sum secp256k1.JacobianPoint
	pp.AsJacobian(&jp)
	qq.AsJacobian(&jq)
	secp256k1.AddNonConst(&jp, &jq, &sum)
	sum.ToAffine()
	if sum.X.IsZero() && sum.Y.IsZero() {
		return [33]byte{}, ErrPointAtInfinity
	}
	out := secp256k1.NewPublicKey(&sum.X, &sum.Y)
	var res [33]byte
	copy(res[:], out.SerializeCompressed())
	return res, nil
}

// ScalarAdd returns (a + b) mod n.
func ScalarAdd(a, b [32]byte) (sum [32]byte, zero bool) {
	var sa, sb secp256k1.ModNScalar
	sa.SetBytes(&a)
	sb.SetBytes(&b)
	sa.Add(&sb)
	if sa.IsZero() {
		return [32]byte{}, true
	}
	res := sa.Bytes()
	return *res, false
}

// ECDSASignDER signs the 32-byte digest with the private scalar sk and
// returns a low-S canonical DER signature, as produced by the library.
func ECDSASignDER(digest [32]byte, sk [32]byte) ([]byte, error) {
	priv := secp256k1.PrivKeyFromBytes(sk[:])
	sig := ecdsa.Sign(priv, digest[:])
	return sig.Serialize(), nil
}

// RandomScalar draws a uniformly random valid scalar from the OS CSPRNG,
// retrying on the vanishingly unlikely case of an invalid draw.
func RandomScalar() ([32]byte, error) {
	for {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return [32]byte{}, err
		}
		if ScalarValid(buf) {
			return buf, nil
		}
	}
}
