// Package curve wraps github.com/decred/dcrd/dcrec/secp256k1/v4 behind the
// narrow scalar/point vocabulary the rest of this module needs: group
// operations and a compressed-point wire codec. The point and inversion
// operations use the library's variable-time (NonConst) routines; they are
// not constant-time. It deliberately does
// not expose the underlying library's types so the rest of the tree only
// ever sees Scalar and Point.
package curve

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrInvalidPoint is returned when a compressed point fails to decode or
// does not lie on the curve.
var ErrInvalidPoint = errors.New("curve: invalid point encoding")

// ErrInvalidScalar is returned when a scalar fails to decode.
var ErrInvalidScalar = errors.New("curve: invalid scalar encoding")

// Order returns the order q of the secp256k1 scalar field, as used by VSS
// Lagrange arithmetic and the ZK proof range bounds (q^3, q^3*Ñ).
func Order() *big.Int {
	return new(big.Int).Set(secp256k1.S256().N)
}

// Scalar is an element of Z_q.
type Scalar struct {
	inner secp256k1.ModNScalar
}

// NewScalar returns the zero scalar.
func NewScalar() *Scalar { return &Scalar{} }

// ScalarFromInt reduces a uint32 into the scalar field; used for VSS share
// indices (1..=n) and Lagrange coefficient arithmetic.
func ScalarFromInt(i uint32) *Scalar {
	s := &Scalar{}
	s.inner.SetInt(i)
	return s
}

// ScalarFromBytes decodes a big-endian 32-byte scalar, reducing mod q.
func ScalarFromBytes(b []byte) (*Scalar, error) {
	if len(b) != 32 {
		return nil, ErrInvalidScalar
	}
	var arr [32]byte
	copy(arr[:], b)
	s := &Scalar{}
	s.inner.SetBytes(&arr)
	return s, nil
}

// SampleScalar draws a uniformly random nonzero scalar from the field,
// rejection-sampling until nonzero. The caller supplies the randomness
// source (the deterministic session RNG in production, crypto/rand in
// tests).
func SampleScalar(rnd io.Reader) (*Scalar, error) {
	for {
		var buf [32]byte
		if _, err := io.ReadFull(rnd, buf[:]); err != nil {
			return nil, err
		}
		s := &Scalar{}
		overflow := s.inner.SetBytes(&buf)
		if overflow == 0 && !s.inner.IsZero() {
			return s, nil
		}
	}
}

// Bytes encodes the scalar big-endian, 32 bytes.
func (s *Scalar) Bytes() []byte {
	b := s.inner.Bytes()
	out := make([]byte, 32)
	copy(out, b[:])
	return out
}

// IsZero reports whether the scalar is the additive identity.
func (s *Scalar) IsZero() bool { return s.inner.IsZero() }

// Add returns s + other.
func (s *Scalar) Add(other *Scalar) *Scalar {
	out := &Scalar{}
	out.inner.Set(&s.inner)
	out.inner.Add(&other.inner)
	return out
}

// Mul returns s * other.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	out := &Scalar{}
	out.inner.Set(&s.inner)
	out.inner.Mul(&other.inner)
	return out
}

// Negate returns -s.
func (s *Scalar) Negate() *Scalar {
	out := &Scalar{}
	out.inner.Set(&s.inner)
	out.inner.Negate()
	return out
}

// Inverse returns s^-1 mod q. Panics (via the underlying library) only if s
// is zero, which callers must never pass.
func (s *Scalar) Inverse() *Scalar {
	out := &Scalar{}
	out.inner.Set(&s.inner)
	out.inner.InverseValNonConst()
	return out
}

// BigInt exposes the scalar as a big.Int for Lagrange-coefficient rational
// arithmetic that needs explicit numerator/denominator handling.
func (s *Scalar) BigInt() *big.Int {
	return new(big.Int).SetBytes(s.Bytes())
}

// Point is a secp256k1 group element.
type Point struct {
	inner secp256k1.JacobianPoint
}

// NewIdentityPoint returns the point at infinity.
func NewIdentityPoint() *Point {
	p := &Point{}
	p.inner.Z.SetInt(0)
	return p
}

// Generator returns the curve's base point G.
func Generator() *Point {
	p := &Point{}
	secp256k1.BigAffineToJacobian(secp256k1.S256().Gx, secp256k1.S256().Gy, &p.inner)
	return p
}

// ScalarBaseMult returns s*G.
func ScalarBaseMult(s *Scalar) *Point {
	var result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&s.inner, &result)
	return &Point{inner: result}
}

// ScalarMult returns s*p.
func ScalarMult(s *Scalar, p *Point) *Point {
	var result secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&s.inner, &p.inner, &result)
	return &Point{inner: result}
}

// Add returns p + other.
func (p *Point) Add(other *Point) *Point {
	var result secp256k1.JacobianPoint
	a := p.inner
	b := other.inner
	a.ToAffine()
	b.ToAffine()
	secp256k1.AddNonConst(&a, &b, &result)
	return &Point{inner: result}
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	a := p.inner
	a.ToAffine()
	return (a.X.IsZero() && a.Y.IsZero())
}

// Equal reports whether p == other.
func (p *Point) Equal(other *Point) bool {
	a, b := p.inner, other.inner
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// Bytes encodes p compressed, 33 bytes.
func (p *Point) Bytes() []byte {
	a := p.inner
	a.ToAffine()
	pk := secp256k1.NewPublicKey(&a.X, &a.Y)
	return pk.SerializeCompressed()
}

// PointFromBytes decodes a compressed point, checking curve membership.
func PointFromBytes(b []byte) (*Point, error) {
	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, ErrInvalidPoint
	}
	p := &Point{}
	secp256k1.BigAffineToJacobian(&pk.X, &pk.Y, &p.inner)
	return p, nil
}

// XCoordMod returns the x-coordinate of p reduced into the scalar field,
// i.e. R.x mod q from the GG20 signature equation r = R.x mod q.
func (p *Point) XCoordMod() *Scalar {
	a := p.inner
	a.ToAffine()
	xBytes := a.X.Bytes()
	s := &Scalar{}
	s.inner.SetByteSlice(xBytes[:])
	return s
}

// RandReader is the default non-deterministic randomness source, used only
// by tests and by callers who haven't wired the deterministic session RNG.
var RandReader = rand.Reader
