// Package schnorr implements the standard Schnorr proof of knowledge of a
// discrete log over secp256k1: used by keygen R3/R4 to prove knowledge of
// x_i such that X_i = x_i*G.
package schnorr

import (
	"errors"
	"io"

	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/internal/challenge"
)

// ErrVerifyFailed is returned when the Schnorr equation doesn't hold.
var ErrVerifyFailed = errors.New("schnorr: verification failed")

// Randomness is the prover's commitment randomness a. Keygen round 3 samples
// it and calls Prove in the same round, so it never outlives a round.
type Randomness struct {
	a *curve.Scalar
}

// Commitment is the first message A = a*G.
type Commitment struct {
	A *curve.Point
}

// Proof is the non-interactive (commitment, response) pair.
type Proof struct {
	A *curve.Point
	Z *curve.Scalar
}

// NewRandomness samples fresh commitment randomness.
func NewRandomness(rnd io.Reader) (*Randomness, error) {
	a, err := curve.SampleScalar(rnd)
	if err != nil {
		return nil, err
	}
	return &Randomness{a: a}, nil
}

// Commitment returns A = a*G.
func (r *Randomness) Commitment() *Commitment {
	return &Commitment{A: curve.ScalarBaseMult(r.a)}
}

// Prove completes the proof of knowledge of x given X = x*G, using
// commitment randomness from NewRandomness.
func Prove(r *Randomness, x *curve.Scalar, X *curve.Point) *Proof {
	A := curve.ScalarBaseMult(r.a)
	e := deriveChallenge(X, A)
	z := r.a.Add(e.Mul(x))
	return &Proof{A: A, Z: z}
}

// Verify checks a Schnorr proof against the claimed public point X.
func Verify(X *curve.Point, proof *Proof) error {
	e := deriveChallenge(X, proof.A)
	lhs := curve.ScalarBaseMult(proof.Z)
	rhs := proof.A.Add(curve.ScalarMult(e, X))
	if !lhs.Equal(rhs) {
		return ErrVerifyFailed
	}
	return nil
}

func deriveChallenge(X, A *curve.Point) *curve.Scalar {
	c := challenge.New(challenge.DomainSchnorr)
	c.WriteAll(X.Bytes(), A.Bytes())
	s, err := curve.ScalarFromBytes(c.Bytes())
	if err != nil {
		// challenge.Bytes() is always 32 bytes, so decoding cannot fail;
		// the error path exists only because ScalarFromBytes is general.
		return curve.NewScalar()
	}
	return s
}
