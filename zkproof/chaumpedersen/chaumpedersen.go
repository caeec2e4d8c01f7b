// Package chaumpedersen implements the Chaum-Pedersen equality-of-discrete-
// logs proof: given two bases G1, G2 and points X1 = x*G1, X2 = x*G2, prove
// knowledge of the common x without revealing it. Sign's Type-7 evidence
// branch uses this to show a party's opened sigma_i is consistent between
// its Pedersen commitment base and R.
package chaumpedersen

import (
	"errors"
	"io"

	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/internal/challenge"
)

var ErrVerifyFailed = errors.New("chaumpedersen: verification failed")

// Proof is the non-interactive (A1, A2, z) transcript.
type Proof struct {
	A1, A2 *curve.Point
	Z      *curve.Scalar
}

// Prove proves knowledge of x with X1 = x*G1, X2 = x*G2.
func Prove(rnd io.Reader, G1, G2, X1, X2 *curve.Point, x *curve.Scalar) (*Proof, error) {
	k, err := curve.SampleScalar(rnd)
	if err != nil {
		return nil, err
	}
	A1 := curve.ScalarMult(k, G1)
	A2 := curve.ScalarMult(k, G2)
	e := deriveChallenge(G1, G2, X1, X2, A1, A2)
	z := k.Add(e.Mul(x))
	return &Proof{A1: A1, A2: A2, Z: z}, nil
}

// Verify checks a Chaum-Pedersen proof.
func Verify(G1, G2, X1, X2 *curve.Point, proof *Proof) error {
	e := deriveChallenge(G1, G2, X1, X2, proof.A1, proof.A2)

	lhs1 := curve.ScalarMult(proof.Z, G1)
	rhs1 := proof.A1.Add(curve.ScalarMult(e, X1))
	if !lhs1.Equal(rhs1) {
		return ErrVerifyFailed
	}

	lhs2 := curve.ScalarMult(proof.Z, G2)
	rhs2 := proof.A2.Add(curve.ScalarMult(e, X2))
	if !lhs2.Equal(rhs2) {
		return ErrVerifyFailed
	}
	return nil
}

func deriveChallenge(points ...*curve.Point) *curve.Scalar {
	c := challenge.New(challenge.DomainChaumPedersen)
	for _, p := range points {
		c.Write(p.Bytes())
	}
	s, _ := curve.ScalarFromBytes(c.Bytes())
	return s
}
