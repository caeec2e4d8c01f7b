// Package pedersen implements a Pedersen commitment proof of knowledge: a
// prover who committed C = m*G + r*H proves knowledge of (m, r) without
// revealing either. Sign round 3 publishes T_i = sigma_i*G + l_i*H without a
// proof; sign uses only the "wc" (with check) variant, which additionally
// proves a second point S = m*R for an arbitrary base R: round 6 proves
// T_i's opening and binds it to S_i, round 7 verifies it.
package pedersen

import (
	"errors"
	"io"

	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/internal/challenge"
)

var ErrVerifyFailed = errors.New("pedersen: verification failed")

// Proof is knowledge of (m, r) with C = m*G + r*H.
type Proof struct {
	A *curve.Point // alpha*G + beta*H
	Z1, Z2 *curve.Scalar
}

// Prove proves knowledge of (m, r) for commitment C = m*G + r*H under base H.
func Prove(rnd io.Reader, H *curve.Point, m, r *curve.Scalar, C *curve.Point) (*Proof, error) {
	alpha, err := curve.SampleScalar(rnd)
	if err != nil {
		return nil, err
	}
	beta, err := curve.SampleScalar(rnd)
	if err != nil {
		return nil, err
	}
	A := curve.ScalarBaseMult(alpha).Add(curve.ScalarMult(beta, H))
	e := deriveChallenge(challenge.DomainPedersen, H, C, A)
	z1 := alpha.Add(e.Mul(m))
	z2 := beta.Add(e.Mul(r))
	return &Proof{A: A, Z1: z1, Z2: z2}, nil
}

// Verify checks a Pedersen knowledge proof against commitment C.
func Verify(H *curve.Point, C *curve.Point, proof *Proof) error {
	e := deriveChallenge(challenge.DomainPedersen, H, C, proof.A)
	lhs := curve.ScalarBaseMult(proof.Z1).Add(curve.ScalarMult(proof.Z2, H))
	rhs := proof.A.Add(curve.ScalarMult(e, C))
	if !lhs.Equal(rhs) {
		return ErrVerifyFailed
	}
	return nil
}

// ProofWc additionally binds the committed value m to a second point
// S = m*R under an arbitrary base R (sign round 6: T_i opens to sigma_i and
// S_i = R*sigma_i).
type ProofWc struct {
	A  *curve.Point // alpha*G + beta*H
	B  *curve.Point // alpha*R
	Z1, Z2 *curve.Scalar
}

// ProveWc proves knowledge of (m, r) for C = m*G + r*H AND that S = m*R.
func ProveWc(rnd io.Reader, H, R *curve.Point, m, r *curve.Scalar, C, S *curve.Point) (*ProofWc, error) {
	alpha, err := curve.SampleScalar(rnd)
	if err != nil {
		return nil, err
	}
	beta, err := curve.SampleScalar(rnd)
	if err != nil {
		return nil, err
	}
	A := curve.ScalarBaseMult(alpha).Add(curve.ScalarMult(beta, H))
	B := curve.ScalarMult(alpha, R)
	e := deriveChallenge(challenge.DomainPedersen, H, C, A, R, S, B)
	z1 := alpha.Add(e.Mul(m))
	z2 := beta.Add(e.Mul(r))
	return &ProofWc{A: A, B: B, Z1: z1, Z2: z2}, nil
}

// VerifyWc checks a ProofWc against commitment C and consistency point S.
func VerifyWc(H, R *curve.Point, C, S *curve.Point, proof *ProofWc) error {
	e := deriveChallenge(challenge.DomainPedersen, H, C, proof.A, R, S, proof.B)

	lhs1 := curve.ScalarBaseMult(proof.Z1).Add(curve.ScalarMult(proof.Z2, H))
	rhs1 := proof.A.Add(curve.ScalarMult(e, C))
	if !lhs1.Equal(rhs1) {
		return ErrVerifyFailed
	}

	lhs2 := curve.ScalarMult(proof.Z1, R)
	rhs2 := proof.B.Add(curve.ScalarMult(e, S))
	if !lhs2.Equal(rhs2) {
		return ErrVerifyFailed
	}
	return nil
}

func deriveChallenge(domain string, points ...*curve.Point) *curve.Scalar {
	c := challenge.New(domain)
	for _, p := range points {
		c.Write(p.Bytes())
	}
	s, _ := curve.ScalarFromBytes(c.Bytes())
	return s
}
