// Package vss implements Feldman verifiable secret sharing over secp256k1:
// share(t, n, secret) picks random coefficients a_1..a_t, defines
// f(X) = secret + sum(a_j * X^j), and returns both the commitments
// {a_j*G} and the shares {(i, f(i))} for i in 1..=n. Reconstruction uses
// Lagrange coefficients; share validity is checked against the commitments
// without ever learning the polynomial itself.
package vss

import (
	"errors"
	"io"

	"github.com/axelarnetwork/tofn-sub000/curve"
)

var ErrInvalidShare = errors.New("vss: share does not match commitments")

// Share is a Feldman VSS share: a (nonzero index, value) pair.
type Share struct {
	Index *curve.Scalar
	Value *curve.Scalar
}

// Commitments is the degree-t polynomial's coefficients lifted to points:
// Commitments[j] = a_j * G.
type Commitments struct {
	Coeffs []*curve.Point
}

// Threshold returns t, the polynomial's degree.
func (c *Commitments) Threshold() int { return len(c.Coeffs) - 1 }

// Constant returns the commitment to the polynomial's constant term, i.e.
// the public key share y_i = u_i * G in keygen's terminology.
func (c *Commitments) Constant() *curve.Point { return c.Coeffs[0] }

// polynomial is the prover's private f(X) = secret + a_1*X + ... + a_t*X^t.
type polynomial struct {
	coeffs []*curve.Scalar
}

// Share constructs a degree-t polynomial with constant term secret and
// random higher coefficients drawn from rnd, returning its point
// commitments and the n evaluations f(1)..f(n).
func Share(rnd io.Reader, t, n int, secret *curve.Scalar) (*Commitments, []Share, error) {
	coeffs := make([]*curve.Scalar, t+1)
	coeffs[0] = secret
	for j := 1; j <= t; j++ {
		a, err := curve.SampleScalar(rnd)
		if err != nil {
			return nil, nil, err
		}
		coeffs[j] = a
	}
	poly := &polynomial{coeffs: coeffs}

	points := make([]*curve.Point, t+1)
	for j, c := range coeffs {
		points[j] = curve.ScalarBaseMult(c)
	}

	shares := make([]Share, n)
	for i := 1; i <= n; i++ {
		idx := curve.ScalarFromInt(uint32(i))
		shares[i-1] = Share{Index: idx, Value: poly.eval(idx)}
	}
	return &Commitments{Coeffs: points}, shares, nil
}

func (p *polynomial) eval(x *curve.Scalar) *curve.Scalar {
	// Horner's method: iterate coefficients from highest degree down.
	acc := curve.NewScalar()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(p.coeffs[i])
	}
	return acc
}

// Verify checks share.Value*G == sum_j commitments[j] * index^j.
func Verify(commitments *Commitments, share Share) error {
	expected := evalCommitments(commitments, share.Index)
	actual := curve.ScalarBaseMult(share.Value)
	if !actual.Equal(expected) {
		return ErrInvalidShare
	}
	return nil
}

// ShareCommitment computes the expected public share X_j = sum_k
// commitments[k] * index^k for a given index, without needing the actual
// share value - keygen round 3 sums it over every party's published VSS
// commitments to compute each share's public share X_k.
func ShareCommitment(commitments *Commitments, index *curve.Scalar) *curve.Point {
	return evalCommitments(commitments, index)
}

func evalCommitments(commitments *Commitments, index *curve.Scalar) *curve.Point {
	result := curve.NewIdentityPoint()
	power := curve.ScalarFromInt(1)
	for _, c := range commitments.Coeffs {
		result = result.Add(curve.ScalarMult(power, c))
		power = power.Mul(index)
	}
	return result
}

// LagrangeCoefficient computes the Lagrange basis coefficient for index i
// within participant set indices: prod_{j in S, j != i} j / (j - i).
func LagrangeCoefficient(i *curve.Scalar, indices []*curve.Scalar) *curve.Scalar {
	num := curve.ScalarFromInt(1)
	den := curve.ScalarFromInt(1)
	for _, j := range indices {
		if j.BigInt().Cmp(i.BigInt()) == 0 {
			continue
		}
		num = num.Mul(j)
		den = den.Mul(j.Add(i.Negate()))
	}
	return num.Mul(den.Inverse())
}

// Reconstruct recovers the secret from t+1 (or more) shares via Lagrange
// interpolation at X=0.
func Reconstruct(shares []Share) *curve.Scalar {
	indices := make([]*curve.Scalar, len(shares))
	for i, s := range shares {
		indices[i] = s.Index
	}
	acc := curve.NewScalar()
	for i, s := range shares {
		lambda := LagrangeCoefficient(indices[i], indices)
		acc = acc.Add(lambda.Mul(s.Value))
	}
	return acc
}
