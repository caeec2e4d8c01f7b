// Package mtawc implements the "with check" MtA variant: everything mta
// proves, plus a public curve-point commitment x_g = x*G to Bob's
// multiplicand, used by sign round 2's MtA on w_i (so the resulting x_g can
// later be checked against W_i = lambda_i*X_i).
package mtawc

import (
	"errors"
	"io"
	"math/big"

	"github.com/cronokirby/safenum"

	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/internal/challenge"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/zksetup"
)

var ErrVerifyFailed = errors.New("mtawc: verification failed")

const securityParamBits = 256

// Statement is mta.Statement plus the public point XG = x*G.
type Statement struct {
	C1       *paillier.Ciphertext
	C2       *paillier.Ciphertext
	EK       *paillier.EncryptionKey
	Verifier *zksetup.ZkSetup
	XG       *curve.Point
}

// Witness is mta.Witness plus the scalar form of x for the curve check.
type Witness struct {
	X       *big.Int
	XScalar *curve.Scalar
	Beta    *safenum.Nat
}

// Proof extends mta.Proof with the curve-side commitment and response.
type Proof struct {
	S  *safenum.Nat
	A  *safenum.Nat
	T  *safenum.Nat
	U  *curve.Point // alpha*G, the curve-side commitment
	S1 *big.Int
	S2 *safenum.Nat
	T2 *big.Int
}

func cubedBound() *big.Int {
	q := curve.Order()
	b := new(big.Int).Mul(q, q)
	b.Mul(b, q)
	return b
}

// Prove builds an MtA-wc proof.
func Prove(rnd io.Reader, stmt Statement, witness Witness) (*Proof, error) {
	q3 := cubedBound()
	alphaBound := new(big.Int).Lsh(q3, securityParamBits)
	alpha, err := randSignedInt(rnd, alphaBound)
	if err != nil {
		return nil, err
	}
	nHatBound := new(big.Int).Mul(stmt.Verifier.Nhat.Big(), q3)
	nHatBound.Lsh(nHatBound, securityParamBits)
	mu, err := randSignedInt(rnd, nHatBound)
	if err != nil {
		return nil, err
	}
	gamma, err := randSignedInt(rnd, nHatBound)
	if err != nil {
		return nil, err
	}
	r := stmt.EK.SampleRandomness(rnd)

	S := stmt.Verifier.Commit(witness.X, mu)
	T := stmt.Verifier.Commit(alpha, gamma)

	scaled := stmt.EK.HomomorphicMulPlainSigned(stmt.C1, alpha)
	zero := new(safenum.Nat).SetUint64(0)
	blind := stmt.EK.EncryptWithRandomness(zero, r)
	A := stmt.EK.HomomorphicAdd(scaled, blind)

	alphaScalar, err := curve.ScalarFromBytes(padTo32(new(big.Int).Mod(alpha, curve.Order())))
	if err != nil {
		return nil, err
	}
	U := curve.ScalarBaseMult(alphaScalar)

	e := deriveChallenge(stmt, S, A.Nat(), T, U)

	s1 := new(big.Int).Mul(e, witness.X)
	s1.Add(s1, alpha)

	t2 := new(big.Int).Mul(e, mu)
	t2.Add(t2, gamma)

	eNat := new(safenum.Nat).SetBytes(e.Bytes())
	betaToE := stmt.EK.Modulus().Exp(witness.Beta, eNat)
	s2 := new(safenum.Nat).ModMul(betaToE, r, stmt.EK.Modulus())

	return &Proof{S: S, A: A.Nat(), T: T, U: U, S1: s1, S2: s2, T2: t2}, nil
}

// Verify checks an MtA-wc proof against stmt.
func Verify(stmt Statement, proof *Proof) error {
	q3 := cubedBound()
	bound := new(big.Int).Lsh(q3, securityParamBits+1)
	if new(big.Int).Abs(proof.S1).Cmp(bound) > 0 {
		return ErrVerifyFailed
	}

	e := deriveChallenge(stmt, proof.S, proof.A, proof.T, proof.U)

	scaled := stmt.EK.HomomorphicMulPlainSigned(stmt.C1, proof.S1)
	blind := stmt.EK.EncryptWithRandomness(new(safenum.Nat).SetUint64(0), proof.S2)
	lhs := stmt.EK.HomomorphicAdd(scaled, blind)

	eNat := new(safenum.Nat).SetBytes(e.Bytes())
	cToE := stmt.EK.HomomorphicMulPlainNat(stmt.C2, eNat)
	rhs := stmt.EK.HomomorphicAdd(cToE, paillier.CiphertextFromNat(proof.A))
	if lhs.Nat().Big().Cmp(rhs.Nat().Big()) != 0 {
		return ErrVerifyFailed
	}

	nHat := safenum.ModulusFromNat(stmt.Verifier.Nhat)
	lhs2 := stmt.Verifier.Commit(proof.S1, proof.T2)
	sToE := zksetup.ExpSigned(nHat, proof.S, e)
	rhs2 := new(safenum.Nat).ModMul(sToE, proof.T, nHat)
	if lhs2.Big().Cmp(rhs2.Big()) != 0 {
		return ErrVerifyFailed
	}

	s1Scalar, err := curve.ScalarFromBytes(padTo32(new(big.Int).Mod(proof.S1, curve.Order())))
	if err != nil {
		return ErrVerifyFailed
	}
	eScalar, err := curve.ScalarFromBytes(padTo32(e))
	if err != nil {
		return ErrVerifyFailed
	}
	lhs3 := curve.ScalarBaseMult(s1Scalar)
	rhs3 := proof.U.Add(curve.ScalarMult(eScalar, stmt.XG))
	if !lhs3.Equal(rhs3) {
		return ErrVerifyFailed
	}
	return nil
}

func deriveChallenge(stmt Statement, s, a, t *safenum.Nat, u *curve.Point) *big.Int {
	c := challenge.New(challenge.DomainMtaWc)
	c.WriteAll(
		stmt.C1.Nat().Bytes(), stmt.C2.Nat().Bytes(), stmt.EK.N().Bytes(),
		stmt.Verifier.Nhat.Bytes(), stmt.XG.Bytes(),
		s.Bytes(), a.Bytes(), t.Bytes(), u.Bytes(),
	)
	modulus := new(big.Int).Lsh(big.NewInt(1), 256)
	return c.Int(modulus)
}

func randSignedInt(rnd io.Reader, bound *big.Int) (*big.Int, error) {
	buf := make([]byte, (bound.BitLen()+8)/8+1)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(buf)
	v.Mod(v, new(big.Int).Lsh(bound, 1))
	v.Sub(v, bound)
	return v, nil
}

func padTo32(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
