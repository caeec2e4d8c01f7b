// Package mta implements the MtA (multiplicative-to-additive) proof: Bob,
// holding Alice's ciphertext c1 = Enc(a) and his own multiplicand b, builds
// c2 = b*c1 + Enc(beta') under Alice's Paillier key and proves the relation
// without revealing b or beta'. The "wc" (with check) variant additionally
// binds b to a public point x_g = b*G, used for the w_i MtA in sign round 2.
package mta

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

var ErrVerifyFailed = errors.New("mta: verification failed")

const securityParamBits = 256

// Statement is the public data for an MtA proof: Alice's ciphertext c1,
// Bob's response ciphertext c2, and Alice's encryption key (the proof is
// checked against Alice's Paillier modulus since c1, c2 live there).
type Statement struct {
	C1       *paillier.Ciphertext
	C2       *paillier.Ciphertext
	EK       *paillier.EncryptionKey
	Verifier *zksetup.ZkSetup
}

// Witness is Bob's secret: the multiplicand x (k_j or w_i, depending on
// which MtA this is) and the randomness beta used to build c2.
type Witness struct {
	X    *big.Int
	Beta *safenum.Nat
}

// Proof is the non-interactive MtA transcript.
type Proof struct {
	S  *safenum.Nat
	A  *safenum.Nat
	T  *safenum.Nat
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

// Prove builds an MtA proof for stmt: c2 = x*c1 + Enc(beta, r) under EK.
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

	// A = c1^alpha * Enc(0, r) = alpha-scaled c1, re-randomized by r.
	scaled := stmt.EK.HomomorphicMulPlainSigned(stmt.C1, alpha)
	zero := new(safenum.Nat).SetUint64(0)
	blind := stmt.EK.EncryptWithRandomness(zero, r)
	A := stmt.EK.HomomorphicAdd(scaled, blind)

	e := deriveChallenge(stmt, S, A.Nat(), T)

	s1 := new(big.Int).Mul(e, witness.X)
	s1.Add(s1, alpha)

	t2 := new(big.Int).Mul(e, mu)
	t2.Add(t2, gamma)

	eNat := new(safenum.Nat).SetBytes(e.Bytes())
	betaToE := stmt.EK.Modulus().Exp(witness.Beta, eNat)
	s2 := new(safenum.Nat).ModMul(betaToE, r, stmt.EK.Modulus())

	return &Proof{S: S, A: A.Nat(), T: T, S1: s1, S2: s2, T2: t2}, nil
}

// Verify checks an MtA proof against stmt.
func Verify(stmt Statement, proof *Proof) error {
	q3 := cubedBound()
	bound := new(big.Int).Lsh(q3, securityParamBits+1)
	if new(big.Int).Abs(proof.S1).Cmp(bound) > 0 {
		return ErrVerifyFailed
	}

	e := deriveChallenge(stmt, proof.S, proof.A, proof.T)

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
	return nil
}

func deriveChallenge(stmt Statement, s, a, t *safenum.Nat) *big.Int {
	c := challenge.New(challenge.DomainMta)
	c.WriteAll(
		stmt.C1.Nat().Bytes(), stmt.C2.Nat().Bytes(), stmt.EK.N().Bytes(),
		stmt.Verifier.Nhat.Bytes(), s.Bytes(), a.Bytes(), t.Bytes(),
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
