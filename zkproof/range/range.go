// Package rangeproof implements the GG20 range proof: a prover holding a
// Paillier ciphertext C = Enc(m, rho) proves -q^3 < m < q^3 without
// revealing m or rho, using the verifier's (Nhat, h1, h2) ZK-setup
// parameters as an integer-commitment scheme alongside the proof. Sign
// round 1's range proof on K_i is the plain variant. The "wc" (with check)
// variant additionally binds m to a public curve point MsgG = m*Base, used
// by sign round 5 with Base = R.
package rangeproof

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

var ErrVerifyFailed = errors.New("range: verification failed")

// securityParamBits pads the masking ranges so the response distributions
// are statistically close to what an honest prover would produce regardless
// of the secret value.
const securityParamBits = 256

// Statement is the public data: the ciphertext and the prover's encryption
// key, checked against the verifier's ZK setup.
type Statement struct {
	Ciphertext *paillier.Ciphertext
	EK         *paillier.EncryptionKey
	Verifier   *zksetup.ZkSetup
}

// Witness is the prover's secret opening of the ciphertext.
type Witness struct {
	M   *big.Int
	Rho *safenum.Nat
}

// Proof is the non-interactive range-proof transcript.
type Proof struct {
	S  *safenum.Nat // h1^m * h2^mu
	A  *safenum.Nat // Enc(alpha, r)
	T  *safenum.Nat // h1^alpha * h2^gamma
	S1 *big.Int     // e*m + alpha
	S2 *safenum.Nat // rho^e * r mod N
	T2 *big.Int     // e*mu + gamma
}

// cubedBound returns q^3 as a big.Int, the range bound every honest m must
// fall within.
func cubedBound() *big.Int {
	q := curve.Order()
	b := new(big.Int).Mul(q, q)
	b.Mul(b, q)
	return b
}

// Prove builds a range proof for stmt using witness.
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

	S := stmt.Verifier.Commit(witness.M, mu)
	alphaNat := signedToNat(alpha)
	A := stmt.EK.EncryptWithRandomness(alphaNat, r)
	T := stmt.Verifier.Commit(alpha, gamma)

	e := deriveChallenge(stmt, S, A.Nat(), T)

	s1 := new(big.Int).Mul(e, witness.M)
	s1.Add(s1, alpha)

	t2 := new(big.Int).Mul(e, mu)
	t2.Add(t2, gamma)

	// s2 = rho^e * r mod N
	eNat := new(safenum.Nat).SetBytes(e.Bytes())
	rhoToE := stmt.EK.Modulus().Exp(witness.Rho, eNat)
	s2 := new(safenum.Nat).ModMul(rhoToE, r, stmt.EK.Modulus())

	return &Proof{S: S, A: A.Nat(), T: T, S1: s1, S2: s2, T2: t2}, nil
}

// Verify checks a range proof against stmt.
func Verify(stmt Statement, proof *Proof) error {
	q3 := cubedBound()
	bound := new(big.Int).Lsh(q3, securityParamBits+1)
	if new(big.Int).Abs(proof.S1).Cmp(bound) > 0 {
		return ErrVerifyFailed
	}

	e := deriveChallenge(stmt, proof.S, proof.A, proof.T)

	// Enc(s1, s2) ?= C^e * A  (mod N^2)
	s1Nat := signedToNat(proof.S1)
	lhs := stmt.EK.EncryptWithRandomness(s1Nat, proof.S2)

	eAbs := new(safenum.Nat).SetBytes(e.Bytes())
	cToE := stmt.EK.NSquared().Exp(stmt.Ciphertext.Nat(), eAbs)
	rhs := new(safenum.Nat).ModMul(cToE, proof.A, stmt.EK.NSquared())

	if lhs.Nat().Big().Cmp(rhs.Big()) != 0 {
		return ErrVerifyFailed
	}

	// h1^s1 * h2^t2 ?= S^e * T  (mod Nhat)
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
	c := challenge.New(challenge.DomainRange)
	c.WriteAll(
		stmt.Ciphertext.Nat().Bytes(),
		stmt.EK.N().Bytes(),
		stmt.Verifier.Nhat.Bytes(),
		s.Bytes(), a.Bytes(), t.Bytes(),
	)
	modulus := new(big.Int).Lsh(big.NewInt(1), 256)
	return c.Int(modulus)
}

// StatementWc is Statement plus a public curve point MsgG claimed to equal
// the ciphertext's plaintext scaled by Base, i.e. MsgG = m*Base. Sign round 5
// uses this with Base = R to prove R_i = R*k_i is consistent with the K_i
// ciphertext broadcast back in round 1.
type StatementWc struct {
	Statement
	MsgG *curve.Point
	Base *curve.Point
}

// ProofWc extends Proof with the curve-side commitment and response that
// bind the opening to MsgG.
type ProofWc struct {
	S  *safenum.Nat
	A  *safenum.Nat
	T  *safenum.Nat
	U  *curve.Point // alpha*Base
	S1 *big.Int
	S2 *safenum.Nat
	T2 *big.Int
}

// ProveWc builds a range proof binding the opening to stmt.MsgG = m*stmt.Base.
func ProveWc(rnd io.Reader, stmt StatementWc, witness Witness) (*ProofWc, error) {
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

	S := stmt.Verifier.Commit(witness.M, mu)
	alphaNat := signedToNat(alpha)
	A := stmt.EK.EncryptWithRandomness(alphaNat, r)
	T := stmt.Verifier.Commit(alpha, gamma)

	alphaScalar, err := curve.ScalarFromBytes(padTo32(new(big.Int).Mod(alpha, curve.Order())))
	if err != nil {
		return nil, err
	}
	U := curve.ScalarMult(alphaScalar, stmt.Base)

	e := deriveChallengeWc(stmt.Statement, S, A.Nat(), T, U)

	s1 := new(big.Int).Mul(e, witness.M)
	s1.Add(s1, alpha)

	t2 := new(big.Int).Mul(e, mu)
	t2.Add(t2, gamma)

	eNat := new(safenum.Nat).SetBytes(e.Bytes())
	rhoToE := stmt.EK.Modulus().Exp(witness.Rho, eNat)
	s2 := new(safenum.Nat).ModMul(rhoToE, r, stmt.EK.Modulus())

	return &ProofWc{S: S, A: A.Nat(), T: T, U: U, S1: s1, S2: s2, T2: t2}, nil
}

// VerifyWc checks a ProofWc against stmt.
func VerifyWc(stmt StatementWc, proof *ProofWc) error {
	q3 := cubedBound()
	bound := new(big.Int).Lsh(q3, securityParamBits+1)
	if new(big.Int).Abs(proof.S1).Cmp(bound) > 0 {
		return ErrVerifyFailed
	}

	e := deriveChallengeWc(stmt.Statement, proof.S, proof.A, proof.T, proof.U)

	s1Nat := signedToNat(proof.S1)
	lhs := stmt.EK.EncryptWithRandomness(s1Nat, proof.S2)

	eAbs := new(safenum.Nat).SetBytes(e.Bytes())
	cToE := stmt.EK.NSquared().Exp(stmt.Ciphertext.Nat(), eAbs)
	rhs := new(safenum.Nat).ModMul(cToE, proof.A, stmt.EK.NSquared())
	if lhs.Nat().Big().Cmp(rhs.Big()) != 0 {
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
	lhs3 := curve.ScalarMult(s1Scalar, stmt.Base)
	rhs3 := proof.U.Add(curve.ScalarMult(eScalar, stmt.MsgG))
	if !lhs3.Equal(rhs3) {
		return ErrVerifyFailed
	}
	return nil
}

func deriveChallengeWc(stmt Statement, s, a, t *safenum.Nat, u *curve.Point) *big.Int {
	c := challenge.New(challenge.DomainRange)
	c.WriteAll(
		stmt.Ciphertext.Nat().Bytes(),
		stmt.EK.N().Bytes(),
		stmt.Verifier.Nhat.Bytes(),
		s.Bytes(), a.Bytes(), t.Bytes(), u.Bytes(),
	)
	modulus := new(big.Int).Lsh(big.NewInt(1), 256)
	return c.Int(modulus)
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

// signedToNat reduces a signed big.Int into an unsigned safenum.Nat, used
// only where the destination is a Paillier plaintext that must already lie
// in Z_N by construction of the masking range (alpha, s1 here).
func signedToNat(v *big.Int) *safenum.Nat {
	abs := new(big.Int).Abs(v)
	return new(safenum.Nat).SetBytes(abs.Bytes())
}
