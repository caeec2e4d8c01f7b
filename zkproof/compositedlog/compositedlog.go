// Package compositedlog implements the composite-DLog proof (a
// Fiat-Shamir-transformed Girault identification scheme): proof of
// knowledge of s such that v = g^(-s) mod Nhat, for an Nhat whose
// factorization is known only to the prover. zksetup uses this in both
// directions (h2 = h1^(-s), and the inverse statement h1 = h2^(-s^-1))
// to prove h1 and h2 generate the same subgroup of Z*_Nhat.
package compositedlog

import (
	"errors"
	"io"
	"math/big"

	"github.com/cronokirby/safenum"

	"github.com/axelarnetwork/tofn-sub000/internal/challenge"
)

// Security parameters. ChallengeBits is 256 rather than the 128 the cited
// theorem would allow - a deliberately conservative choice flagged as an
// open question, kept as-is because weakening it would contradict the
// measured security the rest of the suite assumes.
const (
	ChallengeBits     = 256
	SecurityParamBits = 128
	WitnessSizeBits   = 256
)

// Statement is the public composite-DLog relation v = g^(-s) mod Nhat.
type Statement struct {
	Nhat *safenum.Nat
	G    *safenum.Nat
	V    *safenum.Nat
}

// Witness is the prover's knowledge: the factorization of Nhat (to reduce
// the masking value mod phi(Nhat), keeping the response compact) and s.
type Witness struct {
	P, Q *safenum.Nat
	S    *safenum.Nat
}

// Proof is the non-interactive Girault transcript (A, Z).
type Proof struct {
	A *safenum.Nat
	Z *big.Int
}

var ErrVerifyFailed = errors.New("compositedlog: verification failed")

func rMaskBits() uint {
	return ChallengeBits + SecurityParamBits + WitnessSizeBits
}

// Prove builds a non-interactive proof for Statement using Witness.
func Prove(rnd io.Reader, stmt Statement, witness Witness) (*Proof, error) {
	one := new(safenum.Nat).SetUint64(1)
	pMinus1 := new(safenum.Nat).Sub(witness.P, one, -1)
	qMinus1 := new(safenum.Nat).Sub(witness.Q, one, -1)
	phiNat := new(safenum.Nat).Mul(pMinus1, qMinus1, -1)
	phi := safenum.ModulusFromNat(phiNat)
	nHat := safenum.ModulusFromNat(stmt.Nhat)

	// Mask r is drawn from a range much larger than phi(Nhat) so that
	// r mod phi is (statistically) uniform; reducing mod phi via the
	// known factorization keeps the exponentiation cheap.
	rBig, err := randBits(rnd, rMaskBits())
	if err != nil {
		return nil, err
	}
	rNat := new(safenum.Nat).SetBytes(rBig.Bytes())
	rModPhi := new(safenum.Nat).Mod(rNat, phi)

	a := nHat.Exp(stmt.G, rModPhi)

	e := deriveChallenge(stmt, a)

	// z = r + e*s, computed over the integers (not reduced) so the
	// verifier - who doesn't know phi(Nhat) - can check g^z*v^e = a
	// directly; the prover used r mod phi only to compute `a` cheaply,
	// but reports the un-reduced r for the integer response.
	eBig := e
	sBig := witness.S.Big()
	z := new(big.Int).Mul(eBig, sBig)
	z.Add(z, rBig)

	return &Proof{A: a, Z: z}, nil
}

// Verify checks a composite-DLog proof against Statement.
func Verify(stmt Statement, proof *Proof) error {
	maxZ := new(big.Int).Lsh(big.NewInt(1), rMaskBits()+1)
	if proof.Z.Sign() < 0 || proof.Z.Cmp(maxZ) > 0 {
		return ErrVerifyFailed
	}

	e := deriveChallenge(stmt, proof.A)

	nHat := safenum.ModulusFromNat(stmt.Nhat)
	zNat := new(safenum.Nat).SetBytes(proof.Z.Bytes())
	eNat := new(safenum.Nat).SetBytes(e.Bytes())

	lhs1 := nHat.Exp(stmt.G, zNat)
	lhs2 := nHat.Exp(stmt.V, eNat)
	lhs := new(safenum.Nat).ModMul(lhs1, lhs2, nHat)

	if lhs.Big().Cmp(proof.A.Big()) != 0 {
		return ErrVerifyFailed
	}
	return nil
}

func deriveChallenge(stmt Statement, a *safenum.Nat) *big.Int {
	c := challenge.New(challenge.DomainCompositeDLog)
	c.WriteAll(stmt.Nhat.Bytes(), stmt.G.Bytes(), stmt.V.Bytes(), a.Bytes())
	modulus := new(big.Int).Lsh(big.NewInt(1), ChallengeBits)
	return c.Int(modulus)
}

func randBits(rnd io.Reader, bits uint) (*big.Int, error) {
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(buf), nil
}
