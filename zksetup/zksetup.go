// Package zksetup implements the per-party ZK setup parameters (Ñ, h1, h2):
// an RSA modulus distinct from the party's Paillier N, together with a
// composite-DLog proof (and its inverse-statement pairing) that h1 and h2
// generate the same subgroup of Z*_Ñ. These act as Pedersen-like
// integer-commitment parameters for the range/MtA proof family.
package zksetup

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/safenum"

	"github.com/axelarnetwork/tofn-sub000/zkproof/compositedlog"
)

// ZkSetup is the public (Ñ, h1, h2) tuple a peer publishes alongside its
// Paillier key.
type ZkSetup struct {
	Nhat *safenum.Nat
	H1   *safenum.Nat
	H2   *safenum.Nat
}

// Secret holds the factorization of Ñ and the discrete-log witness s with
// h2 = h1^(-s) mod Ñ, needed only by the party that generated the setup.
type Secret struct {
	P, Q *safenum.Nat
	S    *safenum.Nat
	SInv *safenum.Nat
}

// New builds a ZkSetup over Ñ = p*q from the caller's primes p and q,
// drawing the base f and the secret exponent s from rnd. It does not check
// that p and q are safe primes.
func New(rnd io.Reader, p, q *safenum.Nat) (*ZkSetup, *Secret, error) {
	nHatNat := new(safenum.Nat).Mul(p, q, -1)
	nHat := safenum.ModulusFromNat(nHatNat)
	phiNat := eulerPhi(p, q)
	phi := safenum.ModulusFromNat(phiNat)

	// sample f a unit of Z*_Nhat, and a secret exponent s in Z*_phi(Nhat),
	// giving h1=f^2, h2=h1^(-s), the asymmetric-basis Girault setup.
	f := sampleUnit(rnd, nHat, nHatNat)
	s := sampleUnit(rnd, phi, phiNat)
	sInv := new(safenum.Nat).ModInverse(s, phi)

	h1 := new(safenum.Nat).ModMul(f, f, nHat)
	h1ToS := nHat.Exp(h1, s)
	h2 := new(safenum.Nat).ModInverse(h1ToS, nHat)

	return &ZkSetup{Nhat: nHatNat, H1: h1, H2: h2},
		&Secret{P: p, Q: q, S: s, SInv: sInv}, nil
}

// NewUnsafe generates a ZkSetup from arbitrary (not necessarily safe)
// primes, for test speed only; production callers must not use this path
// (see DESIGN.md's Open Question decision).
func NewUnsafe(rnd io.Reader, p, q *safenum.Nat) (*ZkSetup, *Secret, error) {
	return New(rnd, p, q)
}

func eulerPhi(p, q *safenum.Nat) *safenum.Nat {
	one := new(safenum.Nat).SetUint64(1)
	pMinus1 := new(safenum.Nat).Sub(p, one, -1)
	qMinus1 := new(safenum.Nat).Sub(q, one, -1)
	return new(safenum.Nat).Mul(pMinus1, qMinus1, -1)
}

func sampleUnit(rnd io.Reader, modulus *safenum.Modulus, modulusNat *safenum.Nat) *safenum.Nat {
	bytes := make([]byte, (modulusNat.TrueLen()+7)/8+16)
	n := modulusNat.Big()
	for {
		if _, err := io.ReadFull(rnd, bytes); err != nil {
			panic(fmt.Sprintf("zksetup: rng read failed: %v", err))
		}
		cand := new(safenum.Nat).SetBytes(bytes)
		cand.Mod(cand, modulus)
		g := new(big.Int).GCD(nil, nil, cand.Big(), n)
		if g.Cmp(big.NewInt(1)) == 0 {
			return cand
		}
	}
}

// Prove produces the composite-DLog proof that H2 = H1^(-S) mod Nhat,
// together with its inverse-statement pairing (H1 = H2^(-SInv) mod Nhat),
// per the "Supplemented features" ledger entry: both directions are proved,
// not just the one spec.md's glossary mentions.
func (z *ZkSetup) Prove(rnd io.Reader, secret *Secret) (*compositedlog.Proof, *compositedlog.Proof, error) {
	stmt := compositedlog.Statement{
		Nhat: z.Nhat,
		G:    z.H1,
		V:    z.H2,
	}
	witness := compositedlog.Witness{P: secret.P, Q: secret.Q, S: secret.S}
	proof, err := compositedlog.Prove(rnd, stmt, witness)
	if err != nil {
		return nil, nil, err
	}

	invStmt := compositedlog.Statement{
		Nhat: z.Nhat,
		G:    z.H2,
		V:    z.H1,
	}
	invWitness := compositedlog.Witness{P: secret.P, Q: secret.Q, S: secret.SInv}
	invProof, err := compositedlog.Prove(rnd, invStmt, invWitness)
	if err != nil {
		return nil, nil, err
	}
	return proof, invProof, nil
}

// Verify checks both the forward and inverse composite-DLog proofs against
// the published (Ñ, h1, h2).
func (z *ZkSetup) Verify(proof, invProof *compositedlog.Proof) error {
	stmt := compositedlog.Statement{Nhat: z.Nhat, G: z.H1, V: z.H2}
	if err := compositedlog.Verify(stmt, proof); err != nil {
		return fmt.Errorf("zksetup: forward proof: %w", err)
	}
	invStmt := compositedlog.Statement{Nhat: z.Nhat, G: z.H2, V: z.H1}
	if err := compositedlog.Verify(invStmt, invProof); err != nil {
		return fmt.Errorf("zksetup: inverse proof: %w", err)
	}
	return nil
}

// Commit computes the Pedersen-like integer commitment h1^m * h2^r mod Ñ
// used throughout the range/MtA proof family. m and r are arbitrary signed
// integers (the masking values used in those proofs can exceed Ñ in
// magnitude), so the exponentiation goes through big.Int rather than
// safenum.Int, which only represents values already bounded to a modulus.
func (z *ZkSetup) Commit(m, r *big.Int) *safenum.Nat {
	nHat := safenum.ModulusFromNat(z.Nhat)
	t1 := ExpSigned(nHat, z.H1, m)
	t2 := ExpSigned(nHat, z.H2, r)
	return new(safenum.Nat).ModMul(t1, t2, nHat)
}

// ExpSigned computes base^exp mod modulus for a signed exp, inverting when
// exp is negative. Exported since the range/MtA proofs need the identical
// operation against the same (h1, h2) bases outside of a Commit call.
func ExpSigned(modulus *safenum.Modulus, base *safenum.Nat, exp *big.Int) *safenum.Nat {
	abs := new(safenum.Nat).SetBytes(new(big.Int).Abs(exp).Bytes())
	r := modulus.Exp(base, abs)
	if exp.Sign() < 0 {
		r = new(safenum.Nat).ModInverse(r, modulus)
	}
	return r
}
