// Package paillierkey implements the Paillier square-free proof
// (PaillierKeyStmt): a prover shows that N is coprime to phi(N) - i.e. that
// N is not divisible by the square of any prime - via M parallel
// challenges rho_i, replying sigma_i = rho_i^(N^-1 mod phi(N)) mod N. The
// verifier checks sigma_i^N == rho_i (mod N) after a cheap GCD
// trial-division against the primorial of primes below primorialBound,
// which rules out most non-square-free N without running the expensive
// per-challenge check.
package paillierkey

import (
	"errors"
	"math/big"
	"sync"

	"github.com/cronokirby/safenum"

	"github.com/axelarnetwork/tofn-sub000/internal/challenge"
)

// ParamM is the number of parallel challenges; M=11 gives soundness error
// roughly 2^-m against a cheating prover who picked a non-coprime N.
const ParamM = 11

// primorialBound: small primes are trial-divided out of N up to (but not
// including) this bound before the expensive exponentiation checks run.
const primorialBound = 6370

var (
	primorialOnce sync.Once
	primorial     *big.Int
)

// Primorial returns the product of all primes strictly below
// primorialBound, computed once via a simple sieve. The original computes
// the identical constant but embeds it as a literal byte string; computing
// it here keeps the exact same numeric value without hand-transcribing a
// multi-hundred-byte constant, which would be easy to get subtly wrong.
func Primorial() *big.Int {
	primorialOnce.Do(func() {
		sieve := make([]bool, primorialBound)
		p := big.NewInt(1)
		for i := 2; i < primorialBound; i++ {
			if sieve[i] {
				continue
			}
			p.Mul(p, big.NewInt(int64(i)))
			for j := i * i; j < primorialBound; j += i {
				sieve[j] = true
			}
		}
		primorial = p
	})
	return primorial
}

var ErrVerifyFailed = errors.New("paillierkey: verification failed")
var ErrNotSquareFree = errors.New("paillierkey: N shares a small factor with phi(N)")

// Statement is just N, the Paillier modulus under test.
type Statement struct {
	N *safenum.Nat
}

// Witness is N^-1 mod phi(N), the exponent only the key's generator can
// compute.
type Witness struct {
	NInvModPhi *safenum.Nat
	Phi        *safenum.Nat
}

// Proof is the M rho/sigma pairs.
type Proof struct {
	Sigmas [ParamM]*safenum.Nat
}

// Prove derives the M challenges from the statement via a blake3 XOF and
// answers each with sigma_i = rho_i^(N^-1 mod phi(N)) mod N.
func Prove(stmt Statement, witness Witness) *Proof {
	nMod := safenum.ModulusFromNat(stmt.N)
	rhos := deriveChallenges(stmt.N)

	var proof Proof
	for i := 0; i < ParamM; i++ {
		rho := new(safenum.Nat).Mod(rhos[i], nMod)
		proof.Sigmas[i] = nMod.Exp(rho, witness.NInvModPhi)
	}
	return &proof
}

// Verify runs the primorial trial-division short circuit, then checks each
// sigma_i^N == rho_i (mod N).
func Verify(stmt Statement, proof *Proof) error {
	g := new(big.Int).GCD(nil, nil, stmt.N.Big(), Primorial())
	if g.Cmp(big.NewInt(1)) != 0 {
		return ErrNotSquareFree
	}

	nMod := safenum.ModulusFromNat(stmt.N)
	rhos := deriveChallenges(stmt.N)
	for i := 0; i < ParamM; i++ {
		rho := new(safenum.Nat).Mod(rhos[i], nMod)
		got := nMod.Exp(proof.Sigmas[i], stmt.N)
		if got.Big().Cmp(rho.Big()) != 0 {
			return ErrVerifyFailed
		}
	}
	return nil
}

func deriveChallenges(n *safenum.Nat) [ParamM]*safenum.Nat {
	ints := challenge.XOFInts(challenge.DomainPaillierKey, [][]byte{n.Bytes()}, ParamM, n.Big())
	var out [ParamM]*safenum.Nat
	for i, v := range ints {
		out[i] = new(safenum.Nat).SetBytes(v.Bytes())
	}
	return out
}
