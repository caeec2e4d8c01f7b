// Package paillier implements the Paillier homomorphic encryption scheme:
// EncryptionKey/DecryptionKey keypairs, Plaintext/Ciphertext/Randomness
// values, and the safe/unsafe keygen paths the rest of the tree (ZK setup,
// MtA, range proofs) builds on.
//
// Contract: for all m in Z_N, r in Z*_N, Decrypt(EncryptWithRandomness(m, r))
// is congruent to m mod N (Decrypt returns the signed representative in
// ±(N-1)/2). Decrypt does not recover the randomness r.
// EncryptWithRandomness is deterministic given r; Encrypt samples fresh r.
// Homomorphic operations never reduce ciphertexts modulo N - only a
// Decrypt call does that reduction, and only at the end.
package paillier

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/safenum"
)

// MinModulusBits and MaxModulusBits bound the Paillier modulus size, per the
// data-model's "N >= 2048 bits, <= 4096 bits" constraint, enforced at
// deserialization.
const (
	MinModulusBits = 2048
	MaxModulusBits = 4096
	// BitsBlumPrime is half of MinModulusBits: each safe prime factor of a
	// 2048-bit N is ~1024 bits.
	BitsBlumPrime = MinModulusBits / 2
)

var (
	ErrPrimeBadLength = errors.New("paillier: prime factor is not the right bit length")
	ErrNotBlum        = errors.New("paillier: prime factor is not equivalent to 3 (mod 4)")
	ErrNotSafePrime   = errors.New("paillier: supposed prime factor is not a safe prime")
	ErrModulusSize    = errors.New("paillier: modulus outside [2048, 4096] bits")
)

var oneNat = new(safenum.Nat).SetUint64(1)

// EncryptionKey is the Paillier public key: the modulus N = p*q.
type EncryptionKey struct {
	n           *safenum.Modulus
	nNat        *safenum.Nat
	nSquared    *safenum.Modulus
	nSquaredNat *safenum.Nat
}

// NewEncryptionKey wraps a modulus N as a public key, checking size bounds.
func NewEncryptionKey(n *safenum.Nat) (*EncryptionKey, error) {
	bits := n.TrueLen()
	if bits < MinModulusBits || bits > MaxModulusBits {
		return nil, fmt.Errorf("%w: got %d bits", ErrModulusSize, bits)
	}
	nSquaredNat := new(safenum.Nat).Mul(n, n, -1)
	return &EncryptionKey{
		n:           safenum.ModulusFromNat(n),
		nNat:        n,
		nSquared:    safenum.ModulusFromNat(nSquaredNat),
		nSquaredNat: nSquaredNat,
	}, nil
}

// N returns the modulus as a safenum.Nat, e.g. for wire encoding.
func (ek *EncryptionKey) N() *safenum.Nat { return ek.nNat }

// Modulus returns the modulus as a safenum.Modulus for arithmetic.
func (ek *EncryptionKey) Modulus() *safenum.Modulus { return ek.n }

// NSquared returns N² as a safenum.Modulus.
func (ek *EncryptionKey) NSquared() *safenum.Modulus { return ek.nSquared }

// NSquaredNat returns N² as a safenum.Nat, e.g. for bound checks.
func (ek *EncryptionKey) NSquaredNat() *safenum.Nat { return ek.nSquaredNat }

// SampleRandomness samples r uniformly from Z*_N.
func (ek *EncryptionKey) SampleRandomness(rnd io.Reader) *safenum.Nat {
	return sampleUnit(rnd, ek.n, ek.nNat)
}

// RandomPlaintext samples m uniformly from Z_N.
func (ek *EncryptionKey) RandomPlaintext(rnd io.Reader) *safenum.Nat {
	bytes := make([]byte, (ek.nNat.TrueLen()+7)/8+16)
	_, _ = io.ReadFull(rnd, bytes)
	m := new(safenum.Nat).SetBytes(bytes)
	return new(safenum.Nat).Mod(m, ek.n)
}

// sampleUnit draws a value in [1, modulusNat) repeatedly until it is
// coprime to modulusNat (i.e. a unit of Z_modulusNat).
func sampleUnit(rnd io.Reader, modulus *safenum.Modulus, modulusNat *safenum.Nat) *safenum.Nat {
	bytes := make([]byte, (modulusNat.TrueLen()+7)/8+16)
	n := modulusNat.Big()
	for {
		_, _ = io.ReadFull(rnd, bytes)
		cand := new(safenum.Nat).SetBytes(bytes)
		cand.Mod(cand, modulus)
		if isUnit(cand, n) {
			return cand
		}
	}
}

// isUnit reports whether cand is coprime to n, i.e. a unit of Z_n.
func isUnit(cand *safenum.Nat, n *big.Int) bool {
	g := new(big.Int).GCD(nil, nil, cand.Big(), n)
	return g.Cmp(big.NewInt(1)) == 0
}

// DecryptionKey is the Paillier secret key: the factorization (p, q) and the
// precomputed totient / its inverse.
type DecryptionKey struct {
	*EncryptionKey
	p, q   *safenum.Nat
	phi    *safenum.Nat
	phiInv *safenum.Nat
}

// P returns the first prime factor of N.
func (dk *DecryptionKey) P() *safenum.Nat { return dk.p }

// Q returns the second prime factor of N.
func (dk *DecryptionKey) Q() *safenum.Nat { return dk.q }

// Phi returns phi(N) = (p-1)(q-1).
func (dk *DecryptionKey) Phi() *safenum.Nat { return dk.phi }

// NewDecryptionKeyFromPrimes builds a DecryptionKey from two primes,
// assumed prime (the caller validates via ValidatePrime on the safe path).
func NewDecryptionKeyFromPrimes(p, q *safenum.Nat) (*DecryptionKey, error) {
	n := new(safenum.Nat).Mul(p, q, -1)
	ek, err := NewEncryptionKey(n)
	if err != nil {
		return nil, err
	}
	pMinus1 := new(safenum.Nat).Sub(p, oneNat, -1)
	qMinus1 := new(safenum.Nat).Sub(q, oneNat, -1)
	phi := new(safenum.Nat).Mul(pMinus1, qMinus1, -1)
	phiInv := new(safenum.Nat).ModInverse(phi, ek.n)

	return &DecryptionKey{
		EncryptionKey: ek,
		p:             p,
		q:             q,
		phi:           phi,
		phiInv:        phiInv,
	}, nil
}

// ValidatePrime checks that p is the right bit length, is a Blum prime
// (p = 3 mod 4), and that (p-1)/2 is itself prime - the "safe prime"
// requirement of the safe keygen path.
func ValidatePrime(p *safenum.Nat) error {
	if bits := p.TrueLen(); bits != BitsBlumPrime {
		return fmt.Errorf("%w: have %d, need %d", ErrPrimeBadLength, bits, BitsBlumPrime)
	}
	if p.Byte(0)&0b11 != 3 {
		return ErrNotBlum
	}
	if !p.Big().ProbablyPrime(20) {
		return ErrNotSafePrime
	}
	pMinus1Div2 := new(safenum.Nat).Rsh(p, 1, -1)
	if !pMinus1Div2.Big().ProbablyPrime(20) {
		return ErrNotSafePrime
	}
	return nil
}
