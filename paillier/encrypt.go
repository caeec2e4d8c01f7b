package paillier

import (
	"errors"
	"io"
	"math/big"

	"github.com/cronokirby/safenum"
)

// Plaintext is an element of Z_N.
type Plaintext = safenum.Nat

// Randomness is an element of Z*_N.
type Randomness = safenum.Nat

// Ciphertext is an element of Z*_{N^2}.
type Ciphertext struct {
	c *safenum.Nat
}

// CiphertextFromNat wraps a raw value as a ciphertext, e.g. when decoding
// off the wire.
func CiphertextFromNat(c *safenum.Nat) *Ciphertext { return &Ciphertext{c: c} }

// Nat exposes the raw ciphertext value, e.g. for wire encoding.
func (ct *Ciphertext) Nat() *safenum.Nat { return ct.c }

// ErrInvalidCiphertext is returned when a ciphertext fails the Z*_{N^2}
// membership check: out of range, or not coprime to N^2.
var ErrInvalidCiphertext = errors.New("paillier: ciphertext not a unit of Z*_{N^2}")

// Encrypt samples fresh randomness and returns (ciphertext, randomness).
func (ek *EncryptionKey) Encrypt(rnd io.Reader, m *Plaintext) (*Ciphertext, *Randomness) {
	r := ek.SampleRandomness(rnd)
	return ek.EncryptWithRandomness(m, r), r
}

// EncryptWithRandomness is deterministic given r: c = (1+N)^m * r^N mod N^2.
// The (1+N)^m term is expanded with the standard Paillier optimization
// (1+N)^m = 1 + m*N mod N^2, avoiding a full modular exponentiation.
func (ek *EncryptionKey) EncryptWithRandomness(m *Plaintext, r *Randomness) *Ciphertext {
	nSquared := ek.nSquared

	mN := new(safenum.Nat).Mul(m, ek.nNat, -1)
	base := new(safenum.Nat).ModAdd(oneNat, mN, nSquared)

	rN := nSquared.Exp(r, ek.nNat)
	c := new(safenum.Nat).ModMul(base, rN, nSquared)
	return &Ciphertext{c: c}
}

// Decrypt recovers the plaintext (as a signed representative in
// ± (N-1)/2) from a ciphertext, using the direct formula
// m = L(c^phi mod N^2) * phiInv mod N, L(u) = (u-1)/N.
func (dk *DecryptionKey) Decrypt(ct *Ciphertext) (*safenum.Int, error) {
	if err := dk.validateCiphertext(ct); err != nil {
		return nil, err
	}
	n := dk.n
	result := dk.nSquared.Exp(ct.c, dk.phi)
	result.Sub(result, oneNat, -1)
	result.Div(result, n, -1)
	result.ModMul(result, dk.phiInv, n)
	return new(safenum.Int).SetModSymmetric(result, n), nil
}

// validateCiphertext checks 0 < c < N^2 and gcd(c, N^2) = 1.
func (dk *DecryptionKey) validateCiphertext(ct *Ciphertext) error {
	cBig := ct.c.Big()
	nSquaredBig := dk.nSquaredNat.Big()
	if cBig.Sign() <= 0 || cBig.Cmp(nSquaredBig) >= 0 {
		return ErrInvalidCiphertext
	}
	g := new(big.Int).GCD(nil, nil, cBig, nSquaredBig)
	if g.Cmp(big.NewInt(1)) != 0 {
		return ErrInvalidCiphertext
	}
	return nil
}

// HomomorphicAdd returns Enc(a+b) given Enc(a) and Enc(b): ciphertext
// multiplication mod N^2. Never reduces below N^2.
func (ek *EncryptionKey) HomomorphicAdd(a, b *Ciphertext) *Ciphertext {
	c := new(safenum.Nat).ModMul(a.c, b.c, ek.nSquared)
	return &Ciphertext{c: c}
}

// HomomorphicMulPlain returns Enc(a*k) given Enc(a) and a plaintext scalar k:
// ciphertext exponentiation mod N^2.
func (ek *EncryptionKey) HomomorphicMulPlain(a *Ciphertext, k *safenum.Int) *Ciphertext {
	abs := k.Abs()
	c := ek.nSquared.Exp(a.c, abs)
	if k.IsNegative() {
		c = new(safenum.Nat).ModInverse(c, ek.nSquared)
	}
	return &Ciphertext{c: c}
}

// HomomorphicMulPlainSigned is HomomorphicMulPlain taking the scalar as a
// signed big.Int, for callers (the ZK proof suite) that work in big.Int
// rather than safenum.Int throughout.
func (ek *EncryptionKey) HomomorphicMulPlainSigned(a *Ciphertext, k *big.Int) *Ciphertext {
	abs := new(safenum.Nat).SetBytes(new(big.Int).Abs(k).Bytes())
	c := ek.nSquared.Exp(a.c, abs)
	if k.Sign() < 0 {
		c = new(safenum.Nat).ModInverse(c, ek.nSquared)
	}
	return &Ciphertext{c: c}
}

// HomomorphicMulPlainNat is HomomorphicMulPlain for a non-negative scalar
// already reduced to a safenum.Nat (e.g. a Fiat-Shamir challenge).
func (ek *EncryptionKey) HomomorphicMulPlainNat(a *Ciphertext, k *safenum.Nat) *Ciphertext {
	c := ek.nSquared.Exp(a.c, k)
	return &Ciphertext{c: c}
}

// Randomize multiplies ct by a fresh r^N, re-randomizing the ciphertext
// without changing the plaintext it decrypts to.
func (ek *EncryptionKey) Randomize(ct *Ciphertext, r *Randomness) *Ciphertext {
	rN := ek.nSquared.Exp(r, ek.nNat)
	c := new(safenum.Nat).ModMul(ct.c, rN, ek.nSquared)
	return &Ciphertext{c: c}
}
