package paillier

import (
	"crypto/rand"
	"io"

	"github.com/cronokirby/safenum"
)

// KeyGen generates a fresh safe-prime Paillier keypair from rnd, which in
// production is the deterministic session RNG (see package rng) so that
// identical recovery material always reproduces the same key.
//
// Selection between safe and unsafe prime generation is a build-time choice
// (KeyGen vs KeyGenUnsafe), never a runtime flag, matching the data model's
// "feature flag, not a runtime switch" rule.
func KeyGen(rnd io.Reader) (*EncryptionKey, *DecryptionKey, error) {
	p, q, err := sampleSafePrimePair(rnd)
	if err != nil {
		return nil, nil, err
	}
	dk, err := NewDecryptionKeyFromPrimes(p, q)
	if err != nil {
		return nil, nil, err
	}
	return dk.EncryptionKey, dk, nil
}

// KeyGenUnsafe generates a Paillier keypair from two random (not necessarily
// safe) primes. It exists only for test speed; production code must never
// call it. See DESIGN.md's Open Question decision on this gating.
func KeyGenUnsafe(rnd io.Reader) (*EncryptionKey, *DecryptionKey, error) {
	p, err := sampleRandomPrime(rnd, BitsBlumPrime)
	if err != nil {
		return nil, nil, err
	}
	q, err := sampleRandomPrime(rnd, BitsBlumPrime)
	if err != nil {
		return nil, nil, err
	}
	dk, err := NewDecryptionKeyFromPrimes(p, q)
	if err != nil {
		return nil, nil, err
	}
	return dk.EncryptionKey, dk, nil
}

// sampleSafePrimePair draws two distinct BitsBlumPrime-bit safe primes
// satisfying ValidatePrime: candidates are forced to 3 mod 4 before the
// (p-1)/2 primality test, since a safe prime is always a Blum prime.
func sampleSafePrimePair(rnd io.Reader) (*safenum.Nat, *safenum.Nat, error) {
	p, err := sampleSafePrime(rnd, BitsBlumPrime)
	if err != nil {
		return nil, nil, err
	}
	for {
		q, err := sampleSafePrime(rnd, BitsBlumPrime)
		if err != nil {
			return nil, nil, err
		}
		if q.Big().Cmp(p.Big()) != 0 {
			return p, q, nil
		}
	}
}

func sampleSafePrime(rnd io.Reader, bits int) (*safenum.Nat, error) {
	bytes := make([]byte, (bits+7)/8)
	for {
		if _, err := io.ReadFull(rnd, bytes); err != nil {
			return nil, err
		}
		bytes[0] |= 0xC0 // force top two bits, pin the bit length
		bytes[len(bytes)-1] |= 0x03 // force p = 3 mod 4
		p := new(safenum.Nat).SetBytes(bytes)
		if err := ValidatePrime(p); err != nil {
			continue
		}
		return p, nil
	}
}

func sampleRandomPrime(rnd io.Reader, bits int) (*safenum.Nat, error) {
	bytes := make([]byte, (bits+7)/8)
	for {
		if _, err := io.ReadFull(rnd, bytes); err != nil {
			return nil, err
		}
		bytes[0] |= 0xC0
		bytes[len(bytes)-1] |= 0x01
		p := new(safenum.Nat).SetBytes(bytes)
		if p.TrueLen() != bits {
			continue
		}
		if !p.Big().ProbablyPrime(20) {
			continue
		}
		return p, nil
	}
}

// RandReader is the default randomness source for ad-hoc tests; production
// round code always threads the deterministic session RNG instead.
var RandReader = rand.Reader
