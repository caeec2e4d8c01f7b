// Package commit implements the hash-based commit-reveal scheme used by
// keygen (round 1 commits to y_i, round 2 reveals the randomness, round 3
// checks it against the constant term of the sender's VSS commitments) and
// by sign (round 1 commits to Gamma_i, which is revealed later).
//
// sha256 is used here, not the blake3-based challenge hasher in
// internal/challenge, because the commitment algorithm is pinned by name to
// SHA-256 rather than left to the implementer's choice of hash.
package commit

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"
)

// RandomnessSize is the byte length of the commitment randomness r.
const RandomnessSize = 32

// Commitment is H(msg || r).
type Commitment [sha256.Size]byte

// Decommitment is the randomness r revealed alongside the committed message.
type Decommitment [RandomnessSize]byte

// ErrMismatch is returned by Verify when the decommitment doesn't reproduce
// the commitment.
var ErrMismatch = errors.New("commit: decommitment does not match commitment")

// New commits to msg with freshly sampled randomness drawn from rnd (the
// deterministic session RNG in production).
func New(rnd io.Reader, msg []byte) (Commitment, Decommitment, error) {
	var r Decommitment
	if _, err := io.ReadFull(rnd, r[:]); err != nil {
		return Commitment{}, Decommitment{}, err
	}
	return WithRandomness(msg, r), r, nil
}

// WithRandomness commits to msg deterministically given r.
func WithRandomness(msg []byte, r Decommitment) Commitment {
	h := sha256.New()
	h.Write(msg)
	h.Write(r[:])
	var out Commitment
	copy(out[:], h.Sum(nil))
	return out
}

// Verify checks that (msg, r) opens c.
func Verify(c Commitment, msg []byte, r Decommitment) error {
	got := WithRandomness(msg, r)
	if subtle.ConstantTimeCompare(got[:], c[:]) != 1 {
		return ErrMismatch
	}
	return nil
}

// RandReader is the default randomness source for tests and ad-hoc callers;
// production round code threads the session RNG instead.
var RandReader = rand.Reader
