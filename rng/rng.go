// Package rng implements the deterministic per-session randomness source:
// seed = HMAC-SHA256(secret_recovery_key, session_nonce), then a ChaCha20
// stream keyed from that seed. Identical (secret_recovery_key, session_nonce,
// n, t, id) inputs must reproduce bitwise-identical Paillier keys and ZK
// setups, which is what makes SecretKeyShare recovery from backup possible.
package rng

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20"
)

// ErrEmptyNonce is returned by Seed when session_nonce is empty.
var ErrEmptyNonce = errors.New("rng: session_nonce must be non-empty")

// Seed derives the 32-byte ChaCha20 key from the caller-supplied recovery
// material.
func Seed(secretRecoveryKey, sessionNonce []byte) ([32]byte, error) {
	if len(sessionNonce) == 0 {
		return [32]byte{}, ErrEmptyNonce
	}
	mac := hmac.New(sha256.New, secretRecoveryKey)
	mac.Write(sessionNonce)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out, nil
}

// SessionRNG is a deterministic byte stream, safe to use as an io.Reader
// anywhere the rest of the tree samples randomness (Paillier prime search,
// ZK setup generation, VSS polynomial coefficients, MtA blinding factors).
type SessionRNG struct {
	cipher *chacha20.Cipher
}

// New builds a SessionRNG from a derived seed. index further diversifies the
// stream per logical sub-draw (e.g. per-party, per-purpose) by folding it
// into the nonce, since a single ChaCha20 stream must not be reused across
// independent purposes without distinct nonces.
func New(seed [32]byte, index uint64) (*SessionRNG, error) {
	var nonce [chacha20.NonceSize]byte
	binary.BigEndian.PutUint64(nonce[4:], index)
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &SessionRNG{cipher: c}, nil
}

// Read implements io.Reader by XOR-ing the keystream over a zero buffer.
func (r *SessionRNG) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}

var _ io.Reader = (*SessionRNG)(nil)
