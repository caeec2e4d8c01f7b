package paillier

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/safenum"
	"github.com/stretchr/testify/require"
)

// fixedKey builds a deterministic small-ish keypair for fast unit tests by
// going through the unsafe path; production never does this.
func fixedKey(t *testing.T) *DecryptionKey {
	t.Helper()
	_, dk, err := KeyGenUnsafe(rand.Reader)
	require.NoError(t, err)
	return dk
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dk := fixedKey(t)
	ek := dk.EncryptionKey

	m := ek.RandomPlaintext(rand.Reader)
	ct, _ := ek.Encrypt(rand.Reader, m)

	got, err := dk.Decrypt(ct)
	require.NoError(t, err)
	// Decrypt returns the signed representative; map it back into Z_N.
	gotModN := got.Abs().Big()
	if got.IsNegative() {
		gotModN.Sub(ek.N().Big(), gotModN)
	}
	require.Equal(t, m.Big(), gotModN)
}

func TestHomomorphicAdd(t *testing.T) {
	dk := fixedKey(t)
	ek := dk.EncryptionKey

	a := new(safenum.Nat).SetUint64(7)
	b := new(safenum.Nat).SetUint64(9)
	ca, _ := ek.Encrypt(rand.Reader, a)
	cb, _ := ek.Encrypt(rand.Reader, b)

	sum := ek.HomomorphicAdd(ca, cb)
	got, err := dk.Decrypt(sum)
	require.NoError(t, err)
	require.Equal(t, int64(16), got.Abs().Big().Int64())
}

func TestHomomorphicMulPlain(t *testing.T) {
	dk := fixedKey(t)
	ek := dk.EncryptionKey

	a := new(safenum.Nat).SetUint64(6)
	ca, _ := ek.Encrypt(rand.Reader, a)

	k := new(safenum.Int).SetUint64(5)
	scaled := ek.HomomorphicMulPlain(ca, k)

	got, err := dk.Decrypt(scaled)
	require.NoError(t, err)
	require.Equal(t, int64(30), got.Abs().Big().Int64())
}
