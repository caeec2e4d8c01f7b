package vss

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axelarnetwork/tofn-sub000/curve"
)

func TestShareVerifyReconstruct(t *testing.T) {
	secret, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)

	commitments, shares, err := Share(rand.Reader, 2, 5, secret)
	require.NoError(t, err)
	require.Len(t, shares, 5)
	require.Equal(t, 2, commitments.Threshold())

	for _, s := range shares {
		require.NoError(t, Verify(commitments, s))
	}

	subset := shares[1:4]
	got := Reconstruct(subset)
	require.Equal(t, secret.Bytes(), got.Bytes())
}

func TestVerifyRejectsTamperedShare(t *testing.T) {
	secret, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)

	commitments, shares, err := Share(rand.Reader, 1, 3, secret)
	require.NoError(t, err)

	tampered := shares[0]
	other, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	tampered.Value = other

	require.ErrorIs(t, Verify(commitments, tampered), ErrInvalidShare)
}

func TestShareCommitmentMatchesPublicShare(t *testing.T) {
	secret, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)

	commitments, shares, err := Share(rand.Reader, 2, 4, secret)
	require.NoError(t, err)

	for _, s := range shares {
		expected := curve.ScalarBaseMult(s.Value)
		got := ShareCommitment(commitments, s.Index)
		require.True(t, expected.Equal(got))
	}
}
