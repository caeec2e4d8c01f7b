package sign

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/keygen"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/wire"
)

// runKeygen drives n honest parties through keygen by hand, the same
// transport-simulation shape keygen's own test uses, and returns each
// party's resulting secret key share.
func runKeygen(t *testing.T, n, threshold int) []*keygen.SecretKeyShare {
	t.Helper()

	oneEach := make([]int, n)
	for i := range oneEach {
		oneEach[i] = 1
	}
	counts, err := sdk.NewPartyShareCounts[keygen.PartyID](oneEach)
	require.NoError(t, err)

	rounds := make([]*sdk.Round[keygen.SecretKeyShare, keygen.ShareID, keygen.PartyID], n)
	for i := 0; i < n; i++ {
		r, err := keygen.New(rand.Reader, threshold,
			collections.NewTypedUsize[keygen.ShareID](uint32(i)),
			collections.NewTypedUsize[keygen.PartyID](uint32(i)),
			counts)
		require.NoError(t, err)
		rounds[i] = r
	}

	advance := func() {
		for i := 0; i < n; i++ {
			bcast, ok := rounds[i].BcastOut()
			if !ok {
				continue
			}
			expected := rounds[i].ExpectedMsgTypeOut()
			for j := 0; j < n; j++ {
				env := wire.Envelope{
					MsgType:          wire.MsgType{Kind: wire.Bcast},
					From:             uint32(i),
					ExpectedMsgTypes: expected,
					Payload:          bcast,
				}
				require.NoError(t, rounds[j].MsgIn(collections.NewTypedUsize[keygen.PartyID](uint32(i)), env))
			}
		}
		for i := 0; i < n; i++ {
			p2ps, ok := rounds[i].P2psOut()
			if !ok {
				continue
			}
			expected := rounds[i].ExpectedMsgTypeOut()
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				payload, err := p2ps.Get(collections.NewTypedUsize[keygen.ShareID](uint32(j)))
				require.NoError(t, err)
				env := wire.Envelope{
					MsgType:          wire.MsgType{Kind: wire.P2P, To: uint32(j)},
					From:             uint32(i),
					ExpectedMsgTypes: expected,
					Payload:          payload,
				}
				require.NoError(t, rounds[j].MsgIn(collections.NewTypedUsize[keygen.PartyID](uint32(i)), env))
			}
		}
	}

	// round 1's messages come from New; rounds 2, 3 and 4 each take one
	// ExecuteNextRound, the last of which returns the output.
	outputs := make([]*keygen.SecretKeyShare, n)
	for round := 0; round < 3; round++ {
		advance()
		for i := 0; i < n; i++ {
			proto, err := rounds[i].ExecuteNextRound()
			require.NoError(t, err)
			if proto.IsDone() {
				require.NotNil(t, proto.Output.Success, "keygen party %d faulted unexpectedly", i)
				outputs[i] = proto.Output.Success
			} else {
				rounds[i] = proto.Round
			}
		}
	}
	return outputs
}

// TestSignHappyPath drives three keygen'd parties through all eight signing
// rounds by hand and checks the resulting signature against the standard
// ECDSA verification relation using the curve's own group law, the same way
// a client of this package would - a canonical sanity check that the
// threshold protocol produced an ordinary, independently verifiable
// signature.
func TestSignHappyPath(t *testing.T) {
	const n = 3
	const threshold = 1

	shares := runKeygen(t, n, threshold)

	committee := make([]uint32, n)
	for i := range committee {
		committee[i] = uint32(i)
	}

	digest := sha256.Sum256([]byte("tofn-sub000 sign test message"))
	msgHash := new(big.Int).SetBytes(digest[:])

	oneEachSign := make([]int, n)
	for i := range oneEachSign {
		oneEachSign[i] = 1
	}
	counts, err := sdk.NewPartyShareCounts[SignerID](oneEachSign)
	require.NoError(t, err)

	rounds := make([]*sdk.Round[Signature, SignerID, SignerID], n)
	for i := 0; i < n; i++ {
		r, err := New(rand.Reader, msgHash, shares[i], committee,
			collections.NewTypedUsize[SignerID](uint32(i)), counts)
		require.NoError(t, err)
		rounds[i] = r
	}

	advance := func() {
		for i := 0; i < n; i++ {
			bcast, ok := rounds[i].BcastOut()
			if !ok {
				continue
			}
			expected := rounds[i].ExpectedMsgTypeOut()
			for j := 0; j < n; j++ {
				env := wire.Envelope{
					MsgType:          wire.MsgType{Kind: wire.Bcast},
					From:             uint32(i),
					ExpectedMsgTypes: expected,
					Payload:          bcast,
				}
				require.NoError(t, rounds[j].MsgIn(collections.NewTypedUsize[SignerID](uint32(i)), env))
			}
		}
		for i := 0; i < n; i++ {
			p2ps, ok := rounds[i].P2psOut()
			if !ok {
				continue
			}
			expected := rounds[i].ExpectedMsgTypeOut()
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				payload, err := p2ps.Get(collections.NewTypedUsize[SignerID](uint32(j)))
				require.NoError(t, err)
				env := wire.Envelope{
					MsgType:          wire.MsgType{Kind: wire.P2P, To: uint32(j)},
					From:             uint32(i),
					ExpectedMsgTypes: expected,
					Payload:          payload,
				}
				require.NoError(t, rounds[j].MsgIn(collections.NewTypedUsize[SignerID](uint32(i)), env))
			}
		}
	}

	var outputs [n]*Signature
	done := false
	for round := 0; round < 8 && !done; round++ {
		advance()
		allDone := true
		for i := 0; i < n; i++ {
			proto, err := rounds[i].ExecuteNextRound()
			require.NoError(t, err)
			if proto.IsDone() {
				require.NotNil(t, proto.Output.Success, "sign party %d faulted unexpectedly", i)
				outputs[i] = proto.Output.Success
			} else {
				rounds[i] = proto.Round
				allDone = false
			}
		}
		done = allDone
	}

	for i := 0; i < n; i++ {
		require.NotNil(t, outputs[i], "party %d never produced a signature", i)
	}

	y := shares[0].Group.Y
	q := curve.Order()
	sig := outputs[0]
	for i := 1; i < n; i++ {
		require.Equal(t, 0, sig.R.Cmp(outputs[i].R), "parties disagree on r")
		require.Equal(t, 0, sig.S.Cmp(outputs[i].S), "parties disagree on s")
	}

	sInv := new(big.Int).ModInverse(sig.S, q)
	require.NotNil(t, sInv)
	u1 := new(big.Int).Mod(new(big.Int).Mul(msgHash, sInv), q)
	u2 := new(big.Int).Mod(new(big.Int).Mul(sig.R, sInv), q)

	u1Scalar, err := bigToScalar(u1)
	require.NoError(t, err)
	u2Scalar, err := bigToScalar(u2)
	require.NoError(t, err)

	point := curve.ScalarBaseMult(u1Scalar).Add(curve.ScalarMult(u2Scalar, y))
	require.Equal(t, 0, point.XCoordMod().BigInt().Cmp(sig.R), "signature does not verify against the group public key")
}
