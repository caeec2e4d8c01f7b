package keygen

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/wire"
)

// TestKeygenHappyPath drives three honest parties through all four keygen
// rounds by hand, playing the role of the transport: each round's outgoing
// messages are wrapped and fed into every party's MsgIn exactly as a real
// network layer would deliver them.
func TestKeygenHappyPath(t *testing.T) {
	const n = 3
	const threshold = 1

	counts, err := sdk.NewPartyShareCounts[PartyID]([]int{1, 1, 1})
	require.NoError(t, err)

	rounds := make([]*sdk.Round[SecretKeyShare, ShareID, PartyID], n)
	for i := 0; i < n; i++ {
		r, err := New(rand.Reader, threshold,
			collections.NewTypedUsize[ShareID](uint32(i)),
			collections.NewTypedUsize[PartyID](uint32(i)),
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
				require.NoError(t, rounds[j].MsgIn(collections.NewTypedUsize[PartyID](uint32(i)), env))
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
				payload, err := p2ps.Get(collections.NewTypedUsize[ShareID](uint32(j)))
				require.NoError(t, err)
				env := wire.Envelope{
					MsgType:          wire.MsgType{Kind: wire.P2P, To: uint32(j)},
					From:             uint32(i),
					ExpectedMsgTypes: expected,
					Payload:          payload,
				}
				require.NoError(t, rounds[j].MsgIn(collections.NewTypedUsize[PartyID](uint32(i)), env))
			}
		}
		for i := 0; i < n; i++ {
			require.False(t, rounds[i].ExpectingMoreMsgsThisRound())
		}
	}

	// round 1's messages come from New; rounds 2, 3 and 4 each take one
	// ExecuteNextRound, the last of which returns the output.
	var outputs [n]*SecretKeyShare
	for round := 0; round < 3; round++ {
		advance()
		for i := 0; i < n; i++ {
			proto, err := rounds[i].ExecuteNextRound()
			require.NoError(t, err)
			if proto.IsDone() {
				require.NotNil(t, proto.Output.Success, "party %d faulted unexpectedly", i)
				outputs[i] = proto.Output.Success
			} else {
				rounds[i] = proto.Round
			}
		}
	}

	for i := 0; i < n; i++ {
		require.NotNil(t, outputs[i])
		require.Equal(t, threshold, outputs[i].Group.Threshold)
		require.True(t, outputs[0].Group.Y.Equal(outputs[i].Group.Y), "party %d disagrees on group public key", i)
	}
}
