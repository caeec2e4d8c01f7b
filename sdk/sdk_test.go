package sdk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/wire"
)

type shareKind struct{}
type partyKind struct{}

// echoExecuter finishes the protocol immediately, returning the bcast it
// received from share 0 as its output - enough to exercise the Round plumbing without a
// real keygen/sign round.
type echoExecuter struct{}

func (echoExecuter) Execute(myShareID collections.TypedUsize[shareKind], bcastsIn *collections.VecMap[shareKind, []byte], p2psIn *collections.HoleVecMap[shareKind, []byte]) (*RoundResult[[]byte, shareKind], error) {
	out := bcastsIn.AsSlice()[0]
	return &RoundResult[[]byte, shareKind]{Output: &out}, nil
}

func newTestRound(t *testing.T) *Round[[]byte, shareKind, partyKind] {
	counts, err := NewPartyShareCounts[partyKind]([]int{1, 1, 1})
	require.NoError(t, err)

	r, err := NewRound[[]byte, shareKind, partyKind](
		echoExecuter{},
		collections.NewTypedUsize[shareKind](0),
		collections.NewTypedUsize[partyKind](0),
		counts,
		1,
		[]byte("hello"),
		nil,
	)
	require.NoError(t, err)
	return r
}

func TestRoundCollectsBcastsAndAdvances(t *testing.T) {
	r := newTestRound(t)
	require.True(t, r.ExpectingMoreMsgsThisRound())

	for i := uint32(1); i < 3; i++ {
		env := wire.Envelope{
			MsgType:          wire.MsgType{Kind: wire.Bcast},
			From:             i,
			ExpectedMsgTypes: wire.BcastOnly,
			Payload:          []byte("peer"),
		}
		require.NoError(t, r.MsgIn(collections.NewTypedUsize[partyKind](i), env))
	}
	// record my own bcast too, as a real driver would feed it back to itself.
	require.NoError(t, r.MsgIn(collections.NewTypedUsize[partyKind](0), wire.Envelope{
		MsgType:          wire.MsgType{Kind: wire.Bcast},
		From:             0,
		ExpectedMsgTypes: wire.BcastOnly,
		Payload:          []byte("hello"),
	}))

	require.False(t, r.ExpectingMoreMsgsThisRound())

	protocol, err := r.ExecuteNextRound()
	require.NoError(t, err)
	require.True(t, protocol.IsDone())
	require.Equal(t, []byte("hello"), *protocol.Output.Success)
}

func TestMsgInFlagsShareOwnerMismatch(t *testing.T) {
	r := newTestRound(t)

	env := wire.Envelope{
		MsgType:          wire.MsgType{Kind: wire.Bcast},
		From:             1, // belongs to party 1
		ExpectedMsgTypes: wire.BcastOnly,
		Payload:          []byte("peer"),
	}
	require.NoError(t, r.MsgIn(collections.NewTypedUsize[partyKind](2), env))

	require.NoError(t, r.MsgIn(collections.NewTypedUsize[partyKind](0), wire.Envelope{
		MsgType: wire.MsgType{Kind: wire.Bcast}, From: 0, ExpectedMsgTypes: wire.BcastOnly, Payload: []byte("hello"),
	}))
	require.NoError(t, r.MsgIn(collections.NewTypedUsize[partyKind](1), wire.Envelope{
		MsgType: wire.MsgType{Kind: wire.Bcast}, From: 1, ExpectedMsgTypes: wire.BcastOnly, Payload: []byte("peer"),
	}))

	protocol, err := r.ExecuteNextRound()
	require.NoError(t, err)
	require.True(t, protocol.IsDone())
	require.Nil(t, protocol.Output.Success)
	isNone, err := protocol.Output.Faulters.IsNone(collections.NewTypedUsize[partyKind](2))
	require.NoError(t, err)
	require.False(t, isNone)
}

func TestExecuteNextRoundFlagsMissingMessage(t *testing.T) {
	r := newTestRound(t)

	// party 2 never shows up at all; party 1 delivers on time.
	require.NoError(t, r.MsgIn(collections.NewTypedUsize[partyKind](0), wire.Envelope{
		MsgType: wire.MsgType{Kind: wire.Bcast}, From: 0, ExpectedMsgTypes: wire.BcastOnly, Payload: []byte("hello"),
	}))
	require.NoError(t, r.MsgIn(collections.NewTypedUsize[partyKind](1), wire.Envelope{
		MsgType: wire.MsgType{Kind: wire.Bcast}, From: 1, ExpectedMsgTypes: wire.BcastOnly, Payload: []byte("peer"),
	}))
	require.True(t, r.ExpectingMoreMsgsThisRound())

	// a caller declaring a timeout forces the round to finish anyway.
	protocol, err := r.ExecuteNextRound()
	require.NoError(t, err)
	require.True(t, protocol.IsDone())
	require.Nil(t, protocol.Output.Success)

	fault, err := protocol.Output.Faulters.Get(collections.NewTypedUsize[partyKind](2))
	require.NoError(t, err)
	require.Equal(t, MissingMessage, fault)

	isNone, err := protocol.Output.Faulters.IsNone(collections.NewTypedUsize[partyKind](0))
	require.NoError(t, err)
	require.True(t, isNone, "party 0 delivered on time and should not be faulted")
	isNone, err = protocol.Output.Faulters.IsNone(collections.NewTypedUsize[partyKind](1))
	require.NoError(t, err)
	require.True(t, isNone, "party 1 delivered on time and should not be faulted")
}

func TestShareToPartyID(t *testing.T) {
	counts, err := NewPartyShareCounts[partyKind]([]int{2, 1})
	require.NoError(t, err)
	require.Equal(t, 3, counts.TotalShareCount())

	id, err := ShareToPartyID[shareKind](counts, collections.NewTypedUsize[shareKind](2))
	require.NoError(t, err)
	require.Equal(t, uint32(1), id.AsUsize())

	_, err = ShareToPartyID[shareKind](counts, collections.NewTypedUsize[shareKind](5))
	require.Error(t, err)
}
