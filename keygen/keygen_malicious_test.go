//go:build malicious

package keygen_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/keygen"
	"github.com/axelarnetwork/tofn-sub000/malicious"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/wire"
)

// corruptFunc lets a test splice a tampered payload in place of an honest
// one as it crosses the simulated transport; returning nil leaves the
// message untouched. roundNumber matches sdk.Round.RoundNumber(): the
// round whose outgoing messages are being delivered.
type corruptFunc func(roundNumber int, bcast bool, from, to int, payload []byte) []byte

// runKeygenRounds drives n keygen parties for exactly iterations
// advance-then-execute cycles, applying corrupt (if non-nil) to every
// message as it is delivered. A party that finishes early (faulted or
// succeeded) simply stops sending further messages; this mirrors a real
// cheating party dropping out once unmasked rather than requiring every
// other party to also reach a terminal state before the test can inspect
// results.
func runKeygenRounds(t *testing.T, n, threshold, iterations int, corrupt corruptFunc) []*sdk.ProtocolOutput[keygen.SecretKeyShare, keygen.ShareID, keygen.PartyID] {
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

	results := make([]*sdk.ProtocolOutput[keygen.SecretKeyShare, keygen.ShareID, keygen.PartyID], n)

	for iter := 0; iter < iterations; iter++ {
		for i := 0; i < n; i++ {
			if results[i] != nil {
				continue
			}
			roundNum := rounds[i].RoundNumber()
			if bcast, ok := rounds[i].BcastOut(); ok {
				expected := rounds[i].ExpectedMsgTypeOut()
				for j := 0; j < n; j++ {
					if results[j] != nil {
						continue
					}
					payload := bcast
					if corrupt != nil {
						if tampered := corrupt(roundNum, true, i, j, payload); tampered != nil {
							payload = tampered
						}
					}
					env := wire.Envelope{
						MsgType:          wire.MsgType{Kind: wire.Bcast},
						From:             uint32(i),
						ExpectedMsgTypes: expected,
						Payload:          payload,
					}
					require.NoError(t, rounds[j].MsgIn(collections.NewTypedUsize[keygen.PartyID](uint32(i)), env))
				}
			}
			if p2ps, ok := rounds[i].P2psOut(); ok {
				expected := rounds[i].ExpectedMsgTypeOut()
				for j := 0; j < n; j++ {
					if j == i || results[j] != nil {
						continue
					}
					payload, err := p2ps.Get(collections.NewTypedUsize[keygen.ShareID](uint32(j)))
					require.NoError(t, err)
					if corrupt != nil {
						if tampered := corrupt(roundNum, false, i, j, payload); tampered != nil {
							payload = tampered
						}
					}
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

		for i := 0; i < n; i++ {
			if results[i] != nil {
				continue
			}
			proto, err := rounds[i].ExecuteNextRound()
			require.NoError(t, err)
			if proto.IsDone() {
				results[i] = proto.Output
			} else {
				rounds[i] = proto.Round
			}
		}
	}

	return results
}

// TestKeygenBadEKProofFault corrupts party 0's round 1 Paillier-key proof;
// every honest peer must fault party 0 at round 2's verification step.
func TestKeygenBadEKProofFault(t *testing.T) {
	const n = 3
	corrupt := func(roundNumber int, bcast bool, from, to int, payload []byte) []byte {
		if roundNumber != 1 || !bcast || from != 0 {
			return nil
		}
		tampered, err := malicious.KeygenBadEKProof(payload)
		require.NoError(t, err)
		return tampered
	}

	results := runKeygenRounds(t, n, 1, 1, corrupt)
	for i := 1; i < n; i++ {
		require.NotNil(t, results[i], "party %d should have reached a terminal result", i)
		require.NotNil(t, results[i].Faulters, "party %d should have faulted, not succeeded", i)
		fault, err := results[i].Faulters.Get(collections.NewTypedUsize[keygen.PartyID](0))
		require.NoError(t, err)
		require.Equal(t, sdk.ProtocolFault, fault)
	}
}

// TestKeygenBadShareFault corrupts the VSS share party 0 sends to party 1
// only; party 1 must fault party 0 at round 3, identifying the bad share
// from its own decryption result without needing a relayed accusation.
func TestKeygenBadShareFault(t *testing.T) {
	const n = 3
	corrupt := func(roundNumber int, bcast bool, from, to int, payload []byte) []byte {
		if roundNumber != 2 || bcast || from != 0 || to != 1 {
			return nil
		}
		tampered, err := malicious.KeygenBadShare(payload)
		require.NoError(t, err)
		return tampered
	}

	results := runKeygenRounds(t, n, 1, 2, corrupt)

	require.NotNil(t, results[1], "party 1 should have reached a terminal result")
	require.NotNil(t, results[1].Faulters, "party 1 should have faulted, not succeeded")
	fault, err := results[1].Faulters.Get(collections.NewTypedUsize[keygen.PartyID](0))
	require.NoError(t, err)
	require.Equal(t, sdk.ProtocolFault, fault)
}

// TestKeygenCorruptedMessageFault mangles party 0's round 1 broadcast
// beyond CBOR decoding entirely, exercising the CorruptedMessage fault
// path distinct from a well-formed but cryptographically wrong message.
func TestKeygenCorruptedMessageFault(t *testing.T) {
	const n = 3
	corrupt := func(roundNumber int, bcast bool, from, to int, payload []byte) []byte {
		if roundNumber != 1 || !bcast || from != 0 {
			return nil
		}
		return malicious.CorruptPayload(payload)
	}

	results := runKeygenRounds(t, n, 1, 1, corrupt)
	for i := 1; i < n; i++ {
		require.NotNil(t, results[i], "party %d should have reached a terminal result", i)
		require.NotNil(t, results[i].Faulters, "party %d should have faulted, not succeeded", i)
		fault, err := results[i].Faulters.Get(collections.NewTypedUsize[keygen.PartyID](0))
		require.NoError(t, err)
		require.Equal(t, sdk.CorruptedMessage, fault)
	}
}
