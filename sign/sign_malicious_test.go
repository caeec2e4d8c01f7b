//go:build malicious

package sign_test

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/keygen"
	"github.com/axelarnetwork/tofn-sub000/malicious"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/sign"
	"github.com/axelarnetwork/tofn-sub000/wire"
)

// runKeygenForSign drives n honest keygen parties to completion, the same
// transport-simulation shape keygen's own tests use, and returns each
// party's resulting secret key share for use as sign's input.
func runKeygenForSign(t *testing.T, n, threshold int) []*keygen.SecretKeyShare {
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

	// round 1's messages come from New; rounds 2, 3 and 4 each take one
	// ExecuteNextRound, the last of which returns the output.
	outputs := make([]*keygen.SecretKeyShare, n)
	for round := 0; round < 3; round++ {
		for i := 0; i < n; i++ {
			bcast, ok := rounds[i].BcastOut()
			if ok {
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
			p2ps, ok := rounds[i].P2psOut()
			if ok {
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

// signCorruptFunc lets a test splice a tampered payload in place of an
// honest one as it crosses the simulated transport; returning nil leaves
// the message untouched. roundNumber matches sdk.Round.RoundNumber().
type signCorruptFunc func(roundNumber int, bcast bool, from, to int, payload []byte) []byte

// runSignRounds drives n signers for exactly iterations advance-then-execute
// cycles, applying corrupt (if non-nil) to every message as it is
// delivered, and returns whatever ProtocolOutput each signer reached (nil
// if it had not yet terminated when iterations ran out).
func runSignRounds(t *testing.T, shares []*keygen.SecretKeyShare, iterations int, corrupt signCorruptFunc) []*sdk.ProtocolOutput[sign.Signature, sign.SignerID, sign.SignerID] {
	t.Helper()
	n := len(shares)

	committee := make([]uint32, n)
	for i := range committee {
		committee[i] = uint32(i)
	}
	digest := sha256.Sum256([]byte("tofn-sub000 sign malicious test message"))
	msgHash := new(big.Int).SetBytes(digest[:])

	oneEach := make([]int, n)
	for i := range oneEach {
		oneEach[i] = 1
	}
	counts, err := sdk.NewPartyShareCounts[sign.SignerID](oneEach)
	require.NoError(t, err)

	rounds := make([]*sdk.Round[sign.Signature, sign.SignerID, sign.SignerID], n)
	for i := 0; i < n; i++ {
		r, err := sign.New(rand.Reader, msgHash, shares[i], committee,
			collections.NewTypedUsize[sign.SignerID](uint32(i)), counts)
		require.NoError(t, err)
		rounds[i] = r
	}

	results := make([]*sdk.ProtocolOutput[sign.Signature, sign.SignerID, sign.SignerID], n)

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
					require.NoError(t, rounds[j].MsgIn(collections.NewTypedUsize[sign.SignerID](uint32(i)), env))
				}
			}
			if p2ps, ok := rounds[i].P2psOut(); ok {
				expected := rounds[i].ExpectedMsgTypeOut()
				for j := 0; j < n; j++ {
					if j == i || results[j] != nil {
						continue
					}
					payload, err := p2ps.Get(collections.NewTypedUsize[sign.SignerID](uint32(j)))
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
					require.NoError(t, rounds[j].MsgIn(collections.NewTypedUsize[sign.SignerID](uint32(i)), env))
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

// TestSignBadMtaFault corrupts the round 2 blind-MtA ciphertext party 0
// sends to party 1 only; party 1 must fault party 0 at round 3's mta.Verify
// without needing a relayed accusation.
func TestSignBadMtaFault(t *testing.T) {
	const n = 3
	shares := runKeygenForSign(t, n, 1)

	corrupt := func(roundNumber int, bcast bool, from, to int, payload []byte) []byte {
		if roundNumber != 2 || bcast || from != 0 || to != 1 {
			return nil
		}
		tampered, err := malicious.SignBadMta(payload)
		require.NoError(t, err)
		return tampered
	}

	results := runSignRounds(t, shares, 2, corrupt)
	require.NotNil(t, results[1], "party 1 should have reached a terminal result")
	require.NotNil(t, results[1].Faulters, "party 1 should have faulted, not succeeded")
	fault, err := results[1].Faulters.Get(collections.NewTypedUsize[sign.SignerID](0))
	require.NoError(t, err)
	require.Equal(t, sdk.ProtocolFault, fault)
}

// TestSignBadDeltaIFault corrupts party 0's round 3 broadcast delta_i
// summand. Every party incorporates the same tampered broadcast into its
// own locally-computed nonce point, so the committee's R_i shares fail to
// sum to the generator in round 6 (a Type-5 abort); round 7's evidence
// opening then traces the mismatch back to party 0's claimed delta_0,
// which disagrees with the k_0/gamma_0 it opens, for every party alike.
func TestSignBadDeltaIFault(t *testing.T) {
	const n = 3
	shares := runKeygenForSign(t, n, 1)

	corrupt := func(roundNumber int, bcast bool, from, to int, payload []byte) []byte {
		if roundNumber != 3 || !bcast || from != 0 {
			return nil
		}
		tampered, err := malicious.SignBadDeltaI(payload)
		require.NoError(t, err)
		return tampered
	}

	results := runSignRounds(t, shares, 6, corrupt)
	for i := 0; i < n; i++ {
		require.NotNil(t, results[i], "party %d should have reached a terminal result", i)
		require.NotNil(t, results[i].Faulters, "party %d should have faulted, not succeeded", i)
		fault, err := results[i].Faulters.Get(collections.NewTypedUsize[sign.SignerID](0))
		require.NoError(t, err)
		require.Equal(t, sdk.ProtocolFault, fault)
	}
}

// TestSignBadSigmaIFault corrupts party 0's round 6 broadcast S_i opening
// after its Pedersen proof was already built against the honest value, so
// every party's round 7 verification (party 0's own included, via its
// corrupted self-delivered broadcast) fails and attributes the fault
// directly to party 0.
func TestSignBadSigmaIFault(t *testing.T) {
	const n = 3
	shares := runKeygenForSign(t, n, 1)

	corrupt := func(roundNumber int, bcast bool, from, to int, payload []byte) []byte {
		if roundNumber != 6 || !bcast || from != 0 {
			return nil
		}
		tampered, err := malicious.SignBadSigmaI(payload)
		require.NoError(t, err)
		return tampered
	}

	results := runSignRounds(t, shares, 6, corrupt)
	for i := 0; i < n; i++ {
		require.NotNil(t, results[i], "party %d should have reached a terminal result", i)
		require.NotNil(t, results[i].Faulters, "party %d should have faulted, not succeeded", i)
		fault, err := results[i].Faulters.Get(collections.NewTypedUsize[sign.SignerID](0))
		require.NoError(t, err)
		require.Equal(t, sdk.ProtocolFault, fault)
	}
}

// TestSignBadSIFault corrupts party 0's round 7 broadcast signature summand
// s_i. No round-7 proof catches this, so it survives until round 8's
// public s_i*R == m*R_i + r*S_i check, which every party (including party
// 0 itself, via its own corrupted self-delivered broadcast) evaluates
// identically.
func TestSignBadSIFault(t *testing.T) {
	const n = 3
	shares := runKeygenForSign(t, n, 1)

	corrupt := func(roundNumber int, bcast bool, from, to int, payload []byte) []byte {
		if roundNumber != 7 || !bcast || from != 0 {
			return nil
		}
		tampered, err := malicious.SignBadSI(payload)
		require.NoError(t, err)
		return tampered
	}

	results := runSignRounds(t, shares, 7, corrupt)
	for i := 0; i < n; i++ {
		require.NotNil(t, results[i], "party %d should have reached a terminal result", i)
		require.NotNil(t, results[i].Faulters, "party %d should have faulted, not succeeded", i)
		fault, err := results[i].Faulters.Get(collections.NewTypedUsize[sign.SignerID](0))
		require.NoError(t, err)
		require.Equal(t, sdk.ProtocolFault, fault)
	}
}

// TestSignCorruptedMessageFault mangles party 0's round 1 broadcast beyond
// CBOR decoding entirely, exercising the CorruptedMessage fault path
// distinct from a well-formed but cryptographically wrong message.
func TestSignCorruptedMessageFault(t *testing.T) {
	const n = 3
	shares := runKeygenForSign(t, n, 1)

	corrupt := func(roundNumber int, bcast bool, from, to int, payload []byte) []byte {
		if roundNumber != 1 || !bcast || from != 0 {
			return nil
		}
		return malicious.CorruptPayload(payload)
	}

	results := runSignRounds(t, shares, 1, corrupt)
	for i := 1; i < n; i++ {
		require.NotNil(t, results[i], "party %d should have reached a terminal result", i)
		require.NotNil(t, results[i].Faulters, "party %d should have faulted, not succeeded", i)
		fault, err := results[i].Faulters.Get(collections.NewTypedUsize[sign.SignerID](0))
		require.NoError(t, err)
		require.Equal(t, sdk.CorruptedMessage, fault)
	}
}
