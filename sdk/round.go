// Package sdk is the transport-agnostic round driver shared by keygen and
// sign: it buffers each round's outgoing broadcast/point-to-point messages,
// validates and stores inbound ones, tracks which peers have misbehaved,
// and advances to the next round (or the final output) once every expected
// message has arrived. Callers push bytes in via MsgIn and pull bytes out
// via BcastOut/P2psOut; nothing here parses a message's payload - that's
// the job of the Executer a concrete round supplies.
package sdk

import (
	"errors"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/wire"
)

// ErrFatal marks a failure that cannot be attributed to a single faulty
// peer and must abort the whole protocol run: a local invariant violated,
// an index out of bounds, a malformed local configuration.
var ErrFatal = errors.New("sdk: fatal protocol error")

// RoundResult is what a round's Execute returns: either the materials for
// the next round (outgoing messages plus the Executer that will process
// the next round's inbound messages) or, on the last round, the finished
// output.
type RoundResult[F any, K any] struct {
	BcastOut []byte                             // nil if this round sends no broadcast
	P2psOut  *collections.HoleVecMap[K, []byte] // nil if this round sends no p2p
	Next     Executer[F, K]                     // nil iff Output or Faulters is set
	Output   *F                                 // non-nil only on the final round
	// Faulters reports share-indexed protocol faults the round logic itself
	// detected (an invalid proof, a mismatched reveal) - distinct from the
	// MsgIn-level taxonomy the Round driver tracks on its own. Non-nil and
	// non-empty terminates the protocol; the Round driver translates each
	// share index to its owning party before handing it to the caller.
	Faulters *collections.FillVecMap[K, Fault]
}

// Executer is implemented by each concrete round (keygen round 1, sign
// round 3, ...). It consumes the messages the Round driver collected for
// the round just finished and produces either the next round or the final
// output.
type Executer[F any, K any] interface {
	Execute(myShareID collections.TypedUsize[K], bcastsIn *collections.VecMap[K, []byte], p2psIn *collections.HoleVecMap[K, []byte]) (*RoundResult[F, K], error)
}

// Round drives one round of the protocol for a single local share: it owns
// this round's outgoing messages and accumulates incoming ones until every
// expected message has arrived, at which point ExecuteNextRound hands
// control to the next Executer.
type Round[F any, K any, P any] struct {
	myShareID        collections.TypedUsize[K]
	myPartyID        collections.TypedUsize[P]
	partyShareCounts *PartyShareCounts[P]
	roundNumber      int
	executer         Executer[F, K]

	bcastOut []byte
	p2psOut  *collections.HoleVecMap[K, []byte]

	bcastsIn         *collections.FillVecMap[K, []byte]
	p2psIn           *collections.FillP2ps[K, []byte]
	expectedMsgTypes *collections.FillVecMap[K, wire.ExpectedMsgType]

	msgInFaulters *collections.FillVecMap[P, Fault]
}

// NewRound constructs the Round that will collect this round's inbound
// messages, given the outgoing messages the just-finished round (or
// keygen/sign initialization) produced. At least one of bcastOut, p2psOut
// must be non-nil: a round that sends nothing has nothing left to wait for
// and should instead return its RoundResult.Output directly.
func NewRound[F any, K any, P any](
	executer Executer[F, K],
	myShareID collections.TypedUsize[K],
	myPartyID collections.TypedUsize[P],
	partyShareCounts *PartyShareCounts[P],
	roundNumber int,
	bcastOut []byte,
	p2psOut *collections.HoleVecMap[K, []byte],
) (*Round[F, K, P], error) {
	if bcastOut == nil && p2psOut == nil {
		return nil, ErrFatal
	}
	totalShareCount := partyShareCounts.TotalShareCount()

	fillP2ps := collections.NewFillP2ps[K, []byte](myShareID, totalShareCount)

	return &Round[F, K, P]{
		myShareID:        myShareID,
		myPartyID:        myPartyID,
		partyShareCounts: partyShareCounts,
		roundNumber:      roundNumber,
		executer:         executer,
		bcastOut:         bcastOut,
		p2psOut:          p2psOut,
		bcastsIn:         collections.NewFillVecMap[K, []byte](totalShareCount),
		p2psIn:           fillP2ps,
		expectedMsgTypes: collections.NewFillVecMap[K, wire.ExpectedMsgType](totalShareCount),
		msgInFaulters:    collections.NewFillVecMap[P, Fault](partyShareCounts.PartyCount()),
	}, nil
}

// MyShareID returns this party's share index.
func (r *Round[F, K, P]) MyShareID() collections.TypedUsize[K] { return r.myShareID }

// MyPartyID returns this party's index.
func (r *Round[F, K, P]) MyPartyID() collections.TypedUsize[P] { return r.myPartyID }

// RoundNumber returns the 1-based round number, for logging and for
// matching test-only "which round did the fault occur in" assertions.
func (r *Round[F, K, P]) RoundNumber() int { return r.roundNumber }

// BcastOut returns this round's outgoing broadcast payload, if any.
func (r *Round[F, K, P]) BcastOut() ([]byte, bool) {
	if r.bcastOut == nil {
		return nil, false
	}
	return r.bcastOut, true
}

// P2psOut returns this round's outgoing point-to-point payloads, if any.
func (r *Round[F, K, P]) P2psOut() (*collections.HoleVecMap[K, []byte], bool) {
	if r.p2psOut == nil {
		return nil, false
	}
	return r.p2psOut, true
}

// ExpectedMsgTypeOut is the shape this party declares on every envelope it
// sends this round, derived from whether it produced a broadcast and/or
// p2p payloads - callers use this when calling wire.Wrap for each outgoing
// message.
func (r *Round[F, K, P]) ExpectedMsgTypeOut() wire.ExpectedMsgType {
	switch {
	case r.bcastOut != nil && r.p2psOut != nil:
		return wire.BcastAndP2p
	case r.bcastOut != nil:
		return wire.BcastOnly
	default:
		return wire.P2pOnly
	}
}

// MsgIn records an inbound wire envelope, authenticated as having come
// from transport-level peer `from`. A malformed or inconsistent envelope
// is scored as a CorruptedMessage fault against `from` rather than
// returned as an error: only an out-of-bounds `from` (which implies a bug
// in the transport layer, since peer identity is assumed authenticated) is
// fatal.
func (r *Round[F, K, P]) MsgIn(from collections.TypedUsize[P], env wire.Envelope) error {
	msgShareID := collections.NewTypedUsize[K](env.From)

	ownerPartyID, err := ShareToPartyID[K](r.partyShareCounts, msgShareID)
	if err != nil || ownerPartyID.AsUsize() != from.AsUsize() {
		return setFaultIgnoreDup(r.msgInFaulters, from)
	}

	if expected, err := r.expectedMsgTypes.Get(msgShareID); err != nil {
		if err := r.expectedMsgTypes.Set(msgShareID, env.ExpectedMsgTypes); err != nil {
			return err
		}
	} else if expected != env.ExpectedMsgTypes {
		return setFaultIgnoreDup(r.msgInFaulters, from)
	}

	if env.MsgType.Kind == wire.Bcast {
		if isNone, _ := r.bcastsIn.IsNone(msgShareID); !isNone {
			return setFaultIgnoreDup(r.msgInFaulters, from)
		}
		if err := r.bcastsIn.Set(msgShareID, env.Payload); err != nil {
			return setFaultIgnoreDup(r.msgInFaulters, from)
		}
		return nil
	}

	isNone, err := r.p2psIn.IsNone(msgShareID)
	if err != nil {
		// the sender addressed this p2p message to itself: always a fault.
		return setFaultIgnoreDup(r.msgInFaulters, from)
	}
	if !isNone {
		return setFaultIgnoreDup(r.msgInFaulters, from)
	}
	if err := r.p2psIn.Set(msgShareID, env.Payload); err != nil {
		return setFaultIgnoreDup(r.msgInFaulters, from)
	}
	return nil
}

func setFaultIgnoreDup[P any](faulters *collections.FillVecMap[P, Fault], from collections.TypedUsize[P]) error {
	if err := faulters.Set(from, CorruptedMessage); err != nil && err != collections.ErrAlreadySet {
		return err
	}
	return nil
}

// ExpectingMoreMsgsThisRound reports whether this round is still waiting
// on at least one expected message: for each share, once we've learned
// what it declared it will send (bcast, p2p, or both), we check that the
// corresponding inboxes have actually received it.
func (r *Round[F, K, P]) ExpectingMoreMsgsThisRound() bool {
	total := r.expectedMsgTypes.Size()
	for i := uint32(0); i < uint32(total); i++ {
		idx := collections.NewTypedUsize[K](i)
		expected, err := r.expectedMsgTypes.Get(idx)
		if err != nil {
			return true // this share hasn't sent us anything yet this round
		}
		if expected == wire.BcastOnly || expected == wire.BcastAndP2p {
			if isNone, _ := r.bcastsIn.IsNone(idx); isNone {
				return true
			}
		}
		if expected == wire.P2pOnly || expected == wire.BcastAndP2p {
			if idx.AsUsize() != r.myShareID.AsUsize() {
				if isNone, _ := r.p2psIn.IsNone(idx); isNone {
					return true
				}
			}
		}
	}
	return false
}

// ExecuteNextRound finalizes this round: if any peer was faulted during
// MsgIn, the protocol ends in failure immediately without invoking the
// round logic. A caller may also force this call before every expected
// message has arrived - to declare a timeout, say - in which case every
// share still owed is scored MissingMessage rather than handed to the
// round logic at all, which only knows how to reason about messages it
// actually received. Otherwise the collected messages are handed to the
// Executer, producing either the next Round or the finished output.
func (r *Round[F, K, P]) ExecuteNextRound() (*Protocol[F, K, P], error) {
	if !r.msgInFaulters.IsEmpty() {
		return &Protocol[F, K, P]{Output: &ProtocolOutput[F, K, P]{Faulters: r.msgInFaulters}}, nil
	}

	if missing := r.missingMsgFaulters(); !missing.IsEmpty() {
		partyFaulters, err := r.sharesToPartyFaulters(missing)
		if err != nil {
			return nil, err
		}
		return &Protocol[F, K, P]{Output: &ProtocolOutput[F, K, P]{Faulters: partyFaulters}}, nil
	}

	// Snapshot rather than UnwrapAll: a round that is, say, p2p-only for
	// every peer never fills bcastsIn, and vice versa; the MissingMessage
	// check above already confirmed everything actually expected has
	// arrived.
	bcastsIn := r.bcastsIn.Snapshot()
	p2psIn := r.p2psIn.Snapshot()

	result, err := r.executer.Execute(r.myShareID, bcastsIn, p2psIn)
	if err != nil {
		return nil, err
	}

	if result.Faulters != nil && !result.Faulters.IsEmpty() {
		partyFaulters, err := r.sharesToPartyFaulters(result.Faulters)
		if err != nil {
			return nil, err
		}
		return &Protocol[F, K, P]{Output: &ProtocolOutput[F, K, P]{Faulters: partyFaulters}}, nil
	}

	if result.Output != nil {
		return &Protocol[F, K, P]{Output: &ProtocolOutput[F, K, P]{Success: result.Output}}, nil
	}

	next, err := NewRound[F, K, P](result.Next, r.myShareID, r.myPartyID, r.partyShareCounts, r.roundNumber+1, result.BcastOut, result.P2psOut)
	if err != nil {
		return nil, err
	}
	return &Protocol[F, K, P]{Round: next}, nil
}

// missingMsgFaulters mirrors ExpectingMoreMsgsThisRound, but rather than
// stopping at the first outstanding share it scores every share still
// owing a declared message as MissingMessage, for a caller that forces
// ExecuteNextRound before this round's inboxes are actually full.
func (r *Round[F, K, P]) missingMsgFaulters() *collections.FillVecMap[K, Fault] {
	faulters := collections.NewFillVecMap[K, Fault](r.expectedMsgTypes.Size())
	total := r.expectedMsgTypes.Size()
	for i := uint32(0); i < uint32(total); i++ {
		idx := collections.NewTypedUsize[K](i)
		expected, err := r.expectedMsgTypes.Get(idx)
		if err != nil {
			_ = faulters.Set(idx, MissingMessage) // never sent anything this round
			continue
		}
		missing := false
		if expected == wire.BcastOnly || expected == wire.BcastAndP2p {
			if isNone, _ := r.bcastsIn.IsNone(idx); isNone {
				missing = true
			}
		}
		if expected == wire.P2pOnly || expected == wire.BcastAndP2p {
			if idx.AsUsize() != r.myShareID.AsUsize() {
				if isNone, _ := r.p2psIn.IsNone(idx); isNone {
					missing = true
				}
			}
		}
		if missing {
			_ = faulters.Set(idx, MissingMessage)
		}
	}
	return faulters
}

// sharesToPartyFaulters translates a round logic's share-indexed fault map
// into the party-indexed map the public API speaks.
func (r *Round[F, K, P]) sharesToPartyFaulters(shareFaulters *collections.FillVecMap[K, Fault]) (*collections.FillVecMap[P, Fault], error) {
	partyFaulters := collections.NewFillVecMap[P, Fault](r.partyShareCounts.PartyCount())
	total := shareFaulters.Size()
	for i := uint32(0); i < uint32(total); i++ {
		idx := collections.NewTypedUsize[K](i)
		isNone, err := shareFaulters.IsNone(idx)
		if err != nil {
			return nil, err
		}
		if isNone {
			continue
		}
		fault, err := shareFaulters.Get(idx)
		if err != nil {
			return nil, err
		}
		partyID, err := ShareToPartyID[K](r.partyShareCounts, idx)
		if err != nil {
			return nil, err
		}
		if err := partyFaulters.Set(partyID, fault); err != nil && err != collections.ErrAlreadySet {
			return nil, err
		}
	}
	return partyFaulters, nil
}

// Protocol is the result of advancing a Round: either NotDone (another
// Round awaits more messages) or Done (the run finished, successfully or
// with blame assigned).
type Protocol[F any, K any, P any] struct {
	Round  *Round[F, K, P]
	Output *ProtocolOutput[F, K, P]
}

// IsDone reports whether the protocol has finished.
func (p *Protocol[F, K, P]) IsDone() bool { return p.Output != nil }

// ProtocolOutput is the terminal state of a protocol run: exactly one of
// Success or Faulters is set. Faulters is sparse - only parties actually
// blamed have an entry; query it with IsNone/Get rather than assuming every
// party appears.
type ProtocolOutput[F any, K any, P any] struct {
	Success  *F
	Faulters *collections.FillVecMap[P, Fault]
}
