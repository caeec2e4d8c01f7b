package sdk

import (
	"errors"

	"github.com/axelarnetwork/tofn-sub000/collections"
)

// MaxPartyShareCount bounds how many key shares a single party may hold.
const MaxPartyShareCount = 1 << 9

// MaxTotalShareCount bounds the sum of all parties' share counts.
const MaxTotalShareCount = 1 << 12

var ErrPartyShareCountExceeded = errors.New("sdk: a party's share count exceeds the maximum")
var ErrTotalShareCountExceeded = errors.New("sdk: total share count exceeds the maximum")

// PartyShareCounts records how many key shares each party (identified by
// TypedUsize[P]) holds, and resolves a global share index (TypedUsize[K])
// back to its owning party. A party with more than one share behaves, from
// the protocol's point of view, as that many independent co-located
// participants.
type PartyShareCounts[P any] struct {
	counts *collections.VecMap[P, int]
	total  int
}

// NewPartyShareCounts validates and wraps a per-party share count vector.
func NewPartyShareCounts[P any](counts []int) (*PartyShareCounts[P], error) {
	total := 0
	for _, c := range counts {
		if c > MaxPartyShareCount {
			return nil, ErrPartyShareCountExceeded
		}
		total += c
	}
	if total > MaxTotalShareCount {
		return nil, ErrTotalShareCountExceeded
	}
	return &PartyShareCounts[P]{counts: collections.NewVecMap[P, int](counts), total: total}, nil
}

// TotalShareCount returns the sum of every party's share count.
func (p *PartyShareCounts[P]) TotalShareCount() int { return p.total }

// PartyCount returns the number of parties.
func (p *PartyShareCounts[P]) PartyCount() int { return p.counts.Len() }

// PartyShareCount returns how many shares the given party holds.
func (p *PartyShareCounts[P]) PartyShareCount(id collections.TypedUsize[P]) (int, error) {
	return p.counts.Get(id)
}

// ShareToPartyIDNonFatal resolves shareID to its owning party, returning
// false (not an error) if shareID is out of range - the caller treats an
// out-of-range index from the wire as a corrupted message, not a crash.
func ShareToPartyIDNonFatal[K any, P any](p *PartyShareCounts[P], shareID collections.TypedUsize[K]) (collections.TypedUsize[P], bool) {
	sum := 0
	var found collections.TypedUsize[P]
	ok := false
	_ = p.counts.Iter(func(partyID collections.TypedUsize[P], count int) error {
		if ok {
			return nil
		}
		sum += count
		if int(shareID.AsUsize()) < sum {
			found = partyID
			ok = true
		}
		return nil
	})
	return found, ok
}

// ShareToPartyID is ShareToPartyIDNonFatal, returning ErrOutOfBounds on
// failure - used where an out-of-range share id can only result from a
// programming bug rather than adversarial input.
func ShareToPartyID[K any, P any](p *PartyShareCounts[P], shareID collections.TypedUsize[K]) (collections.TypedUsize[P], error) {
	id, ok := ShareToPartyIDNonFatal[K](p, shareID)
	if !ok {
		return collections.TypedUsize[P]{}, collections.ErrOutOfBounds
	}
	return id, nil
}
