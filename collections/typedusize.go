// Package collections implements the typed-index containers shared by the
// keygen and sign round implementations: VecMap, HoleVecMap, FillVecMap,
// FillHoleVecMap, P2ps, FillP2ps and Subset.
//
// Every container is generic over an index "kind" K, a phantom type
// parameter that keeps, say, a KeygenShareID from being used where a
// SignShareID is expected even though both are backed by the same integer.
package collections

import "fmt"

// TypedUsize is an index tagged with a phantom kind K so that indices
// belonging to different domains (keygen share ids, sign share ids, party
// ids, ...) cannot be mixed up without a compile error.
type TypedUsize[K any] struct {
	index uint32
}

// NewTypedUsize wraps a raw index under kind K.
func NewTypedUsize[K any](index uint32) TypedUsize[K] {
	return TypedUsize[K]{index: index}
}

// AsUsize returns the underlying raw index.
func (t TypedUsize[K]) AsUsize() uint32 { return t.index }

func (t TypedUsize[K]) String() string { return fmt.Sprintf("%d", t.index) }

// ErrOutOfBounds is a fatal error: the caller handed in an index outside a
// container's declared size. This can only happen from a programming bug,
// never from adversarial input, since indices are never taken verbatim off
// the wire without a bounds check first.
var ErrOutOfBounds = fmt.Errorf("collections: index out of bounds")

// ErrIsHole is returned when an operation addresses a HoleVecMap's own hole.
var ErrIsHole = fmt.Errorf("collections: index is the hole")

// ErrAlreadySet is returned by a write-once Set call on an occupied slot.
var ErrAlreadySet = fmt.Errorf("collections: slot already set")

// ErrNotFull is returned by UnwrapAll when some slot is still empty.
var ErrNotFull = fmt.Errorf("collections: container is not full")
