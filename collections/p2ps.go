package collections

// P2ps holds a full all-pairs i≠j message set: for every share i, a
// HoleVecMap of the messages i sent to every j≠i.
type P2ps[K any, V any] struct {
	vec *VecMap[K, *HoleVecMap[K, V]]
}

// NewP2ps wraps a VecMap of per-sender HoleVecMaps.
func NewP2ps[K any, V any](vec *VecMap[K, *HoleVecMap[K, V]]) *P2ps[K, V] {
	return &P2ps[K, V]{vec: vec}
}

// Len returns the number of shares.
func (p *P2ps[K, V]) Len() int { return p.vec.Len() }

// Get returns the message sent from `from` to `to`.
func (p *P2ps[K, V]) Get(from, to TypedUsize[K]) (V, error) {
	var zero V
	hv, err := p.vec.Get(from)
	if err != nil {
		return zero, err
	}
	return hv.Get(to)
}

// ToMe returns, for a fixed recipient `me`, the message from every sender
// != me, in ascending sender order, as a dense VecMap of Len()-1 entries.
// The sender ids are not kept: entry i is from sender i when i < me and from
// sender i+1 otherwise.
func (p *P2ps[K, V]) ToMe(me TypedUsize[K]) (*VecMap[K, V], error) {
	out := make([]V, 0, p.vec.Len()-1)
	indices := make([]TypedUsize[K], 0, p.vec.Len()-1)
	err := p.vec.Iter(func(from TypedUsize[K], hv *HoleVecMap[K, V]) error {
		if from.AsUsize() == me.AsUsize() {
			return nil
		}
		v, err := hv.Get(me)
		if err != nil {
			return err
		}
		indices = append(indices, from)
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	dense := make([]V, len(out))
	copy(dense, out)
	return &VecMap[K, V]{vec: dense}, nil
}

// FillP2ps is the write-once counterpart used while a round's p2p inbox is
// still being assembled: a single FillHoleVecMap of the messages addressed to
// the local share (the "to me" direction), keyed by sender share id, with the
// local share's own id as the hole.
type FillP2ps[K any, V any] struct {
	inbox *FillHoleVecMap[K, V]
}

// NewFillP2ps allocates the inbox for `me` among `size` total shares.
func NewFillP2ps[K any, V any](me TypedUsize[K], size int) *FillP2ps[K, V] {
	return &FillP2ps[K, V]{inbox: NewFillHoleVecMap[K, V](me, size)}
}

// Set records the message received from `from`.
func (p *FillP2ps[K, V]) Set(from TypedUsize[K], v V) error {
	return p.inbox.Set(from, v)
}

// IsFull reports whether a message has arrived from every peer.
func (p *FillP2ps[K, V]) IsFull() bool { return p.inbox.IsFull() }

// IsNone reports whether no message has yet arrived from `from`.
func (p *FillP2ps[K, V]) IsNone(from TypedUsize[K]) (bool, error) {
	if from.AsUsize() == p.inbox.Hole().AsUsize() {
		return false, ErrIsHole
	}
	_, err := p.inbox.Get(from)
	if err == ErrNotFull {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// UnwrapAllMap requires IsFull and returns the dense map of sender -> value.
func (p *FillP2ps[K, V]) UnwrapAllMap() (*HoleVecMap[K, V], error) {
	return p.inbox.UnwrapAll()
}

// Snapshot returns the current sender -> value map without requiring every
// peer to have sent yet.
func (p *FillP2ps[K, V]) Snapshot() *HoleVecMap[K, V] {
	return p.inbox.Snapshot()
}
