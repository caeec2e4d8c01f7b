package collections

// HoleVecMap is a VecMap missing exactly one index: the owner's own
// position, the "hole". Logical indices run 0..len+1 with the hole skipped;
// the backing slice is the dense len-sized remainder and indices above the
// hole are shifted down by one internally.
type HoleVecMap[K any, V any] struct {
	hole TypedUsize[K]
	vec  []V
}

// NewHoleVecMap wraps a slice of len(total)-1 values around a hole index.
func NewHoleVecMap[K any, V any](hole TypedUsize[K], vec []V) *HoleVecMap[K, V] {
	return &HoleVecMap[K, V]{hole: hole, vec: vec}
}

// Hole returns the owner's own (excluded) index.
func (m *HoleVecMap[K, V]) Hole() TypedUsize[K] { return m.hole }

// Len returns the logical size, i.e. total shares including the hole.
func (m *HoleVecMap[K, V]) Len() int { return len(m.vec) + 1 }

func (m *HoleVecMap[K, V]) logicalToPhysical(index TypedUsize[K]) (int, error) {
	i := index.AsUsize()
	h := m.hole.AsUsize()
	if int(i) >= m.Len() {
		return 0, ErrOutOfBounds
	}
	if i == h {
		return 0, ErrIsHole
	}
	if i < h {
		return int(i), nil
	}
	return int(i) - 1, nil
}

// Get returns the value stored at the logical index.
func (m *HoleVecMap[K, V]) Get(index TypedUsize[K]) (V, error) {
	var zero V
	p, err := m.logicalToPhysical(index)
	if err != nil {
		return zero, err
	}
	return m.vec[p], nil
}

// Set overwrites the value at the logical index.
func (m *HoleVecMap[K, V]) Set(index TypedUsize[K], v V) error {
	p, err := m.logicalToPhysical(index)
	if err != nil {
		return err
	}
	m.vec[p] = v
	return nil
}

// Iter calls f for every (index, value) pair, skipping the hole, in
// ascending logical-index order.
func (m *HoleVecMap[K, V]) Iter(f func(TypedUsize[K], V) error) error {
	h := m.hole.AsUsize()
	for p, v := range m.vec {
		logical := uint32(p)
		if logical >= h {
			logical++
		}
		if err := f(NewTypedUsize[K](logical), v); err != nil {
			return err
		}
	}
	return nil
}

// PlugHole consumes the HoleVecMap and the value that belongs in the hole,
// producing a full VecMap in logical order.
func (m *HoleVecMap[K, V]) PlugHole(v V) *VecMap[K, V] {
	out := make([]V, m.Len())
	h := m.hole.AsUsize()
	out[h] = v
	for p, val := range m.vec {
		logical := uint32(p)
		if logical >= h {
			logical++
		}
		out[logical] = val
	}
	return &VecMap[K, V]{vec: out}
}
