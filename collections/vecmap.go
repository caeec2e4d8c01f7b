package collections

// VecMap is a fixed-size, densely-indexed map keyed by TypedUsize[K]. The
// invariant is that valid keys are exactly 0..len(vec).
type VecMap[K any, V any] struct {
	vec []V
}

// NewVecMap builds a VecMap from a slice already in index order.
func NewVecMap[K any, V any](vec []V) *VecMap[K, V] {
	return &VecMap[K, V]{vec: vec}
}

// Len returns the number of entries.
func (m *VecMap[K, V]) Len() int { return len(m.vec) }

// Get returns the value at index, or ErrOutOfBounds.
func (m *VecMap[K, V]) Get(index TypedUsize[K]) (V, error) {
	var zero V
	if int(index.AsUsize()) >= len(m.vec) {
		return zero, ErrOutOfBounds
	}
	return m.vec[index.AsUsize()], nil
}

// GetMut returns a pointer to the slot at index for in-place mutation.
func (m *VecMap[K, V]) GetMut(index TypedUsize[K]) (*V, error) {
	if int(index.AsUsize()) >= len(m.vec) {
		return nil, ErrOutOfBounds
	}
	return &m.vec[index.AsUsize()], nil
}

// Set overwrites the value at index.
func (m *VecMap[K, V]) Set(index TypedUsize[K], v V) error {
	if int(index.AsUsize()) >= len(m.vec) {
		return ErrOutOfBounds
	}
	m.vec[index.AsUsize()] = v
	return nil
}

// Iter calls f for every (index, value) pair in order.
func (m *VecMap[K, V]) Iter(f func(TypedUsize[K], V) error) error {
	for i, v := range m.vec {
		if err := f(NewTypedUsize[K](uint32(i)), v); err != nil {
			return err
		}
	}
	return nil
}

// AsSlice exposes the backing slice, in index order, for callers that just
// want to range without an index.
func (m *VecMap[K, V]) AsSlice() []V { return m.vec }

// MapValues builds a new VecMap by applying f to every value, preserving
// index order.
func MapValues[K any, V any, W any](m *VecMap[K, V], f func(V) W) *VecMap[K, W] {
	out := make([]W, m.Len())
	for i, v := range m.vec {
		out[i] = f(v)
	}
	return &VecMap[K, W]{vec: out}
}

// Zip2 pairs up two same-length VecMaps of the same kind K. Zipping
// containers of different kinds doesn't type-check since the K type
// parameters would differ.
func Zip2[K any, A any, B any](a *VecMap[K, A], b *VecMap[K, B]) (*VecMap[K, struct {
	A A
	B B
}], error) {
	if a.Len() != b.Len() {
		return nil, ErrOutOfBounds
	}
	type pair = struct {
		A A
		B B
	}
	out := make([]pair, a.Len())
	for i := range a.vec {
		out[i] = pair{A: a.vec[i], B: b.vec[i]}
	}
	return &VecMap[K, pair]{vec: out}, nil
}
