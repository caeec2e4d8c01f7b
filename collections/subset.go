package collections

// Subset is a set of indices drawn from 0..maxSize, backed by a
// FillVecMap[K, struct{}] the way the original implements it: membership is
// just "is this slot filled", with the FillVecMap's someCount giving member
// count for free.
type Subset[K any] struct {
	members *FillVecMap[K, struct{}]
}

// NewSubset allocates an empty subset of a universe of size maxSize.
func NewSubset[K any](maxSize int) *Subset[K] {
	return &Subset[K]{members: NewFillVecMap[K, struct{}](maxSize)}
}

// MaxSize returns the size of the universe this subset is drawn from.
func (s *Subset[K]) MaxSize() int { return s.members.Size() }

// MemberCount returns the number of indices currently in the subset.
func (s *Subset[K]) MemberCount() int { return s.members.SomeCount() }

// Add inserts index into the subset. Adding an index already present
// returns ErrAlreadySet.
func (s *Subset[K]) Add(index TypedUsize[K]) error {
	return s.members.Set(index, struct{}{})
}

// IsMember reports whether index belongs to the subset.
func (s *Subset[K]) IsMember(index TypedUsize[K]) (bool, error) {
	isNone, err := s.members.IsNone(index)
	if err != nil {
		return false, err
	}
	return !isNone, nil
}

// Iter calls f for every member index, in ascending order.
func (s *Subset[K]) Iter(f func(TypedUsize[K]) error) error {
	return s.members.IterSome(func(idx TypedUsize[K], _ struct{}) error {
		return f(idx)
	})
}
