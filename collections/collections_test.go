package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testKind struct{}

func TestVecMapGetSet(t *testing.T) {
	m := NewVecMap[testKind]([]int{10, 20, 30})
	v, err := m.Get(NewTypedUsize[testKind](1))
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	_, err = m.Get(NewTypedUsize[testKind](3))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestHoleVecMapSkipsHole(t *testing.T) {
	hole := NewTypedUsize[testKind](2)
	hv := NewHoleVecMap[testKind](hole, []int{0, 1, 3, 4})

	_, err := hv.Get(hole)
	assert.ErrorIs(t, err, ErrIsHole)

	v, err := hv.Get(NewTypedUsize[testKind](3))
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	var seen []uint32
	require.NoError(t, hv.Iter(func(idx TypedUsize[testKind], _ int) error {
		seen = append(seen, idx.AsUsize())
		return nil
	}))
	assert.Equal(t, []uint32{0, 1, 3, 4}, seen)
}

func TestHoleVecMapPlugHole(t *testing.T) {
	hole := NewTypedUsize[testKind](1)
	hv := NewHoleVecMap[testKind](hole, []int{100, 300})
	full := hv.PlugHole(200)
	require.Equal(t, 3, full.Len())
	v, err := full.Get(NewTypedUsize[testKind](1))
	require.NoError(t, err)
	assert.Equal(t, 200, v)
}

func TestFillVecMapDetectsDoubleFill(t *testing.T) {
	f := NewFillVecMap[testKind, string](3)
	idx := NewTypedUsize[testKind](0)
	require.NoError(t, f.Set(idx, "a"))
	assert.ErrorIs(t, f.Set(idx, "b"), ErrAlreadySet)
	assert.False(t, f.IsFull())

	require.NoError(t, f.Set(NewTypedUsize[testKind](1), "b"))
	require.NoError(t, f.Set(NewTypedUsize[testKind](2), "c"))
	assert.True(t, f.IsFull())

	all, err := f.UnwrapAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, all.AsSlice())
}

func TestP2psToMe(t *testing.T) {
	// 3 parties; party i sends value (i*10+j) to j.
	n := 3
	rows := make([]*HoleVecMap[testKind, int], n)
	for i := 0; i < n; i++ {
		vals := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			vals = append(vals, i*10+j)
		}
		rows[i] = NewHoleVecMap[testKind](NewTypedUsize[testKind](uint32(i)), vals)
	}
	p := NewP2ps[testKind, int](NewVecMap[testKind](rows))

	toMe1, err := p.ToMe(NewTypedUsize[testKind](1))
	require.NoError(t, err)
	require.Equal(t, 2, toMe1.Len())
	v0, err := toMe1.Get(NewTypedUsize[testKind](0))
	require.NoError(t, err)
	assert.Equal(t, 1, v0) // from party 0 to party 1 == 0*10+1
}

func TestSubsetMembership(t *testing.T) {
	s := NewSubset[testKind](5)
	require.NoError(t, s.Add(NewTypedUsize[testKind](1)))
	require.NoError(t, s.Add(NewTypedUsize[testKind](3)))
	assert.ErrorIs(t, s.Add(NewTypedUsize[testKind](1)), ErrAlreadySet)

	isMember, err := s.IsMember(NewTypedUsize[testKind](3))
	require.NoError(t, err)
	assert.True(t, isMember)

	isMember, err = s.IsMember(NewTypedUsize[testKind](2))
	require.NoError(t, err)
	assert.False(t, isMember)

	assert.Equal(t, 2, s.MemberCount())
}
