package lpf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gonavbot/common"
)

func square(id AreaID, x, y, half float32) *Area {
	return &Area{ID: id, Verts: []common.Vec3{
		{x - half, y - half, 0},
		{x + half, y - half, 0},
		{x + half, y + half, 0},
		{x - half, y + half, 0},
	}}
}

func TestAreaSet(t *testing.T) {
	s := NewAreaSet()
	assert.Zero(t, s.Revision())
	s.Add(square(1, 0, 0, 1))
	s.Add(square(2, 10, 0, 1))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, uint32(2), s.Revision())
	assert.True(t, s.Contains(common.Vec3{0.5, 0.5, 0}))
	assert.False(t, s.Contains(common.Vec3{5, 0, 0}))

	assert.True(t, s.Remove(1))
	assert.False(t, s.Remove(1))
	assert.Equal(t, uint32(3), s.Revision())
	assert.False(t, s.Contains(common.Vec3{0.5, 0.5, 0}))

	assert.Panics(t, func() { s.Add(&Area{ID: 3, Verts: []common.Vec3{{}, {1, 0, 0}}}) })
}

func TestLocalBoundaryNearestFirst(t *testing.T) {
	s := NewAreaSet()
	s.Add(square(1, 3, 0, 1))
	s.Add(square(2, 30, 0, 1))

	b := NewLocalBoundary()
	assert.False(t, b.IsValid(common.Vec3{}, 5, s))
	b.Update(common.Vec3{}, 5, s)
	require.Equal(t, 4, b.GetSegmentCount())
	assert.Equal(t, common.Vec3{}, b.GetCenter())

	// The edge facing the agent comes first.
	p, q := b.GetSegment(0)
	assert.Equal(t, float32(2), p[0])
	assert.Equal(t, float32(2), q[0])

	assert.False(t, b.IsSegmentClear(common.Vec3{}, common.Vec3{6, 0, 0}))
	assert.True(t, b.IsSegmentClear(common.Vec3{}, common.Vec3{0, 6, 0}))
}

func TestLocalBoundaryValidity(t *testing.T) {
	s := NewAreaSet()
	s.Add(square(1, 3, 0, 1))
	b := NewLocalBoundary()
	b.Update(common.Vec3{}, 4, s)

	assert.True(t, b.IsValid(common.Vec3{0.9, 0, 0}, 4, s))
	assert.False(t, b.IsValid(common.Vec3{1.1, 0, 0}, 4, s))

	s.Add(square(2, -3, 0, 1))
	assert.False(t, b.IsValid(common.Vec3{}, 4, s))
	b.Update(common.Vec3{}, 4, s)
	assert.Equal(t, 8, b.GetSegmentCount())

	b.Reset()
	assert.Zero(t, b.GetSegmentCount())
	assert.False(t, b.IsValid(common.Vec3{}, 4, s))
}

func TestLocalBoundaryKeepsClosest(t *testing.T) {
	s := NewAreaSet()
	for i := 0; i < 8; i++ {
		s.Add(square(AreaID(i+1), float32(2*i+2), 0, 0.5))
	}
	b := NewLocalBoundary()
	b.Update(common.Vec3{}, 100, s)
	require.Equal(t, MAX_LOCAL_SEGS, b.GetSegmentCount())
	p, _ := b.GetSegment(0)
	assert.Equal(t, float32(1.5), p[0])
	for i := 0; i < MAX_LOCAL_SEGS; i++ {
		p, q := b.GetSegment(i)
		// The four furthest squares are dropped.
		assert.Less(t, min(p[0], q[0]), float32(9))
	}
}
