package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gonavbot/common"
)

func TestOneAttributePerClass(t *testing.T) {
	a := New()
	a.Set(NewSpeed(1))
	a.Set(NewSpeed(2))
	a.Set(NewRotation(0.5))
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, []ClassID{CLASS_SPEED, CLASS_ROTATION}, a.Classes())

	speed, ok := GetAttribute[*Speed](a)
	require.True(t, ok)
	assert.Equal(t, float32(2), speed.Value)
	assert.True(t, speed.Updated())

	_, ok = GetAttribute[*ForcedPosition](a)
	assert.False(t, ok)

	assert.True(t, a.Remove(CLASS_ROTATION))
	assert.False(t, a.Remove(CLASS_ROTATION))
	assert.Nil(t, a.Get(CLASS_ROTATION))
}

func TestSynchronizeCopiesOnlyUpdated(t *testing.T) {
	dst := New()
	dst.Set(NewSpeed(1))
	dst.Set(NewRotation(1))
	dst.ResetUpdated()

	src := New()
	src.Set(NewSpeed(3))
	src.Set(NewTargetPoint(common.Vec3{1, 2, 0}))
	src.Set(NewForcedRotation(2))
	src.ResetUpdated()
	src.Set(NewSpeed(4))

	dst.Synchronize(src)

	speed, _ := GetAttribute[*Speed](dst)
	assert.Equal(t, float32(4), speed.Value)
	rot, _ := GetAttribute[*Rotation](dst)
	assert.Equal(t, float32(1), rot.Heading, "untouched attribute keeps its value")
	assert.False(t, rot.Updated())
	_, ok := GetAttribute[*TargetPoint](dst)
	assert.False(t, ok, "stale attribute of src is not copied")

	// The copy is independent from src.
	s, _ := GetAttribute[*Speed](src)
	s.Value = 10
	speed, _ = GetAttribute[*Speed](dst)
	assert.Equal(t, float32(4), speed.Value)
}

func TestZeroActionSet(t *testing.T) {
	var a Action
	a.Set(NewForcedPosition(common.Vec3{1, 1, 1}))
	p, ok := GetAttribute[*ForcedPosition](&a)
	require.True(t, ok)
	assert.Equal(t, common.Vec3{1, 1, 1}, p.Position)
	a.Clear()
	assert.Zero(t, a.Len())
}
