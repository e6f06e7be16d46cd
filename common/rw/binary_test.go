package rw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWrite(t *testing.T) {
	w := NewBinWriter()
	w.WriteUInt8(7)
	w.WriteBool(true)
	w.WriteInt32(int32(-3))
	w.WriteInt32(uint32(42))
	w.WriteUInt64(1 << 40)
	w.WriteFloat32s([]float32{1.5, -2})
	w.WriteFloat64(0.25)
	require.Equal(t, 1+1+4+4+8+8+8, w.Size())

	r := NewBinReader(w.GetWriteBytes())
	assert.Equal(t, uint8(7), r.ReadUInt8())
	assert.True(t, r.ReadBool())
	assert.Equal(t, int32(-3), r.ReadInt32())
	assert.Equal(t, uint32(42), r.ReadUInt32())
	assert.Equal(t, uint64(1<<40), r.ReadUInt64())
	fs := make([]float32, 2)
	r.ReadFloat32s(fs)
	assert.Equal(t, []float32{1.5, -2}, fs)
	assert.Equal(t, 0.25, r.ReadFloat64())
	assert.NoError(t, r.Err())
}

func TestShortBufferSticks(t *testing.T) {
	r := NewBinReader([]byte{1, 2})
	assert.Zero(t, r.ReadUInt32())
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
	// Later reads keep failing even when bytes would be left.
	assert.Zero(t, r.ReadUInt8())
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
}
