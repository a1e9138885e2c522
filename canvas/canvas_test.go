package canvas

import (
	"image/color"
	"testing"

	snapshot "github.com/jamesrr39/go-snapshot-testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvas_Fill(t *testing.T) {
	cnv := New(4, 4)
	cnv.Fill(color.RGBA{0x10, 0x20, 0x30, 0xff})

	snapshot.AssertMatchesSnapshot(t, "Canvas_Fill", snapshot.NewImageSnapshot(cnv))

	cnv.Fill(nil)
	assert.Equal(t, make([]byte, 4*4*4), cnv.Raw())
}

func TestFromRaw(t *testing.T) {
	pix := make([]byte, 2*3*4)
	pix[0], pix[3] = 0xff, 0xff

	cnv, err := FromRaw(pix, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, cnv.Width())
	assert.Equal(t, 3, cnv.Height())
	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, cnv.At(0, 0))

	pix[0] = 0
	assert.Equal(t, byte(0xff), cnv.Raw()[0], "canvas must own its pixels")

	_, err = FromRaw(pix, 3, 3)
	require.Error(t, err)

	_, err = FromRaw(nil, 0, 3)
	require.Error(t, err)
}

func TestPoolAllocator(t *testing.T) {
	allocator := NewPoolAllocator()

	cnv, err := allocator.Acquire(8, 8)
	require.NoError(t, err)
	cnv.Fill(color.White)
	allocator.Release(cnv)

	again, err := allocator.Acquire(8, 8)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8*8*4), again.Raw(), "acquired canvases are cleared")

	other, err := allocator.Acquire(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, other.Width())

	_, err = allocator.Acquire(0, 1)
	require.Error(t, err)
}
