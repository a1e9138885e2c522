package vtmap

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extentTolerance = 1e-6

func TestTileExtent_zoom0(t *testing.T) {
	extent := TileExtent(TileCoord{}, 256)

	assert.InDelta(t, -20037508.342789244, extent.Min.X(), extentTolerance)
	assert.InDelta(t, -20037508.342789244, extent.Min.Y(), extentTolerance)
	assert.InDelta(t, 20037508.342789244, extent.Max.X(), extentTolerance)
	assert.InDelta(t, 20037508.342789244, extent.Max.Y(), extentTolerance)
}

func TestTileExtent_pixelSpanCancelsOut(t *testing.T) {
	coord := TileCoord{X: 3, Y: 5, Z: 4}

	a := TileExtent(coord, 256)
	b := TileExtent(coord, 512)
	c := TileExtent(coord, 0)

	assertBoundsEqual(t, a, b)
	assertBoundsEqual(t, a, c)
}

func TestTileExtent_positiveAndPartitionedByChildren(t *testing.T) {
	coords := []TileCoord{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 1},
		{X: 0, Y: 1, Z: 1},
		{X: 5, Y: 9, Z: 4},
		{X: 1023, Y: 511, Z: 10},
		{X: 70000, Y: 12345, Z: 17},
		// out of range for the zoom level, but still a valid extent
		{X: 9, Y: 9, Z: 2},
	}

	for _, coord := range coords {
		t.Run(coord.String(), func(t *testing.T) {
			parent := TileExtent(coord, 256)
			require.Less(t, parent.Min.X(), parent.Max.X())
			require.Less(t, parent.Min.Y(), parent.Max.Y())

			tolerance := (parent.Max.X() - parent.Min.X()) * 1e-9

			children := coord.Children()
			var childBounds [4]orb.Bound
			for i, child := range children {
				childBounds[i] = TileExtent(child, 256)
			}

			// union of the children is the parent
			union := childBounds[0]
			for _, b := range childBounds[1:] {
				union = union.Union(b)
			}
			assert.InDelta(t, parent.Min.X(), union.Min.X(), tolerance)
			assert.InDelta(t, parent.Min.Y(), union.Min.Y(), tolerance)
			assert.InDelta(t, parent.Max.X(), union.Max.X(), tolerance)
			assert.InDelta(t, parent.Max.Y(), union.Max.Y(), tolerance)

			// children share edges, with no gap or overlap
			topLeft, topRight, bottomLeft, bottomRight := childBounds[0], childBounds[1], childBounds[2], childBounds[3]
			assert.InDelta(t, topLeft.Max.X(), topRight.Min.X(), tolerance)
			assert.InDelta(t, bottomLeft.Max.X(), bottomRight.Min.X(), tolerance)
			assert.InDelta(t, topLeft.Min.Y(), bottomLeft.Max.Y(), tolerance)
			assert.InDelta(t, topRight.Min.Y(), bottomRight.Max.Y(), tolerance)

			// each child is a quarter of the parent
			parentArea := (parent.Max.X() - parent.Min.X()) * (parent.Max.Y() - parent.Min.Y())
			for i, b := range childBounds {
				area := (b.Max.X() - b.Min.X()) * (b.Max.Y() - b.Min.Y())
				assert.InDelta(t, parentArea/4, area, parentArea*1e-9, fmt.Sprintf("child %d", i))
			}
		})
	}
}

func TestBufferedExtent(t *testing.T) {
	extent := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{256, 256}}

	buffered := BufferedExtent(extent, 256, 16)
	assertBoundsEqual(t, orb.Bound{Min: orb.Point{-16, -16}, Max: orb.Point{272, 272}}, buffered)

	// 2 ground units per pixel
	buffered = BufferedExtent(extent, 128, 16)
	assertBoundsEqual(t, orb.Bound{Min: orb.Point{-32, -32}, Max: orb.Point{288, 288}}, buffered)

	assertBoundsEqual(t, extent, BufferedExtent(extent, 256, 0))
}

func TestTileCoord_Valid(t *testing.T) {
	assert.True(t, TileCoord{X: 0, Y: 0, Z: 0}.Valid())
	assert.False(t, TileCoord{X: 1, Y: 0, Z: 0}.Valid())
	assert.True(t, TileCoord{X: 3, Y: 3, Z: 2}.Valid())
	assert.False(t, TileCoord{X: 3, Y: 4, Z: 2}.Valid())
	assert.False(t, TileCoord{Z: 31}.Valid())
}

func assertBoundsEqual(t *testing.T, expected, actual orb.Bound) {
	t.Helper()
	assert.InDelta(t, expected.Min.X(), actual.Min.X(), extentTolerance)
	assert.InDelta(t, expected.Min.Y(), actual.Min.Y(), extentTolerance)
	assert.InDelta(t, expected.Max.X(), actual.Max.X(), extentTolerance)
	assert.InDelta(t, expected.Max.Y(), actual.Max.Y(), extentTolerance)
}
