package vtmap

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	EarthRadiusMeters = 6378137.0
	// WebMercatorSpan is the ground span, in meters, of the whole world at zoom 0
	WebMercatorSpan = 2 * math.Pi * EarthRadiusMeters

	DefaultTileSpanPixels = 256
)

// TileResolution returns the number of ground units covered by one pixel of a tile at the given zoom level.
func TileResolution(zoomLevel ZoomLevel, tileSpanPixels uint) float64 {
	if tileSpanPixels == 0 {
		tileSpanPixels = DefaultTileSpanPixels
	}

	return WebMercatorSpan / (float64(tileSpanPixels) * math.Exp2(float64(zoomLevel)))
}

// TileExtent maps a tile coordinate to its bounds in spherical mercator meters.
// Rows count downwards from the top of the world, whereas mercator Y counts upwards.
// Out-of-range coordinates give a valid, but meaningless, extent.
func TileExtent(coord TileCoord, tileSpanPixels uint) orb.Bound {
	if tileSpanPixels == 0 {
		tileSpanPixels = DefaultTileSpanPixels
	}

	tileSpan := TileResolution(coord.Z, tileSpanPixels) * float64(tileSpanPixels)
	half := WebMercatorSpan / 2

	minX := -half + float64(coord.X)*tileSpan
	maxY := half - float64(coord.Y)*tileSpan

	return orb.Bound{
		Min: orb.Point{minX, maxY - tileSpan},
		Max: orb.Point{minX + tileSpan, maxY},
	}
}

// BufferedExtent pads every side of the extent by bufferSizePixels, converted into ground units with the extent's resolution over canvasWidth pixels.
func BufferedExtent(extent orb.Bound, canvasWidth, bufferSizePixels int) orb.Bound {
	if canvasWidth <= 0 || bufferSizePixels == 0 {
		return extent
	}

	pad := float64(bufferSizePixels) * (extent.Right() - extent.Left()) / float64(canvasWidth)

	return extent.Pad(pad)
}

// Children returns the four tiles at the next zoom level which make up this tile.
func (c TileCoord) Children() [4]TileCoord {
	x, y, z := c.X*2, c.Y*2, c.Z+1
	return [4]TileCoord{
		{X: x, Y: y, Z: z},
		{X: x + 1, Y: y, Z: z},
		{X: x, Y: y + 1, Z: z},
		{X: x + 1, Y: y + 1, Z: z},
	}
}
