package vtrenderer

import (
	"github.com/paulmach/orb"
)

// pixelProjection maps ground coordinates to canvas pixels, with the extent's top-left corner at (0, 0)
type pixelProjection struct {
	extent orb.Bound
	scaleX float64
	scaleY float64
}

func newPixelProjection(extent orb.Bound, width, height int) *pixelProjection {
	return &pixelProjection{
		extent: extent,
		scaleX: float64(width) / (extent.Right() - extent.Left()),
		scaleY: float64(height) / (extent.Top() - extent.Bottom()),
	}
}

func (p *pixelProjection) toPixel(pt orb.Point) (float64, float64) {
	return (pt.X() - p.extent.Left()) * p.scaleX, (p.extent.Top() - pt.Y()) * p.scaleY
}
