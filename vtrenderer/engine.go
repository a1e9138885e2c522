package vtrenderer

import (
	"context"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/canvas"
	"github.com/jamesrr39/vtrender/datasource"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/paulmach/orb"
)

// PaintJob is everything needed to paint one style layer from one feature source
type PaintJob struct {
	Layer            *styling.Layer
	Styles           map[string]*styling.FeatureTypeStyle
	Source           datasource.FeatureSource
	Extent           orb.Bound
	BufferedExtent   orb.Bound
	Scale            float64 // ground units per pixel
	ScaleDenominator float64
	Width            int
	Height           int
	BufferSize       int
	ScaleFactor      float64 // multiplies symbol sizes; 0 means 1
}

func (job PaintJob) scaleFactor() float64 {
	if job.ScaleFactor <= 0 {
		return 1
	}
	return job.ScaleFactor
}

// Engine paints a layer onto a canvas
type Engine interface {
	PaintLayer(ctx context.Context, cnv *canvas.Canvas, job PaintJob) errorsx.Error
}
