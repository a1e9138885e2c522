package vtrenderer

import (
	"image"
	"image/color"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/canvas"
	"github.com/jamesrr39/vtrender/datasource"
	"github.com/jamesrr39/vtrender/fonts"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/paulmach/orb"
)

// painter draws the symbolizers for one layer paint
type painter struct {
	cnv         *canvas.Canvas
	gc          *draw2dimg.GraphicContext
	proj        *pixelProjection
	scaleFactor float64
	fonts       *fonts.Registry

	// boxes of labels placed so far, for collision detection
	labels []image.Rectangle
}

func newPainter(cnv *canvas.Canvas, job PaintJob, fontRegistry *fonts.Registry) *painter {
	gc := draw2dimg.NewGraphicContext(cnv.RGBA)
	gc.SetFillRule(draw2d.FillRuleEvenOdd)

	return &painter{
		cnv:         cnv,
		gc:          gc,
		proj:        newPixelProjection(job.Extent, job.Width, job.Height),
		scaleFactor: job.scaleFactor(),
		fonts:       fontRegistry,
	}
}

func (p *painter) draw(feature *datasource.Feature, geom orb.Geometry, symbolizer styling.Symbolizer) errorsx.Error {
	switch s := symbolizer.(type) {
	case *styling.PolygonSymbolizer:
		p.fillPolygons(geom, s)
	case *styling.LineSymbolizer:
		p.strokeLines(geom, s)
	case *styling.MarkersSymbolizer:
		p.drawMarkers(geom, s)
	case *styling.TextSymbolizer:
		return p.drawLabels(feature, geom, s)
	default:
		return errorsx.Errorf("unsupported symbolizer: %T", symbolizer)
	}
	return nil
}

func (p *painter) fillPolygons(geom orb.Geometry, s *styling.PolygonSymbolizer) {
	if s.Fill == nil {
		return
	}

	var rings []orb.Ring
	switch g := geom.(type) {
	case orb.Polygon:
		rings = g
	case orb.MultiPolygon:
		for _, polygon := range g {
			rings = append(rings, polygon...)
		}
	case orb.Bound:
		rings = g.ToPolygon()
	default:
		return
	}

	p.gc.SetFillColor(s.Fill)
	p.gc.BeginPath()
	for _, ring := range rings {
		p.addPath(orb.LineString(ring), true)
	}
	p.gc.Fill()
}

func (p *painter) strokeLines(geom orb.Geometry, s *styling.LineSymbolizer) {
	if s.Stroke == nil || s.StrokeWidth <= 0 {
		return
	}

	var paths []orb.LineString
	closed := false
	switch g := geom.(type) {
	case orb.LineString:
		paths = []orb.LineString{g}
	case orb.MultiLineString:
		paths = g
	case orb.Polygon:
		closed = true
		for _, ring := range g {
			paths = append(paths, orb.LineString(ring))
		}
	case orb.MultiPolygon:
		closed = true
		for _, polygon := range g {
			for _, ring := range polygon {
				paths = append(paths, orb.LineString(ring))
			}
		}
	default:
		return
	}

	var dashes []float64
	for _, dash := range s.DashArray {
		dashes = append(dashes, dash*p.scaleFactor)
	}

	p.gc.SetStrokeColor(s.Stroke)
	p.gc.SetLineWidth(s.StrokeWidth * p.scaleFactor)
	p.gc.SetLineCap(lineCap(s.LineCap))
	p.gc.SetLineJoin(lineJoin(s.LineJoin))
	p.gc.SetLineDash(dashes, 0)

	p.gc.BeginPath()
	for _, path := range paths {
		p.addPath(path, closed)
	}
	p.gc.Stroke()
}

func (p *painter) drawMarkers(geom orb.Geometry, s *styling.MarkersSymbolizer) {
	if s.Width <= 0 {
		return
	}

	radius := s.Width * p.scaleFactor / 2

	for _, pt := range labelPoints(geom) {
		x, y := p.proj.toPixel(pt)

		p.gc.BeginPath()
		draw2dkit.Circle(p.gc, x, y, radius)

		fill := s.Fill
		if fill == nil {
			fill = color.Black
		}
		p.gc.SetFillColor(fill)

		if s.Stroke != nil && s.StrokeWidth > 0 {
			p.gc.SetStrokeColor(s.Stroke)
			p.gc.SetLineWidth(s.StrokeWidth * p.scaleFactor)
			p.gc.SetLineDash(nil, 0)
			p.gc.FillStroke()
		} else {
			p.gc.Fill()
		}
	}
}

func (p *painter) addPath(path orb.LineString, closed bool) {
	for i, pt := range path {
		x, y := p.proj.toPixel(pt)
		if i == 0 {
			p.gc.MoveTo(x, y)
		} else {
			p.gc.LineTo(x, y)
		}
	}
	if closed && len(path) > 0 {
		p.gc.Close()
	}
}

func lineCap(c styling.LineCap) draw2d.LineCap {
	switch c {
	case styling.LineCapRound:
		return draw2d.RoundCap
	case styling.LineCapSquare:
		return draw2d.SquareCap
	default:
		return draw2d.ButtCap
	}
}

func lineJoin(j styling.LineJoin) draw2d.LineJoin {
	switch j {
	case styling.LineJoinRound:
		return draw2d.RoundJoin
	case styling.LineJoinBevel:
		return draw2d.BevelJoin
	default:
		return draw2d.MiterJoin
	}
}
