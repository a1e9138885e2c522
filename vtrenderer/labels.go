package vtrenderer

import (
	"image"
	"math"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/datasource"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	textDPI         = 72
	lineHeightRatio = 1.2
)

// halo offsets, as fractions of the halo radius
var haloDirections = [][2]float64{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

func (p *painter) drawLabels(feature *datasource.Feature, geom orb.Geometry, s *styling.TextSymbolizer) errorsx.Error {
	if s.Name == nil || s.Size <= 0 || s.Fill == nil {
		return nil
	}

	text := strings.TrimSpace(s.Name.Evaluate(feature))
	if text == "" {
		return nil
	}

	for _, pt := range labelPoints(geom) {
		x, y := p.proj.toPixel(pt)
		err := p.drawText(text, x+s.DX*p.scaleFactor, y+s.DY*p.scaleFactor, s)
		if err != nil {
			return err
		}
	}

	return nil
}

// drawText centres the text on (x, y). Labels that would overlap one already placed are dropped.
func (p *painter) drawText(text string, x, y float64, s *styling.TextSymbolizer) errorsx.Error {
	ttf := p.fonts.Face(s.FaceName)
	size := s.Size * p.scaleFactor

	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     textDPI,
		Hinting: font.HintingNone,
	})
	defer face.Close()

	lines := strings.Split(text, "\n")
	lineHeight := size * lineHeightRatio

	var lineWidths []float64
	var maxWidth float64
	for _, line := range lines {
		width := fixedToFloat(font.MeasureString(face, line))
		lineWidths = append(lineWidths, width)
		maxWidth = math.Max(maxWidth, width)
	}

	top := y - lineHeight*float64(len(lines))/2
	box := image.Rect(
		int(math.Floor(x-maxWidth/2)),
		int(math.Floor(top)),
		int(math.Ceil(x+maxWidth/2)),
		int(math.Ceil(top+lineHeight*float64(len(lines)))),
	)
	if !box.Overlaps(p.cnv.Bounds()) {
		return nil
	}
	for _, placed := range p.labels {
		if placed.Overlaps(box) {
			return nil
		}
	}
	p.labels = append(p.labels, box)

	ctx := freetype.NewContext()
	ctx.SetDPI(textDPI)
	ctx.SetFont(ttf)
	ctx.SetFontSize(size)
	ctx.SetHinting(font.HintingNone)
	ctx.SetClip(p.cnv.Bounds())
	ctx.SetDst(p.cnv.RGBA)

	ascent := fixedToFloat(face.Metrics().Ascent)

	drawLines := func(offsetX, offsetY float64) errorsx.Error {
		for i, line := range lines {
			baseline := top + lineHeight*float64(i) + ascent + offsetY
			left := x - lineWidths[i]/2 + offsetX
			_, err := ctx.DrawString(line, fixed.Point26_6{X: floatToFixed(left), Y: floatToFixed(baseline)})
			if err != nil {
				return errorsx.Wrap(err, "text", line)
			}
		}
		return nil
	}

	if s.HaloFill != nil && s.HaloRadius > 0 {
		radius := s.HaloRadius * p.scaleFactor
		ctx.SetSrc(image.NewUniform(s.HaloFill))
		for _, direction := range haloDirections {
			err := drawLines(direction[0]*radius, direction[1]*radius)
			if err != nil {
				return err
			}
		}
	}

	ctx.SetSrc(image.NewUniform(s.Fill))
	return drawLines(0, 0)
}

// labelPoints picks where point-like symbols go: each point, the middle of the longest line, or the centroid of the largest polygon
func labelPoints(geom orb.Geometry) []orb.Point {
	switch g := geom.(type) {
	case orb.Point:
		return []orb.Point{g}
	case orb.MultiPoint:
		return g
	case orb.LineString:
		if len(g) == 0 {
			return nil
		}
		return []orb.Point{lineMidpoint(g)}
	case orb.MultiLineString:
		var longest orb.LineString
		var longestLength float64
		for _, ls := range g {
			length := planar.Length(ls)
			if longest == nil || length > longestLength {
				longest, longestLength = ls, length
			}
		}
		return labelPoints(longest)
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		centroid, _ := planar.CentroidArea(g)
		return []orb.Point{centroid}
	case orb.MultiPolygon:
		var largest orb.Polygon
		var largestArea float64
		for _, polygon := range g {
			area := math.Abs(planar.Area(polygon))
			if largest == nil || area > largestArea {
				largest, largestArea = polygon, area
			}
		}
		return labelPoints(largest)
	case orb.Bound:
		return []orb.Point{g.Center()}
	}
	return nil
}

// lineMidpoint is the point half way along the line
func lineMidpoint(ls orb.LineString) orb.Point {
	remaining := planar.Length(ls) / 2
	for i := 1; i < len(ls); i++ {
		segment := planar.Distance(ls[i-1], ls[i])
		if segment >= remaining && segment > 0 {
			t := remaining / segment
			return orb.Point{
				ls[i-1].X() + (ls[i].X()-ls[i-1].X())*t,
				ls[i-1].Y() + (ls[i].Y()-ls[i-1].Y())*t,
			}
		}
		remaining -= segment
	}
	return ls[0]
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
