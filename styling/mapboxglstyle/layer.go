package mapboxglstyle

import (
	"image/color"
	"math"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/vtmap"
)

type LayerType string

const (
	LayerTypeBackground    LayerType = "background"
	LayerTypeFill          LayerType = "fill"
	LayerTypeLine          LayerType = "line"
	LayerTypeSymbol        LayerType = "symbol"
	LayerTypeRaster        LayerType = "raster"
	LayerTypeCircle        LayerType = "circle"
	LayerTypeFillExtrusion LayerType = "fill-extrusion"
	LayerTypeHeatmap       LayerType = "heatmap"
	LayerTypeHillshade     LayerType = "hillshade"
)

const (
	maxZoom = 24

	// widens zoom boundaries so that rendering at exactly an integer zoom lands inside its band
	zoomBoundaryTolerance = 1e-6
)

type Metadata map[string]interface{}

type Layer struct {
	Filter      Filter    `json:"filter"`
	ID          string    `json:"id"`
	Layout      Layout    `json:"layout"`
	MaxZoom     *float64  `json:"maxzoom"`
	Metadata    Metadata  `json:"metadata"`
	MinZoom     *float64  `json:"minzoom"`
	Paint       Paint     `json:"paint"`
	Source      string    `json:"source"`
	SourceLayer string    `json:"source-layer"`
	Type        LayerType `json:"type"`
}

func (l *Layer) Validate() errorsx.Error {
	if l.MaxZoom != nil && l.MinZoom != nil {
		if *l.MaxZoom < *l.MinZoom {
			return errorsx.Errorf("max zoom is smaller than min zoom")
		}
	}

	if l.MaxZoom != nil && (*l.MaxZoom < 0 || *l.MaxZoom > maxZoom) {
		return errorsx.Errorf("max zoom must be between 0 and 24 (inclusive) but was %f", *l.MaxZoom)
	}

	if l.MinZoom != nil && (*l.MinZoom < 0 || *l.MinZoom > maxZoom) {
		return errorsx.Errorf("min zoom must be between 0 and 24 (inclusive) but was %f", *l.MinZoom)
	}

	return nil
}

func (l *Layer) minZoom() float64 {
	if l.MinZoom == nil {
		return 0
	}
	return *l.MinZoom
}

func (l *Layer) maxZoom() float64 {
	if l.MaxZoom == nil {
		return maxZoom
	}
	return *l.MaxZoom
}

// zoomBoundaryDenominator is the scale denominator at which a zoom level starts
func zoomBoundaryDenominator(zoom float64) float64 {
	return vtmap.ZoomToScaleDenominator(zoom) * (1 + zoomBoundaryTolerance)
}

// toStylingLayer converts a layer drawing from a tile source layer.
// Layers that have nothing to draw return nil.
func (l *Layer) toStylingLayer() (*styling.Layer, *styling.FeatureTypeStyle, errorsx.Error) {
	err := l.Validate()
	if err != nil {
		return nil, nil, err
	}

	filter, err := toStylingFilter(l.Filter)
	if err != nil {
		return nil, nil, errorsx.Wrap(err, "layer", l.ID)
	}

	text, err := l.Layout.textExpression()
	if err != nil {
		return nil, nil, errorsx.Wrap(err, "layer", l.ID)
	}

	fts := &styling.FeatureTypeStyle{
		Name:       l.ID,
		FilterMode: styling.FilterModeAll,
	}

	zoomDependent := l.Paint.zoomDependent() || l.Layout.TextSize.IsFunction()
	if !zoomDependent {
		symbolizers := l.symbolizersAt(l.minZoom(), text)
		if len(symbolizers) == 0 {
			return nil, nil, nil
		}
		fts.Rules = append(fts.Rules, &styling.Rule{
			Filter:      filter,
			Symbolizers: symbolizers,
		})
	} else {
		// one rule per integer zoom band, with properties evaluated at the start of the band
		firstZoom := math.Floor(l.minZoom())
		for zoom := firstZoom; zoom < l.maxZoom(); zoom++ {
			symbolizers := l.symbolizersAt(math.Max(zoom, l.minZoom()), text)
			if len(symbolizers) == 0 {
				continue
			}
			rule := &styling.Rule{
				Filter:      filter,
				Symbolizers: symbolizers,
			}
			if zoom > firstZoom {
				rule.MaxScaleDenominator = zoomBoundaryDenominator(zoom)
			}
			if zoom+1 < maxZoom {
				rule.MinScaleDenominator = zoomBoundaryDenominator(zoom + 1)
			}
			fts.Rules = append(fts.Rules, rule)
		}
		if len(fts.Rules) == 0 {
			return nil, nil, nil
		}
	}

	layer := styling.NewLayer(l.SourceLayer, l.ID)
	layer.Active = l.Layout.Visibility != VisibilityNone
	if l.MinZoom != nil && *l.MinZoom > 0 {
		layer.MaxScaleDenominator = zoomBoundaryDenominator(*l.MinZoom)
	}
	if l.MaxZoom != nil && *l.MaxZoom < maxZoom {
		layer.MinScaleDenominator = zoomBoundaryDenominator(*l.MaxZoom)
	}

	return layer, fts, nil
}

func (l *Layer) symbolizersAt(zoom float64, text *styling.TextExpression) []styling.Symbolizer {
	var symbolizers []styling.Symbolizer
	paint := &l.Paint

	switch l.Type {
	case LayerTypeFill:
		fill := colorAt(paint.FillColor, paint.FillOpacity, zoom)
		if fill == nil {
			fill = color.Black
		}
		symbolizers = append(symbolizers, &styling.PolygonSymbolizer{Fill: fill})

		outline := colorAt(paint.FillOutlineColor, paint.FillOpacity, zoom)
		if outline != nil {
			symbolizers = append(symbolizers, &styling.LineSymbolizer{Stroke: outline, StrokeWidth: 1})
		}
	case LayerTypeLine:
		stroke := colorAt(paint.LineColor, paint.LineOpacity, zoom)
		if stroke == nil {
			stroke = color.Black
		}
		width := valueAt(paint.LineWidth, zoom, 1)
		if width <= 0 {
			return nil
		}

		var dashes []float64
		for _, dash := range paint.LineDashArray {
			dashes = append(dashes, dash*width)
		}

		symbolizers = append(symbolizers, &styling.LineSymbolizer{
			Stroke:      stroke,
			StrokeWidth: width,
			DashArray:   dashes,
			LineCap:     styling.LineCap(l.Layout.LineCap),
			LineJoin:    styling.LineJoin(l.Layout.LineJoin),
		})
	case LayerTypeCircle:
		fill := colorAt(paint.CircleColor, paint.CircleOpacity, zoom)
		if fill == nil {
			fill = color.Black
		}
		symbolizers = append(symbolizers, &styling.MarkersSymbolizer{
			Fill:        fill,
			Stroke:      colorAt(paint.CircleStrokeColor, paint.CircleOpacity, zoom),
			StrokeWidth: valueAt(paint.CircleStrokeWidth, zoom, 0),
			Width:       2 * valueAt(paint.CircleRadius, zoom, 5),
		})
	case LayerTypeSymbol:
		if text == nil {
			return nil
		}

		fill := colorAt(paint.TextColor, paint.TextOpacity, zoom)
		if fill == nil {
			fill = color.Black
		}
		size := l.Layout.textSizeAt(zoom)

		symbolizer := &styling.TextSymbolizer{
			Name:       text,
			FaceName:   l.Layout.textFace(),
			Size:       size,
			Fill:       fill,
			HaloFill:   colorAt(paint.TextHaloColor, paint.TextOpacity, zoom),
			HaloRadius: valueAt(paint.TextHaloWidth, zoom, 0),
			Placement:  l.Layout.placement(),
		}
		if len(l.Layout.TextOffset) == 2 {
			symbolizer.DX = l.Layout.TextOffset[0] * size
			symbolizer.DY = l.Layout.TextOffset[1] * size
		}
		symbolizers = append(symbolizers, symbolizer)
	}

	return symbolizers
}

type Source struct {
	Type    string   `json:"type"`
	URL     string   `json:"url"`
	Tiles   []string `json:"tiles"`
	MinZoom *float64 `json:"minzoom"`
	MaxZoom *float64 `json:"maxzoom"`
}

type Sources map[string]Source
