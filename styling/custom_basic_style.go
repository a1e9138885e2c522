package styling

import (
	"image/color"

	"github.com/jamesrr39/vtrender/vtmap"
)

const BUILTIN_STYLEID = "__vtrender_builtin"

// layer names and classes follow the OpenMapTiles vector tile schema
const (
	layerLandcover      = "landcover"
	layerLanduse        = "landuse"
	layerWater          = "water"
	layerWaterway       = "waterway"
	layerTransportation = "transportation"
	layerPlace          = "place"
)

var (
	forestColor      = color.NRGBA{172, 200, 160, 0xff}
	residentialColor = color.NRGBA{223, 223, 223, 0xff}
	waterColor       = color.NRGBA{0xaa, 0xd3, 0xdf, 0xff}
	railwayColor     = color.NRGBA{190, 190, 190, 0xff}
)

// NewBuiltinStyle makes the style used when no style document is configured
func NewBuiltinStyle(width, height int) *Style {
	style := NewStyle(width, height)
	style.ID = BUILTIN_STYLEID
	style.Background = color.White
	style.BufferSize = 64

	addLayer := func(name string, rules ...*Rule) *Layer {
		style.Styles[name] = &FeatureTypeStyle{Name: name, Rules: rules}
		layer := NewLayer(name, name)
		style.Layers = append(style.Layers, layer)
		return layer
	}

	addLayer(layerLandcover, fillRule(In("class", "wood", "forest"), forestColor))
	addLayer(layerLanduse,
		fillRule(In("class", "forest"), forestColor),
		fillRule(In("class", "residential", "suburb", "neighbourhood"), residentialColor),
	)
	addLayer(layerWater, fillRule(nil, waterColor))
	addLayer(layerWaterway, lineRule(nil, waterColor, 1.5, nil))
	addLayer(layerTransportation, transportationRules()...)

	placeLayer := addLayer(layerPlace, &Rule{
		Filter: And(GeometryTypeIs(GeometryTypePoint), Has("name")),
		Symbolizers: []Symbolizer{&TextSymbolizer{
			Name:       FieldText("name"),
			Size:       16,
			Fill:       color.Black,
			HaloFill:   color.White,
			HaloRadius: 1,
			Placement:  TextPlacementPoint,
		}},
	})
	// place names clutter the map when zoomed out
	placeLayer.MaxScaleDenominator = vtmap.ZoomToScaleDenominator(4)

	return style
}

func transportationRules() []*Rule {
	roadColors := []struct {
		classes []interface{}
		color   color.NRGBA
		width   float64
	}{
		{[]interface{}{"motorway"}, color.NRGBA{0xf3, 0x8d, 0x9e, 0xff}, 3},
		{[]interface{}{"trunk"}, color.NRGBA{0xff, 0xae, 0x9b, 0xff}, 3},
		{[]interface{}{"primary"}, color.NRGBA{0xff, 0xd4, 0xa5, 0xff}, 2.5},
		{[]interface{}{"secondary"}, color.NRGBA{0xf6, 0xf9, 0xbf, 0xff}, 2},
		{[]interface{}{"tertiary"}, color.NRGBA{0xf3, 0x8d, 0x9e, 0xff}, 2},
		{[]interface{}{"minor", "service", "track"}, color.NRGBA{0xbc, 0xac, 0xa5, 0xff}, 1},
	}

	rules := []*Rule{
		lineRule(In("class", "rail", "transit"), railwayColor, 3, nil),
		lineRule(In("class", "path"), color.NRGBA{0, 0xff, 0, 0xff}, 1, []float64{1, 2, 3}),
	}

	for _, rc := range roadColors {
		rules = append(rules, lineRule(In("class", rc.classes...), rc.color, rc.width, nil))
	}

	return rules
}

func fillRule(filter Filter, fill color.Color) *Rule {
	return &Rule{
		Filter:      filter,
		Symbolizers: []Symbolizer{&PolygonSymbolizer{Fill: fill}},
	}
}

func lineRule(filter Filter, stroke color.Color, width float64, dashArray []float64) *Rule {
	return &Rule{
		Filter: filter,
		Symbolizers: []Symbolizer{&LineSymbolizer{
			Stroke:      stroke,
			StrokeWidth: width,
			DashArray:   dashArray,
			LineCap:     LineCapRound,
			LineJoin:    LineJoinRound,
		}},
	}
}
