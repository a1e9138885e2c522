package xmlstyle

import (
	"image/color"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/styling"
)

type attrs map[string]string

func (xs xmlSymbolizer) attributes() attrs {
	a := make(attrs, len(xs.Attrs))
	for _, attr := range xs.Attrs {
		a[attr.Name.Local] = attr.Value
	}
	return a
}

func (a attrs) color(name string, defaultValue color.Color) (color.Color, errorsx.Error) {
	s, ok := a[name]
	if !ok || strings.TrimSpace(s) == "" {
		return defaultValue, nil
	}
	c, err := parseColor(s)
	if err != nil {
		return nil, errorsx.Wrap(err, "attribute", name)
	}
	return c, nil
}

func (a attrs) float(name string, defaultValue float64) (float64, errorsx.Error) {
	f, err := parseFloat(a[name], defaultValue)
	if err != nil {
		return 0, errorsx.Wrap(err, "attribute", name)
	}
	return f, nil
}

// toSymbolizer converts a symbolizer element. Elements that are not symbolizers, or not supported, give nil.
func (xs xmlSymbolizer) toSymbolizer() (styling.Symbolizer, errorsx.Error) {
	a := xs.attributes()

	switch xs.XMLName.Local {
	case "PolygonSymbolizer":
		return a.polygonSymbolizer()
	case "LineSymbolizer":
		return a.lineSymbolizer()
	case "TextSymbolizer":
		return a.textSymbolizer(xs.Content)
	case "MarkersSymbolizer":
		return a.markersSymbolizer()
	}

	return nil, nil
}

func (a attrs) polygonSymbolizer() (styling.Symbolizer, errorsx.Error) {
	fill, err := a.color("fill", color.Gray{Y: 0x80})
	if err != nil {
		return nil, err
	}

	opacity, err := a.float("fill-opacity", 1)
	if err != nil {
		return nil, err
	}

	return &styling.PolygonSymbolizer{Fill: styling.WithOpacity(fill, opacity)}, nil
}

func (a attrs) lineSymbolizer() (styling.Symbolizer, errorsx.Error) {
	stroke, err := a.color("stroke", color.Black)
	if err != nil {
		return nil, err
	}

	opacity, err := a.float("stroke-opacity", 1)
	if err != nil {
		return nil, err
	}

	width, err := a.float("stroke-width", 1)
	if err != nil {
		return nil, err
	}

	dashArray, err := parseFloatList(a["stroke-dasharray"])
	if err != nil {
		return nil, errorsx.Wrap(err, "attribute", "stroke-dasharray")
	}

	return &styling.LineSymbolizer{
		Stroke:      styling.WithOpacity(stroke, opacity),
		StrokeWidth: width,
		DashArray:   dashArray,
		LineCap:     styling.LineCap(a["stroke-linecap"]),
		LineJoin:    styling.LineJoin(a["stroke-linejoin"]),
	}, nil
}

func (a attrs) textSymbolizer(content string) (styling.Symbolizer, errorsx.Error) {
	nameExpr := strings.TrimSpace(content)
	if nameExpr == "" {
		nameExpr = a["name"]
	}
	if nameExpr == "" {
		return nil, errorsx.Errorf("text symbolizer without a name expression")
	}

	name, err := styling.ParseTextExpression(nameExpr)
	if err != nil {
		return nil, err
	}

	fill, err := a.color("fill", color.Black)
	if err != nil {
		return nil, err
	}

	haloFill, err := a.color("halo-fill", color.White)
	if err != nil {
		return nil, err
	}

	sym := &styling.TextSymbolizer{
		Name:      name,
		FaceName:  a["face-name"],
		Fill:      fill,
		HaloFill:  haloFill,
		Placement: styling.TextPlacementPoint,
	}

	if a["placement"] == string(styling.TextPlacementLine) {
		sym.Placement = styling.TextPlacementLine
	}

	for attrName, dest := range map[string]*float64{
		"size":        &sym.Size,
		"halo-radius": &sym.HaloRadius,
		"dx":          &sym.DX,
		"dy":          &sym.DY,
	} {
		defaultValue := 0.0
		if attrName == "size" {
			defaultValue = 10
		}
		*dest, err = a.float(attrName, defaultValue)
		if err != nil {
			return nil, err
		}
	}

	return sym, nil
}

func (a attrs) markersSymbolizer() (styling.Symbolizer, errorsx.Error) {
	fill, err := a.color("fill", color.NRGBA{0, 0, 0xff, 0xff})
	if err != nil {
		return nil, err
	}

	opacity, err := a.float("opacity", 1)
	if err != nil {
		return nil, err
	}

	stroke, err := a.color("stroke", nil)
	if err != nil {
		return nil, err
	}

	strokeWidth, err := a.float("stroke-width", 0.5)
	if err != nil {
		return nil, err
	}

	width, err := a.float("width", 10)
	if err != nil {
		return nil, err
	}

	return &styling.MarkersSymbolizer{
		Fill:        styling.WithOpacity(fill, opacity),
		Stroke:      stroke,
		StrokeWidth: strokeWidth,
		Width:       width,
	}, nil
}
