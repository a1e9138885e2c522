package styling

import (
	"github.com/jamesrr39/vtrender/vtmap"
)

// VisibleAt reports whether the layer is switched on and the scale denominator is within [min, max)
func (l *Layer) VisibleAt(scaleDenominator float64) bool {
	return l.Active && inScaleWindow(scaleDenominator, l.MinScaleDenominator, l.MaxScaleDenominator)
}

// VisibleLayers returns the layers visible at the scale denominator, in paint order
func VisibleLayers(style *Style, scaleDenominator float64) []*Layer {
	var layers []*Layer
	for _, layer := range style.Layers {
		if layer.VisibleAt(scaleDenominator) {
			layers = append(layers, layer)
		}
	}
	return layers
}

// EffectiveScaleDenominator picks the scale denominator for a render.
// A positive forced denominator wins, then a positive denominator on the style, and otherwise it is derived from the ground units per pixel,
// in the units of the style's reference system.
// The result is multiplied by the style's scale.
func EffectiveScaleDenominator(style *Style, forcedScaleDenominator, groundUnitsPerPixel float64) float64 {
	return effectiveScaleDenominator(style, forcedScaleDenominator, groundUnitsPerPixel, vtmap.IsGeographicSRS(style.SRS))
}

// MercatorScaleDenominator is EffectiveScaleDenominator for ground units that are spherical mercator meters, whatever the style's reference system
func MercatorScaleDenominator(style *Style, forcedScaleDenominator, metersPerPixel float64) float64 {
	return effectiveScaleDenominator(style, forcedScaleDenominator, metersPerPixel, false)
}

func effectiveScaleDenominator(style *Style, forcedScaleDenominator, groundUnitsPerPixel float64, geographic bool) float64 {
	var denom float64
	switch {
	case forcedScaleDenominator > 0:
		denom = forcedScaleDenominator
	case style.ScaleDenominator > 0:
		denom = style.ScaleDenominator
	default:
		denom = vtmap.ScaleDenominator(groundUnitsPerPixel, geographic)
	}

	return denom * style.EffectiveScale()
}

// a max of 0 or less is an open upper bound
func inScaleWindow(scaleDenominator, min, max float64) bool {
	return min <= scaleDenominator && (max <= 0 || scaleDenominator < max)
}
