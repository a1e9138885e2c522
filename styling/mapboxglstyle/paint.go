package mapboxglstyle

import (
	"image/color"

	"github.com/jamesrr39/vtrender/styling"
)

type Paint struct {
	BackgroundColor   *ColorOrFunctionWrapperType  `json:"background-color"`
	BackgroundOpacity *NumberOrFunctionWrapperType `json:"background-opacity"`

	FillColor        *ColorOrFunctionWrapperType  `json:"fill-color"`
	FillOpacity      *NumberOrFunctionWrapperType `json:"fill-opacity"`
	FillOutlineColor *ColorOrFunctionWrapperType  `json:"fill-outline-color"`

	LineColor     *ColorOrFunctionWrapperType  `json:"line-color"`
	LineWidth     *NumberOrFunctionWrapperType `json:"line-width"`
	LineOpacity   *NumberOrFunctionWrapperType `json:"line-opacity"`
	LineDashArray []float64                    `json:"line-dasharray"` // in line widths

	TextColor     *ColorOrFunctionWrapperType  `json:"text-color"`
	TextHaloColor *ColorOrFunctionWrapperType  `json:"text-halo-color"`
	TextHaloWidth *NumberOrFunctionWrapperType `json:"text-halo-width"`
	TextOpacity   *NumberOrFunctionWrapperType `json:"text-opacity"`

	CircleColor       *ColorOrFunctionWrapperType  `json:"circle-color"`
	CircleRadius      *NumberOrFunctionWrapperType `json:"circle-radius"`
	CircleOpacity     *NumberOrFunctionWrapperType `json:"circle-opacity"`
	CircleStrokeColor *ColorOrFunctionWrapperType  `json:"circle-stroke-color"`
	CircleStrokeWidth *NumberOrFunctionWrapperType `json:"circle-stroke-width"`
}

// zoomDependent reports whether any paint property changes with the zoom level
func (p *Paint) zoomDependent() bool {
	colors := []*ColorOrFunctionWrapperType{p.FillColor, p.FillOutlineColor, p.LineColor, p.TextColor, p.TextHaloColor, p.CircleColor, p.CircleStrokeColor}
	for _, c := range colors {
		if c.IsFunction() {
			return true
		}
	}
	numbers := []*NumberOrFunctionWrapperType{p.FillOpacity, p.LineWidth, p.LineOpacity, p.TextHaloWidth, p.TextOpacity, p.CircleRadius, p.CircleOpacity, p.CircleStrokeWidth}
	for _, n := range numbers {
		if n.IsFunction() {
			return true
		}
	}
	return false
}

// colorAt evaluates a color with its opacity folded in. Opacity defaults to 1.
func colorAt(c *ColorOrFunctionWrapperType, opacity *NumberOrFunctionWrapperType, zoom float64) color.Color {
	evaluated := c.GetColorAtZoomLevel(zoom)
	if evaluated == nil || opacity == nil {
		return evaluated
	}
	return styling.WithOpacity(evaluated, opacity.GetValueAtZoomLevel(zoom))
}

func valueAt(n *NumberOrFunctionWrapperType, zoom, defaultValue float64) float64 {
	if n == nil {
		return defaultValue
	}
	return n.GetValueAtZoomLevel(zoom)
}
