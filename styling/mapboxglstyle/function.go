package mapboxglstyle

import (
	"encoding/json"
	"image/color"
	"math"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/styling"
)

type numberStop struct {
	Zoom  float64
	Value float64
}

// NumberOrFunctionWrapperType is either a plain number, or a zoom function such as {"base": 1.4, "stops": [[10, 8], [20, 14]]}
type NumberOrFunctionWrapperType struct {
	Value float64
	Base  float64
	Stops []numberStop
}

func (n *NumberOrFunctionWrapperType) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		n.Value = value
		return nil
	}

	var fn struct {
		Base  *float64     `json:"base"`
		Stops [][2]float64 `json:"stops"`
	}
	err := json.Unmarshal(data, &fn)
	if err != nil {
		return errorsx.Wrap(err, "value", string(data))
	}

	if len(fn.Stops) == 0 {
		return errorsx.Errorf("function without stops: %s", data)
	}

	n.Base = 1
	if fn.Base != nil {
		n.Base = *fn.Base
	}
	for _, stop := range fn.Stops {
		n.Stops = append(n.Stops, numberStop{stop[0], stop[1]})
	}
	return nil
}

func (n *NumberOrFunctionWrapperType) IsFunction() bool {
	return n != nil && len(n.Stops) > 0
}

// GetValueAtZoomLevel evaluates the function, interpolating exponentially with the function's base between stops
func (n *NumberOrFunctionWrapperType) GetValueAtZoomLevel(zoom float64) float64 {
	if n == nil {
		return 0
	}
	if !n.IsFunction() {
		return n.Value
	}

	lower, upper, t := n.interpolationPoint(zoom)
	return n.Stops[lower].Value + (n.Stops[upper].Value-n.Stops[lower].Value)*t
}

func (n *NumberOrFunctionWrapperType) interpolationPoint(zoom float64) (lower, upper int, t float64) {
	return interpolationPoint(len(n.Stops), func(i int) float64 { return n.Stops[i].Zoom }, n.Base, zoom)
}

type colorStop struct {
	Zoom  float64
	Color color.NRGBA
}

// ColorOrFunctionWrapperType is either a plain color, or a zoom function such as {"stops": [[6, "#fff"], [10, "#eee"]]}
type ColorOrFunctionWrapperType struct {
	Color *color.NRGBA
	Base  float64
	Stops []colorStop
}

func (c *ColorOrFunctionWrapperType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := styling.ParseColor(s)
		if err != nil {
			return err
		}
		c.Color = &parsed
		return nil
	}

	var fn struct {
		Base  *float64             `json:"base"`
		Stops [][2]json.RawMessage `json:"stops"`
	}
	err := json.Unmarshal(data, &fn)
	if err != nil {
		return errorsx.Wrap(err, "value", string(data))
	}

	if len(fn.Stops) == 0 {
		return errorsx.Errorf("function without stops: %s", data)
	}

	c.Base = 1
	if fn.Base != nil {
		c.Base = *fn.Base
	}
	for _, stop := range fn.Stops {
		var zoom float64
		var colorString string
		if err := json.Unmarshal(stop[0], &zoom); err != nil {
			return errorsx.Wrap(err, "stop", string(stop[0]))
		}
		if err := json.Unmarshal(stop[1], &colorString); err != nil {
			return errorsx.Wrap(err, "stop", string(stop[1]))
		}
		parsed, err := styling.ParseColor(colorString)
		if err != nil {
			return err
		}
		c.Stops = append(c.Stops, colorStop{zoom, parsed})
	}
	return nil
}

func (c *ColorOrFunctionWrapperType) IsFunction() bool {
	return c != nil && len(c.Stops) > 0
}

// GetColorAtZoomLevel evaluates the color; nil if no color was given
func (c *ColorOrFunctionWrapperType) GetColorAtZoomLevel(zoom float64) color.Color {
	if c == nil {
		return nil
	}
	if !c.IsFunction() {
		if c.Color == nil {
			return nil
		}
		return *c.Color
	}

	lower, upper, t := interpolationPoint(len(c.Stops), func(i int) float64 { return c.Stops[i].Zoom }, c.Base, zoom)
	from, to := c.Stops[lower].Color, c.Stops[upper].Color
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.NRGBA{lerp(from.R, to.R), lerp(from.G, to.G), lerp(from.B, to.B), lerp(from.A, to.A)}
}

// interpolationPoint finds the stops either side of zoom, and how far between them zoom is.
// Outside of the stops, the first or last stop is used.
func interpolationPoint(stopCount int, stopZoom func(i int) float64, base, zoom float64) (lower, upper int, t float64) {
	if zoom <= stopZoom(0) {
		return 0, 0, 0
	}
	last := stopCount - 1
	if zoom >= stopZoom(last) {
		return last, last, 0
	}

	for i := 0; i < last; i++ {
		if zoom < stopZoom(i+1) {
			lower, upper = i, i+1
			break
		}
	}

	span := stopZoom(upper) - stopZoom(lower)
	progress := zoom - stopZoom(lower)
	if span == 0 {
		return lower, upper, 0
	}

	if base == 1 {
		return lower, upper, progress / span
	}

	return lower, upper, (math.Pow(base, progress) - 1) / (math.Pow(base, span) - 1)
}
