package styling

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

var namedColors = map[string]color.NRGBA{
	"transparent": {0, 0, 0, 0},
	"black":       {0, 0, 0, 0xff},
	"white":       {0xff, 0xff, 0xff, 0xff},
	"red":         {0xff, 0, 0, 0xff},
	"green":       {0, 0x80, 0, 0xff},
	"lime":        {0, 0xff, 0, 0xff},
	"blue":        {0, 0, 0xff, 0xff},
	"yellow":      {0xff, 0xff, 0, 0xff},
	"orange":      {0xff, 0xa5, 0, 0xff},
	"purple":      {0x80, 0, 0x80, 0xff},
	"gray":        {0x80, 0x80, 0x80, 0xff},
	"grey":        {0x80, 0x80, 0x80, 0xff},
	"silver":      {0xc0, 0xc0, 0xc0, 0xff},
	"brown":       {0xa5, 0x2a, 0x2a, 0xff},
	"pink":        {0xff, 0xc0, 0xcb, 0xff},
	"navy":        {0, 0, 0x80, 0xff},
	"steelblue":   {0x46, 0x82, 0xb4, 0xff},
	"lightblue":   {0xad, 0xd8, 0xe6, 0xff},
	"beige":       {0xf5, 0xf5, 0xdc, 0xff},
}

// ParseColor parses CSS-like colors: #rgb, #rrggbb, #rrggbbaa, rgb(), rgba(), hsl(), hsla() and common names
func ParseColor(s string) (color.NRGBA, errorsx.Error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if named, ok := namedColors[s]; ok {
		return named, nil
	}

	if strings.HasPrefix(s, "#") {
		return parseHexColor(s)
	}

	open := strings.Index(s, "(")
	if open == -1 || !strings.HasSuffix(s, ")") {
		return color.NRGBA{}, errorsx.Errorf("couldn't understand color %q", s)
	}

	fn := s[:open]
	args := strings.Split(s[open+1:len(s)-1], ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}

	switch fn {
	case "rgb", "rgba":
		return parseRGBFunc(s, args)
	case "hsl", "hsla":
		return parseHSLFunc(s, args)
	}

	return color.NRGBA{}, errorsx.Errorf("unknown color function %q", fn)
}

func MustParseColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WithOpacity multiplies the alpha of the color by opacity
func WithOpacity(c color.Color, opacity float64) color.Color {
	if c == nil || opacity >= 1 {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * clamp01(opacity)))
	return n
}

func parseHexColor(s string) (color.NRGBA, errorsx.Error) {
	hex := s[1:]
	if len(hex) == 3 || len(hex) == 4 {
		var expanded strings.Builder
		for _, r := range hex {
			expanded.WriteRune(r)
			expanded.WriteRune(r)
		}
		hex = expanded.String()
	}

	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, errorsx.Errorf("bad hex color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errorsx.Wrap(err, "color", s)
	}

	if len(hex) == 6 {
		return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil
	}
	return color.NRGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

func parseRGBFunc(s string, args []string) (color.NRGBA, errorsx.Error) {
	if len(args) != 3 && len(args) != 4 {
		return color.NRGBA{}, errorsx.Errorf("expected 3 or 4 arguments in color %q", s)
	}

	var channels [3]uint8
	for i := 0; i < 3; i++ {
		v, err := parseChannel(args[i], 255)
		if err != nil {
			return color.NRGBA{}, errorsx.Wrap(err, "color", s)
		}
		channels[i] = uint8(math.Round(v))
	}

	alpha, err := parseAlpha(args)
	if err != nil {
		return color.NRGBA{}, errorsx.Wrap(err, "color", s)
	}

	return color.NRGBA{channels[0], channels[1], channels[2], alpha}, nil
}

func parseHSLFunc(s string, args []string) (color.NRGBA, errorsx.Error) {
	if len(args) != 3 && len(args) != 4 {
		return color.NRGBA{}, errorsx.Errorf("expected 3 or 4 arguments in color %q", s)
	}

	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return color.NRGBA{}, errorsx.Wrap(err, "color", s)
	}
	sat, err := parseChannel(args[1], 1)
	if err != nil {
		return color.NRGBA{}, errorsx.Wrap(err, "color", s)
	}
	light, err := parseChannel(args[2], 1)
	if err != nil {
		return color.NRGBA{}, errorsx.Wrap(err, "color", s)
	}
	alpha, err := parseAlpha(args)
	if err != nil {
		return color.NRGBA{}, errorsx.Wrap(err, "color", s)
	}

	r, g, b := hslToRGB(math.Mod(math.Mod(h, 360)+360, 360)/360, sat, light)

	return color.NRGBA{r, g, b, alpha}, nil
}

// parseChannel parses a number, or a percentage of max
func parseChannel(arg string, max float64) (float64, error) {
	if strings.HasSuffix(arg, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
		if err != nil {
			return 0, err
		}
		return clamp01(v/100) * max, nil
	}

	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, err
	}
	return math.Max(0, math.Min(v, max)), nil
}

func parseAlpha(args []string) (uint8, error) {
	if len(args) < 4 {
		return 0xff, nil
	}
	a, err := parseChannel(args[3], 1)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(a * 255)), nil
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	toChannel := func(t float64) uint8 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 0.5:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return uint8(math.Round(v * 255))
	}

	return toChannel(h + 1.0/3), toChannel(h), toChannel(h - 1.0/3)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
