package styling

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		{"#1a2B3c", color.NRGBA{0x1a, 0x2b, 0x3c, 0xff}},
		{"#1a2b3c80", color.NRGBA{0x1a, 0x2b, 0x3c, 0x80}},
		{" steelblue ", color.NRGBA{0x46, 0x82, 0xb4, 0xff}},
		{"transparent", color.NRGBA{}},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 0xff}},
		{"rgba(10,20,30,0.5)", color.NRGBA{10, 20, 30, 128}},
		{"rgb(100%, 0%, 50%)", color.NRGBA{255, 0, 128, 0xff}},
		{"hsl(0, 100%, 50%)", color.NRGBA{255, 0, 0, 0xff}},
		{"hsl(120, 100%, 25%)", color.NRGBA{0, 128, 0, 0xff}},
		{"hsla(240, 100%, 50%, 0)", color.NRGBA{0, 0, 255, 0}},
		{"hsl(0, 0%, 50%)", color.NRGBA{128, 128, 128, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestParseColor_errors(t *testing.T) {
	for _, in := range []string{"", "#12", "#zzzzzz", "rgb(1,2)", "cmyk(1,2,3,4)", "notacolor", "rgb(a,b,c)"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseColor(in)
			assert.Error(t, err)
		})
	}
}

func TestWithOpacity(t *testing.T) {
	assert.Equal(t, color.NRGBA{10, 20, 30, 128}, WithOpacity(color.NRGBA{10, 20, 30, 255}, 0.5))
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, WithOpacity(color.NRGBA{10, 20, 30, 255}, 1))
	assert.Nil(t, WithOpacity(nil, 0.5))
}
