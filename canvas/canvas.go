package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/jamesrr39/goutil/errorsx"
)

// Canvas is the RGBA pixel buffer a map is painted into.
// Pixels are row-major, 4 bytes each, with premultiplied alpha.
type Canvas struct {
	*image.RGBA
}

func New(width, height int) *Canvas {
	return &Canvas{image.NewRGBA(image.Rect(0, 0, width, height))}
}

func NewWithBackground(width, height int, c color.Color) *Canvas {
	cnv := New(width, height)
	cnv.Fill(c)
	return cnv
}

// FromRaw copies a raw RGBA buffer into a new canvas
func FromRaw(pix []byte, width, height int) (*Canvas, errorsx.Error) {
	if width <= 0 || height <= 0 {
		return nil, errorsx.Errorf("invalid canvas size %dx%d", width, height)
	}

	expectedLen := width * height * 4
	if len(pix) != expectedLen {
		return nil, errorsx.Errorf("raw buffer is %d bytes, expected %d for %dx%d", len(pix), expectedLen, width, height)
	}

	cnv := New(width, height)
	copy(cnv.Pix, pix)
	return cnv, nil
}

func (c *Canvas) Width() int {
	return c.Rect.Dx()
}

func (c *Canvas) Height() int {
	return c.Rect.Dy()
}

// Raw is the pixel buffer itself, not a copy
func (c *Canvas) Raw() []byte {
	return c.Pix
}

// Fill replaces every pixel with the color. A nil color clears the canvas to transparent.
func (c *Canvas) Fill(col color.Color) {
	if col == nil {
		c.Clear()
		return
	}
	draw.Draw(c.RGBA, c.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) Clear() {
	clear(c.Pix)
}
