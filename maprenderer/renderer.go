package maprenderer

import (
	"context"
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/canvas"
	"github.com/jamesrr39/vtrender/fonts"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/vtmap"
)

type TileRenderer interface {
	RenderTile(ctx context.Context, style *styling.Style, tileRequest *vtmap.TileRequest, tileSize int, opts RenderOpts) ([]byte, errorsx.Error)
	RenderTextTile(tileSize int, text string, format string) ([]byte, errorsx.Error)
}

var _ TileRenderer = &Environment{}

// RenderTile renders one vector tile onto a square canvas on a map of its own, so it can be called from several goroutines
func (env *Environment) RenderTile(ctx context.Context, style *styling.Style, tileRequest *vtmap.TileRequest, tileSize int, opts RenderOpts) ([]byte, errorsx.Error) {
	m := NewWithEnvironment(env, tileSize, tileSize)
	m.setStyle(style.Copy())
	m.tileRequest = tileRequest

	return m.RenderContext(ctx, opts)
}

// RenderTextTile draws a line of text on a transparent tile, for tiles there is no data for
func (env *Environment) RenderTextTile(tileSize int, text string, format string) ([]byte, errorsx.Error) {
	cnv, err := env.allocator.Acquire(tileSize, tileSize)
	if err != nil {
		return nil, err
	}
	defer env.allocator.Release(cnv)

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(env.fonts.Face(fonts.DefaultFaceName))
	ctx.SetFontSize(16.0)
	ctx.SetClip(cnv.Bounds())
	ctx.SetDst(cnv.RGBA)
	ctx.SetSrc(image.NewUniform(color.Black))

	_, drawErr := ctx.DrawString(text, freetype.Pt(tileSize/8, tileSize/2))
	if drawErr != nil {
		return nil, errorsx.Wrap(drawErr)
	}

	return canvas.Encode(cnv, format)
}
