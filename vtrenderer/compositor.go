package vtrenderer

import (
	"context"
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/vtrender/canvas"
	"github.com/jamesrr39/vtrender/datasource"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/paulmach/orb"
)

type RenderOptions struct {
	ScaleDenominator float64 // forced scale denominator; <= 0 means derived
	ScaleFactor      float64 // symbol size multiplier; 0 means 1
	TileResolution   uint32  // tile-local coordinate span; 0 means each layer's own extent
}

// Compositor paints a style's layers from the layer records of a vector tile
type Compositor struct {
	logger      *logpkg.Logger
	engine      Engine
	datasources *datasource.Registry
}

func NewCompositor(logger *logpkg.Logger, engine Engine, datasources *datasource.Registry) *Compositor {
	return &Compositor{
		logger:      logger,
		engine:      engine,
		datasources: datasources,
	}
}

// renderRequest is the geometry of one render call
type renderRequest struct {
	extent           orb.Bound
	bufferedExtent   orb.Bound
	scale            float64
	scaleDenominator float64
}

func newRenderRequest(style *styling.Style, extent orb.Bound, scaleDenominator float64) renderRequest {
	return renderRequest{
		extent:           extent,
		bufferedExtent:   vtmap.BufferedExtent(extent, style.Width, style.BufferSize),
		scale:            extentScale(style, extent),
		scaleDenominator: scaleDenominator,
	}
}

// extentScale is the meters per pixel of a mercator extent drawn across the style's width
func extentScale(style *styling.Style, extent orb.Bound) float64 {
	return (extent.Right() - extent.Left()) / float64(style.Width)
}

func (c *Compositor) newPaintJob(style *styling.Style, layer *styling.Layer, source datasource.FeatureSource, req renderRequest, opts RenderOptions) PaintJob {
	return PaintJob{
		Layer:            layer.Copy(),
		Styles:           style.Styles,
		Source:           source,
		Extent:           req.extent,
		BufferedExtent:   req.bufferedExtent,
		Scale:            req.scale,
		ScaleDenominator: req.scaleDenominator,
		Width:            style.Width,
		Height:           style.Height,
		BufferSize:       style.BufferSize,
		ScaleFactor:      opts.ScaleFactor,
	}
}

// Composite paints the tile onto the canvas. Layers are painted in style order, and each layer once per matching layer record, in payload order.
// Datasource layers of the style are painted over the tile extent first.
// On error, whatever was painted before the failure stays on the canvas.
func (c *Compositor) Composite(ctx context.Context, cnv *canvas.Canvas, style *styling.Style, tileRequest *vtmap.TileRequest, opts RenderOptions) errorsx.Error {
	end := startSpan(ctx, fmt.Sprintf("composite tile %s", tileRequest.Coord))
	defer end()

	extent := vtmap.TileExtent(tileRequest.Coord, uint(style.Width))
	// a geographic style applies its degree factor to the tile's meters per pixel too
	req := newRenderRequest(style, extent, styling.EffectiveScaleDenominator(style, opts.ScaleDenominator, extentScale(style, extent)))

	c.logger.Debug("compositing tile %s: extent %v, scale denominator %f", tileRequest.Coord, extent, req.scaleDenominator)

	err := c.paintDatasourceLayers(ctx, cnv, style, req, opts)
	if err != nil {
		return err
	}

	index, err := tileRequest.Index()
	if err != nil {
		return vtmap.NewRenderError(err)
	}

	for _, layer := range style.Layers {
		if len(layer.Datasource) != 0 || !layer.VisibleAt(req.scaleDenominator) {
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return vtmap.NewRenderError(errorsx.Wrap(ctxErr))
		}

		chunks := index.Chunks(layer.Name)
		c.logger.Debug("layer %q: %d layer records", layer.Name, len(chunks))

		for _, chunk := range chunks {
			source := datasource.NewVectorTileSource(chunk, tileRequest.Coord, opts.TileResolution)
			source.SetEnvelope(req.bufferedExtent)

			err := c.engine.PaintLayer(ctx, cnv, c.newPaintJob(style, layer, source, req, opts))
			if err != nil {
				return vtmap.NewRenderError(errorsx.Wrap(err, "tile", tileRequest.Coord.String()))
			}
		}
	}

	return nil
}

// RenderExtent paints the style's datasource layers over an arbitrary spherical mercator extent, for maps without vector data
func (c *Compositor) RenderExtent(ctx context.Context, cnv *canvas.Canvas, style *styling.Style, extent orb.Bound, opts RenderOptions) errorsx.Error {
	end := startSpan(ctx, "render extent")
	defer end()

	req := newRenderRequest(style, extent, styling.MercatorScaleDenominator(style, opts.ScaleDenominator, extentScale(style, extent)))

	return c.paintDatasourceLayers(ctx, cnv, style, req, opts)
}

func (c *Compositor) paintDatasourceLayers(ctx context.Context, cnv *canvas.Canvas, style *styling.Style, req renderRequest, opts RenderOptions) errorsx.Error {
	for _, layer := range style.Layers {
		if len(layer.Datasource) == 0 || !layer.VisibleAt(req.scaleDenominator) {
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return vtmap.NewRenderError(errorsx.Wrap(ctxErr))
		}

		source, err := c.datasources.Create(layer.Datasource)
		if err != nil {
			return vtmap.NewRenderError(errorsx.Wrap(err, "layer", layer.Name))
		}

		err = c.engine.PaintLayer(ctx, cnv, c.newPaintJob(style, layer, source, req, opts))
		if err != nil {
			return vtmap.NewRenderError(err)
		}
	}

	return nil
}
