package vtrenderer

import (
	"context"
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/vtrender/canvas"
	"github.com/jamesrr39/vtrender/datasource"
	"github.com/jamesrr39/vtrender/fonts"
	"github.com/paulmach/orb/clip"
)

// RasterRenderer paints layers with draw2d, and text with freetype
type RasterRenderer struct {
	logger *logpkg.Logger
	fonts  *fonts.Registry
}

var _ Engine = &RasterRenderer{}

func NewRasterRenderer(logger *logpkg.Logger, fontRegistry *fonts.Registry) *RasterRenderer {
	return &RasterRenderer{
		logger: logger,
		fonts:  fontRegistry,
	}
}

// PaintLayer draws the features of the job's source with each of the layer's styles, in order.
// Within a style, each feature is drawn with every rule that applies to it before moving on to the next feature.
func (rr *RasterRenderer) PaintLayer(ctx context.Context, cnv *canvas.Canvas, job PaintJob) errorsx.Error {
	end := startSpan(ctx, fmt.Sprintf("paint layer %q", job.Layer.Name))
	defer end()

	features, err := job.Source.Features(ctx, datasource.Query{
		Bound:            job.BufferedExtent,
		ScaleDenominator: job.ScaleDenominator,
	})
	if err != nil {
		return errorsx.Wrap(err, "layer", job.Layer.Name)
	}

	p := newPainter(cnv, job, rr.fonts)

	for _, styleName := range job.Layer.StyleNames {
		fts, ok := job.Styles[styleName]
		if !ok {
			rr.logger.Warn("layer %q refers to unknown style %q", job.Layer.Name, styleName)
			continue
		}

		for _, feature := range features {
			rules := fts.MatchingRules(feature, job.ScaleDenominator)
			if len(rules) == 0 {
				continue
			}

			geom := clip.Geometry(job.BufferedExtent, feature.Geometry)
			if geom == nil {
				continue
			}

			for _, rule := range rules {
				for _, symbolizer := range rule.Symbolizers {
					err := p.draw(feature, geom, symbolizer)
					if err != nil {
						return errorsx.Wrap(err, "layer", job.Layer.Name, "style", styleName)
					}
				}
			}
		}
	}

	rr.logger.Debug("painted layer %q: %d features", job.Layer.Name, len(features))

	return nil
}
