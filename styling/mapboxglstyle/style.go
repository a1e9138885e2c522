package mapboxglstyle

import (
	"encoding/json"
	"io"
	"os"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/vtmap"
)

const defaultBufferSize = 64

// StyleDocument is a Mapbox GL style document (https://docs.mapbox.com/mapbox-gl-js/style-spec/)
type StyleDocument struct {
	Version  int      `json:"version"`
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Metadata Metadata `json:"metadata"`
	Sources  Sources  `json:"sources"`
	Sprite   string   `json:"sprite"`
	Glyphs   string   `json:"glyphs"`
	Layers   []*Layer `json:"layers"`
}

func ParseFile(path string) (*styling.Style, errorsx.Error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, vtmap.NewParseError(errorsx.Wrap(err, "path", path))
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a GL style document. Each layer drawing from a source layer becomes a style layer named after the source layer,
// and the background layer sets the style background.
func Parse(reader io.Reader) (*styling.Style, errorsx.Error) {
	var doc StyleDocument
	err := json.NewDecoder(reader).Decode(&doc)
	if err != nil {
		return nil, vtmap.NewParseError(errorsx.Wrap(err))
	}

	style, err := doc.toStyle()
	if err != nil {
		return nil, vtmap.NewParseError(err)
	}

	return style, nil
}

func (doc *StyleDocument) toStyle() (*styling.Style, errorsx.Error) {
	if doc.Version != 8 {
		return nil, errorsx.Errorf("unsupported style version: %d", doc.Version)
	}

	style := styling.NewStyle(styling.DefaultWidth, styling.DefaultHeight)
	style.ID = doc.ID
	if style.ID == "" {
		style.ID = doc.Name
	}
	style.BufferSize = defaultBufferSize

	for _, glLayer := range doc.Layers {
		if glLayer.ID == "" {
			return nil, errorsx.Errorf("layer without an id")
		}
		if _, ok := style.Styles[glLayer.ID]; ok {
			return nil, errorsx.Errorf("duplicate layer id: %q", glLayer.ID)
		}

		switch glLayer.Type {
		case LayerTypeBackground:
			background := colorAt(glLayer.Paint.BackgroundColor, glLayer.Paint.BackgroundOpacity, 0)
			if background != nil {
				style.Background = background
			}
			continue
		case LayerTypeFill, LayerTypeLine, LayerTypeSymbol, LayerTypeCircle:
		default:
			// raster, hillshade, heatmap and extrusions are not drawn
			continue
		}

		if glLayer.SourceLayer == "" {
			continue
		}

		layer, fts, err := glLayer.toStylingLayer()
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}

		style.Layers = append(style.Layers, layer)
		style.Styles[fts.Name] = fts
	}

	err := style.Validate()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return style, nil
}
