package styling

import (
	"image/color"
	"math"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
)

const (
	DefaultSRS    = "+init=epsg:3857"
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Style is a loaded style document. Layers are painted in slice order.
type Style struct {
	ID               string
	SRS              string
	Background       color.Color
	BufferSize       int
	Width            int
	Height           int
	ScaleDenominator float64 // <= 0 means derived from the render extent
	Scale            float64 // zoom bias applied to the scale denominator, 0 means 1
	MaxExtent        *orb.Bound
	FontDirectory    string
	Layers           []*Layer
	Styles           map[string]*FeatureTypeStyle

	storedLayerStatus []bool
}

func NewStyle(width, height int) *Style {
	return &Style{
		SRS:    DefaultSRS,
		Width:  width,
		Height: height,
		Scale:  1,
		Styles: make(map[string]*FeatureTypeStyle),
	}
}

// Layer is one layer of a style. Name is the key matched against tile layer names.
type Layer struct {
	Name                string
	SRS                 string
	MinScaleDenominator float64 // 0 means no lower bound
	MaxScaleDenominator float64 // 0 or +Inf means no upper bound
	StyleNames          []string
	Active              bool
	Datasource          DatasourceParams
}

// DatasourceParams are the parameters of a non-tile datasource, e.g. "type" and "file"
type DatasourceParams map[string]string

func NewLayer(name string, styleNames ...string) *Layer {
	return &Layer{
		Name:                name,
		MaxScaleDenominator: math.Inf(1),
		StyleNames:          styleNames,
		Active:              true,
	}
}

func (l *Layer) Copy() *Layer {
	copied := *l
	copied.StyleNames = append([]string(nil), l.StyleNames...)
	if l.Datasource != nil {
		copied.Datasource = make(DatasourceParams, len(l.Datasource))
		for k, v := range l.Datasource {
			copied.Datasource[k] = v
		}
	}
	return &copied
}

func (s *Style) EffectiveScale() float64 {
	if s.Scale == 0 {
		return 1
	}
	return s.Scale
}

func (s *Style) GetBackground() color.Color {
	if s.Background == nil {
		return color.Transparent
	}
	return s.Background
}

func (s *Style) GetStyleID() string {
	return s.ID
}

// Copy makes a copy that can be modified without affecting the original.
// Feature type styles are shared, as they are not modified after loading.
func (s *Style) Copy() *Style {
	copied := *s
	copied.Layers = make([]*Layer, len(s.Layers))
	for i, layer := range s.Layers {
		copied.Layers[i] = layer.Copy()
	}
	copied.Styles = make(map[string]*FeatureTypeStyle, len(s.Styles))
	for name, fts := range s.Styles {
		copied.Styles[name] = fts
	}
	if s.MaxExtent != nil {
		maxExtent := *s.MaxExtent
		copied.MaxExtent = &maxExtent
	}
	copied.storedLayerStatus = append([]bool(nil), s.storedLayerStatus...)
	return &copied
}

func (s *Style) Validate() errorsx.Error {
	if s.Width <= 0 || s.Height <= 0 {
		return errorsx.Errorf("invalid canvas size %dx%d", s.Width, s.Height)
	}

	if s.BufferSize < 0 {
		return errorsx.Errorf("buffer size must not be negative, but was %d", s.BufferSize)
	}

	for _, layer := range s.Layers {
		if layer.MaxScaleDenominator > 0 && layer.MinScaleDenominator >= layer.MaxScaleDenominator {
			return errorsx.Errorf("layer %q: minimum scale denominator (%v) is not less than the maximum (%v)", layer.Name, layer.MinScaleDenominator, layer.MaxScaleDenominator)
		}
	}

	return nil
}

type LayerStatus int

const (
	// LayerStatusExclude switches a layer off
	LayerStatusExclude LayerStatus = -1
	// LayerStatusDefault leaves a layer as it is
	LayerStatusDefault LayerStatus = 0
	// LayerStatusInclude switches a layer on
	LayerStatusInclude LayerStatus = 1
)

type LayerSelector interface {
	Select(layerName string) LayerStatus
}

type SelectorFunc func(layerName string) LayerStatus

func (f SelectorFunc) Select(layerName string) LayerStatus {
	return f(layerName)
}

// SelectLayers switches layers on or off. The statuses from before the first call are kept, for ResetLayers.
func (s *Style) SelectLayers(selector LayerSelector) {
	if s.storedLayerStatus == nil {
		s.storedLayerStatus = s.layerStatus()
	}

	for _, layer := range s.Layers {
		switch selector.Select(layer.Name) {
		case LayerStatusInclude:
			layer.Active = true
		case LayerStatusExclude:
			layer.Active = false
		}
	}
}

// ResetLayers restores the layer statuses from before SelectLayers was called
func (s *Style) ResetLayers() {
	if s.storedLayerStatus == nil || len(s.storedLayerStatus) != len(s.Layers) {
		s.storedLayerStatus = nil
		return
	}

	for i, active := range s.storedLayerStatus {
		s.Layers[i].Active = active
	}
	s.storedLayerStatus = nil
}

func (s *Style) layerStatus() []bool {
	active := make([]bool, len(s.Layers))
	for i, layer := range s.Layers {
		active[i] = layer.Active
	}
	return active
}
