package styling

import (
	"image/color"
)

type FilterMode string

const (
	FilterModeAll   FilterMode = "all"
	FilterModeFirst FilterMode = "first"
)

// FeatureTypeStyle is a named, ordered list of rules that layers refer to by name
type FeatureTypeStyle struct {
	Name       string
	Rules      []*Rule
	FilterMode FilterMode
}

type Rule struct {
	Name                string
	Filter              Filter // nil matches everything
	ElseFilter          bool
	MinScaleDenominator float64
	MaxScaleDenominator float64 // 0 means no upper bound
	Symbolizers         []Symbolizer
}

func (r *Rule) ActiveAt(scaleDenominator float64) bool {
	return inScaleWindow(scaleDenominator, r.MinScaleDenominator, r.MaxScaleDenominator)
}

func (r *Rule) matches(feature FeatureAttributes) bool {
	return r.Filter == nil || r.Filter.Matches(feature)
}

// MatchingRules returns the rules that apply to a feature at the scale denominator.
// Else rules only apply when no other active rule matched.
func (fts *FeatureTypeStyle) MatchingRules(feature FeatureAttributes, scaleDenominator float64) []*Rule {
	var matched, elseRules []*Rule
	for _, rule := range fts.Rules {
		if !rule.ActiveAt(scaleDenominator) {
			continue
		}

		if rule.ElseFilter {
			elseRules = append(elseRules, rule)
			continue
		}

		if !rule.matches(feature) {
			continue
		}

		matched = append(matched, rule)
		if fts.FilterMode == FilterModeFirst {
			break
		}
	}

	if len(matched) == 0 {
		return elseRules
	}

	return matched
}

type SymbolizerType string

const (
	SymbolizerTypePolygon SymbolizerType = "polygon"
	SymbolizerTypeLine    SymbolizerType = "line"
	SymbolizerTypeText    SymbolizerType = "text"
	SymbolizerTypeMarkers SymbolizerType = "markers"
)

type Symbolizer interface {
	SymbolizerType() SymbolizerType
}

type PolygonSymbolizer struct {
	Fill color.Color
}

func (*PolygonSymbolizer) SymbolizerType() SymbolizerType {
	return SymbolizerTypePolygon
}

type LineCap string

const (
	LineCapButt   LineCap = "butt"
	LineCapRound  LineCap = "round"
	LineCapSquare LineCap = "square"
)

type LineJoin string

const (
	LineJoinMiter LineJoin = "miter"
	LineJoinRound LineJoin = "round"
	LineJoinBevel LineJoin = "bevel"
)

type LineSymbolizer struct {
	Stroke      color.Color
	StrokeWidth float64
	DashArray   []float64
	LineCap     LineCap
	LineJoin    LineJoin
}

func (*LineSymbolizer) SymbolizerType() SymbolizerType {
	return SymbolizerTypeLine
}

type TextPlacement string

const (
	TextPlacementPoint TextPlacement = "point"
	TextPlacementLine  TextPlacement = "line"
)

type TextSymbolizer struct {
	Name       *TextExpression
	FaceName   string
	Size       float64
	Fill       color.Color
	HaloFill   color.Color
	HaloRadius float64
	DX         float64
	DY         float64
	Placement  TextPlacement
}

func (*TextSymbolizer) SymbolizerType() SymbolizerType {
	return SymbolizerTypeText
}

// MarkersSymbolizer draws a circle on each point
type MarkersSymbolizer struct {
	Fill        color.Color
	Stroke      color.Color
	StrokeWidth float64
	Width       float64
}

func (*MarkersSymbolizer) SymbolizerType() SymbolizerType {
	return SymbolizerTypeMarkers
}
