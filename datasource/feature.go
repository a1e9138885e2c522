package datasource

import (
	"context"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/paulmach/orb"
)

// Feature is a geometry in the map's reference system, plus its attributes
type Feature struct {
	ID         interface{}
	Geometry   orb.Geometry
	Properties map[string]interface{}
}

var _ styling.FeatureAttributes = &Feature{}

func (f *Feature) Attribute(key string) (interface{}, bool) {
	v, ok := f.Properties[key]
	return v, ok
}

func (f *Feature) GeometryType() styling.GeometryType {
	return GeometryTypeOf(f.Geometry)
}

func GeometryTypeOf(geom orb.Geometry) styling.GeometryType {
	switch geom.(type) {
	case orb.Point, orb.MultiPoint:
		return styling.GeometryTypePoint
	case orb.LineString, orb.MultiLineString:
		return styling.GeometryTypeLineString
	case orb.Polygon, orb.MultiPolygon, orb.Ring, orb.Bound:
		return styling.GeometryTypePolygon
	default:
		return styling.GeometryTypeUnknown
	}
}

type Query struct {
	Bound            orb.Bound
	ScaleDenominator float64
}

// FeatureSource supplies the features of one style layer
type FeatureSource interface {
	Features(ctx context.Context, query Query) ([]*Feature, errorsx.Error)
	Envelope() orb.Bound
}

// queryBound is the part of the query bound inside the envelope. ok is false when they do not overlap.
func queryBound(query Query, envelope orb.Bound) (orb.Bound, bool) {
	if query.Bound.IsZero() {
		return envelope, true
	}

	if !query.Bound.Intersects(envelope) {
		return orb.Bound{}, false
	}

	return orb.Bound{
		Min: orb.Point{max(query.Bound.Min.X(), envelope.Min.X()), max(query.Bound.Min.Y(), envelope.Min.Y())},
		Max: orb.Point{min(query.Bound.Max.X(), envelope.Max.X()), min(query.Bound.Max.Y(), envelope.Max.Y())},
	}, true
}

func filterByBound(features []*Feature, bound orb.Bound) []*Feature {
	var filtered []*Feature
	for _, feature := range features {
		if feature.Geometry == nil {
			continue
		}
		if !feature.Geometry.Bound().Intersects(bound) {
			continue
		}
		filtered = append(filtered, feature)
	}
	return filtered
}
