package datasource

import (
	"context"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

const DatasourceTypeGeoJSON = "geojson"

// GeoJSONSource is an in-memory feature collection read from a GeoJSON file
type GeoJSONSource struct {
	features []*Feature
	envelope orb.Bound
}

var _ FeatureSource = &GeoJSONSource{}

// NewGeoJSONSource reads the file. Coordinates are lon/lat, and are projected into spherical mercator unless mercator is true.
func NewGeoJSONSource(fs gofs.Fs, path string, mercator bool) (*GeoJSONSource, errorsx.Error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}

	source := new(GeoJSONSource)
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}

		geom := f.Geometry
		if !mercator {
			geom = project.Geometry(geom, project.WGS84.ToMercator)
		}

		feature := &Feature{
			ID:         f.ID,
			Geometry:   geom,
			Properties: f.Properties,
		}
		if feature.ID == nil {
			feature.ID = i
		}

		if len(source.features) == 0 {
			source.envelope = geom.Bound()
		} else {
			source.envelope = source.envelope.Union(geom.Bound())
		}
		source.features = append(source.features, feature)
	}

	return source, nil
}

func (s *GeoJSONSource) Envelope() orb.Bound {
	return s.envelope
}

func (s *GeoJSONSource) Features(ctx context.Context, query Query) ([]*Feature, errorsx.Error) {
	bound, ok := queryBound(query, s.envelope)
	if !ok {
		return nil, nil
	}

	return filterByBound(s.features, bound), nil
}

func newGeoJSONSourceFromParams(r *Registry, params map[string]string) (FeatureSource, errorsx.Error) {
	file, ok := params["file"]
	if !ok {
		return nil, errorsx.Errorf("geojson datasource requires a 'file' parameter")
	}

	path, err := r.resolvePath(file, params["base"])
	if err != nil {
		return nil, err
	}

	return NewGeoJSONSource(r.fs, path, vtmap.IsWebMercatorSRS(params["srs"]) && params["srs"] != "")
}
