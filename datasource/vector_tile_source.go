package datasource

import (
	"context"

	"github.com/gogo/protobuf/proto"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/tileindex"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/project"
)

const tileLayersFieldKey = 3<<3 | 2

// VectorTileSource serves the features of one layer record of a vector tile.
// Nothing is decoded until the first query.
type VectorTileSource struct {
	chunk          tileindex.ChunkView
	coord          vtmap.TileCoord
	tileResolution uint32
	envelope       *orb.Bound

	decoded   []*Feature
	decodeErr errorsx.Error
	isDecoded bool
}

var _ FeatureSource = &VectorTileSource{}

// NewVectorTileSource makes a source for the chunk at the tile coordinate.
// tileResolution is the span of the tile-local coordinate space; 0 means the layer's own extent.
func NewVectorTileSource(chunk tileindex.ChunkView, coord vtmap.TileCoord, tileResolution uint32) *VectorTileSource {
	return &VectorTileSource{
		chunk:          chunk,
		coord:          coord,
		tileResolution: tileResolution,
	}
}

func (s *VectorTileSource) SetEnvelope(envelope orb.Bound) {
	s.envelope = &envelope
}

// Envelope is the bound set with SetEnvelope, or the tile's own extent if none was set
func (s *VectorTileSource) Envelope() orb.Bound {
	if s.envelope != nil {
		return *s.envelope
	}
	return vtmap.TileExtent(s.coord, vtmap.DefaultTileSpanPixels)
}

func (s *VectorTileSource) Name() string {
	return s.chunk.Name
}

func (s *VectorTileSource) Features(ctx context.Context, query Query) ([]*Feature, errorsx.Error) {
	bound, ok := queryBound(query, s.Envelope())
	if !ok {
		return nil, nil
	}

	features, err := s.decode()
	if err != nil {
		return nil, err
	}

	return filterByBound(features, bound), nil
}

func (s *VectorTileSource) decode() ([]*Feature, errorsx.Error) {
	if s.isDecoded {
		return s.decoded, s.decodeErr
	}
	s.isDecoded = true

	// the chunk is the body of a layer record, so it is wrapped back into a single-layer tile for the decoder
	data := proto.EncodeVarint(tileLayersFieldKey)
	data = append(data, proto.EncodeVarint(uint64(s.chunk.Len()))...)
	data = append(data, s.chunk.Bytes()...)

	layers, err := mvt.Unmarshal(data)
	if err != nil {
		s.decodeErr = errorsx.Wrap(err, "layer", s.chunk.Name, "tile", s.coord.String())
		return nil, s.decodeErr
	}

	if len(layers) != 1 {
		s.decodeErr = errorsx.Errorf("expected 1 layer in chunk %q, found %d", s.chunk.Name, len(layers))
		return nil, s.decodeErr
	}

	layer := layers[0]
	resolution := float64(s.tileResolution)
	if resolution == 0 {
		resolution = float64(layer.Extent)
	}
	if resolution == 0 {
		resolution = 4096
	}

	extent := vtmap.TileExtent(s.coord, vtmap.DefaultTileSpanPixels)
	toMercator := tileToMercator(extent, resolution)

	for _, f := range layer.Features {
		if f.Geometry == nil {
			continue
		}
		s.decoded = append(s.decoded, &Feature{
			ID:         f.ID,
			Geometry:   project.Geometry(f.Geometry, toMercator),
			Properties: f.Properties,
		})
	}

	return s.decoded, nil
}

// tileToMercator maps tile-local coordinates, where y counts down from the top of the tile, into the extent
func tileToMercator(extent orb.Bound, resolution float64) orb.Projection {
	scaleX := (extent.Right() - extent.Left()) / resolution
	scaleY := (extent.Top() - extent.Bottom()) / resolution
	return func(p orb.Point) orb.Point {
		return orb.Point{
			extent.Left() + p.X()*scaleX,
			extent.Top() - p.Y()*scaleY,
		}
	}
}
