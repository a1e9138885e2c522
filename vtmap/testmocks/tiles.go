package testmocks

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
)

const TestExtent = 4096

// EncodeTile marshals the layers into a vector tile payload
func EncodeTile(t testing.TB, layers ...*mvt.Layer) []byte {
	t.Helper()

	data, err := mvt.Marshal(mvt.Layers(layers))
	require.NoError(t, err)

	return data
}

// NewLayer makes a layer in tile coordinates, with the extent 4096
func NewLayer(name string, features ...*geojson.Feature) *mvt.Layer {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}

	layer := mvt.NewLayer(name, fc)
	layer.Extent = TestExtent

	return layer
}

func NewFeature(geom orb.Geometry, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(geom)
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

// FullTilePolygon covers the whole tile, and spills over each edge
func FullTilePolygon() orb.Polygon {
	return orb.Polygon{
		{{-64, -64}, {TestExtent + 64, -64}, {TestExtent + 64, TestExtent + 64}, {-64, TestExtent + 64}, {-64, -64}},
	}
}

// LayerRecord encodes a top-level layer record (field 3) around the given raw layer fields
func LayerRecord(fields ...[]byte) []byte {
	var content []byte
	for _, f := range fields {
		content = append(content, f...)
	}

	return LengthDelimitedField(3, content)
}

func StringField(fieldNumber uint64, s string) []byte {
	return LengthDelimitedField(fieldNumber, []byte(s))
}

func LengthDelimitedField(fieldNumber uint64, content []byte) []byte {
	data := proto.EncodeVarint(fieldNumber<<3 | 2)
	data = append(data, proto.EncodeVarint(uint64(len(content)))...)
	return append(data, content...)
}

func VarintField(fieldNumber, value uint64) []byte {
	return append(proto.EncodeVarint(fieldNumber<<3), proto.EncodeVarint(value)...)
}
