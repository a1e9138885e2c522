package datasource

import (
	"context"
	"testing"

	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/tileindex"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/jamesrr39/vtrender/vtmap/testmocks"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChunk(t *testing.T, payload []byte, name string) tileindex.ChunkView {
	t.Helper()

	index, err := tileindex.Build(payload)
	require.NoError(t, err)

	chunks := index.Chunks(name)
	require.Len(t, chunks, 1)

	return chunks[0]
}

func TestVectorTileSource_Features(t *testing.T) {
	payload := testmocks.EncodeTile(t,
		testmocks.NewLayer("poi",
			testmocks.NewFeature(orb.Point{2048, 1024}, map[string]interface{}{"name": "centre"}),
			testmocks.NewFeature(orb.Point{0, 0}, map[string]interface{}{"name": "corner"}),
		),
	)
	chunk := buildChunk(t, payload, "poi")
	coord := vtmap.TileCoord{X: 0, Y: 0, Z: 0}
	half := vtmap.WebMercatorSpan / 2

	t.Run("layer extent resolution", func(t *testing.T) {
		source := NewVectorTileSource(chunk, coord, 0)
		assert.Equal(t, vtmap.TileExtent(coord, 256), source.Envelope())

		features, err := source.Features(context.Background(), Query{})
		require.NoError(t, err)
		require.Len(t, features, 2)

		centre := features[0].Geometry.(orb.Point)
		assert.InDelta(t, 0, centre.X(), 1e-6)
		assert.InDelta(t, half/2, centre.Y(), 1e-6)

		corner := features[1].Geometry.(orb.Point)
		assert.InDelta(t, -half, corner.X(), 1e-6)
		assert.InDelta(t, half, corner.Y(), 1e-6)

		name, ok := features[0].Attribute("name")
		assert.True(t, ok)
		assert.Equal(t, "centre", name)
		assert.Equal(t, styling.GeometryTypePoint, features[0].GeometryType())
	})

	t.Run("caller resolution", func(t *testing.T) {
		source := NewVectorTileSource(chunk, coord, 8192)

		features, err := source.Features(context.Background(), Query{})
		require.NoError(t, err)
		require.Len(t, features, 2)

		centre := features[0].Geometry.(orb.Point)
		assert.InDelta(t, -half/2, centre.X(), 1e-6)
		assert.InDelta(t, half*3/4, centre.Y(), 1e-6)
	})

	t.Run("query bound", func(t *testing.T) {
		source := NewVectorTileSource(chunk, coord, 0)

		features, err := source.Features(context.Background(), Query{
			Bound: orb.Bound{Min: orb.Point{-1000, 0}, Max: orb.Point{1000, half}},
		})
		require.NoError(t, err)
		require.Len(t, features, 1)
		assert.Equal(t, "centre", features[0].Properties["name"])
	})

	t.Run("envelope outside of query", func(t *testing.T) {
		source := NewVectorTileSource(chunk, coord, 0)
		source.SetEnvelope(orb.Bound{Min: orb.Point{-half, -half}, Max: orb.Point{-half / 2, -half / 2}})

		features, err := source.Features(context.Background(), Query{
			Bound: orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{half, half}},
		})
		require.NoError(t, err)
		assert.Empty(t, features)
	})
}

func TestVectorTileSource_polygon(t *testing.T) {
	payload := testmocks.EncodeTile(t,
		testmocks.NewLayer("water", testmocks.NewFeature(testmocks.FullTilePolygon(), map[string]interface{}{"class": "ocean"})),
	)
	coord := vtmap.TileCoord{X: 1, Y: 1, Z: 1}
	extent := vtmap.TileExtent(coord, 256)

	source := NewVectorTileSource(buildChunk(t, payload, "water"), coord, 0)
	source.SetEnvelope(vtmap.BufferedExtent(extent, 256, 64))

	features, err := source.Features(context.Background(), Query{Bound: extent})
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, styling.GeometryTypePolygon, features[0].GeometryType())

	spill := 64.0 / testmocks.TestExtent * (extent.Right() - extent.Left())
	bound := features[0].Geometry.Bound()
	assert.InDelta(t, extent.Left()-spill, bound.Left(), 1e-6)
	assert.InDelta(t, extent.Right()+spill, bound.Right(), 1e-6)
	assert.InDelta(t, extent.Bottom()-spill, bound.Bottom(), 1e-6)
	assert.InDelta(t, extent.Top()+spill, bound.Top(), 1e-6)
}

func TestVectorTileSource_malformedLayer(t *testing.T) {
	payload := testmocks.LayerRecord(
		testmocks.StringField(1, "broken"),
		// extent field with a truncated varint
		[]byte{0x28, 0xff},
	)

	source := NewVectorTileSource(buildChunk(t, payload, "broken"), vtmap.TileCoord{}, 0)

	_, err := source.Features(context.Background(), Query{})
	require.Error(t, err)

	_, err = source.Features(context.Background(), Query{})
	require.Error(t, err)
}
