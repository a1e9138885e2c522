package vtdal

import (
	"bytes"
	"context"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	name     string
	coverage osm.Bounds
	tiles    map[vtmap.TileCoord][]byte
	gets     int
}

func (s *fakeStore) Name() string { return s.name }

func (s *fakeStore) Coverage() (osm.Bounds, errorsx.Error) { return s.coverage, nil }

func (s *fakeStore) GetTile(ctx context.Context, coord vtmap.TileCoord) ([]byte, errorsx.Error) {
	s.gets++
	data, ok := s.tiles[coord]
	if !ok {
		return nil, errorsx.Wrap(ErrNoDataAvailable)
	}
	return data, nil
}

func (s *fakeStore) Close() errorsx.Error { return nil }

var (
	norwayBounds = osm.Bounds{MinLon: 4, MinLat: 57, MaxLon: 32, MaxLat: 72}
	osloBounds   = osm.Bounds{MinLon: 10.6, MinLat: 59.8, MaxLon: 10.9, MaxLat: 60}
)

func TestGetMatchLevel(t *testing.T) {
	store := &fakeStore{name: "norway", coverage: norwayBounds}

	tests := []struct {
		name   string
		bounds osm.Bounds
		want   MatchLevel
	}{
		{"inside", osloBounds, MatchLevelFull},
		{"overlapping", osm.Bounds{MinLon: 0, MinLat: 50, MaxLon: 10, MaxLat: 60}, MatchLevelPartial},
		{"outside", osm.Bounds{MinLon: -10, MinLat: -10, MaxLon: -5, MaxLat: -5}, MatchLevelNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getMatchLevel(store, tt.bounds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreSet_GetStoresForBounds(t *testing.T) {
	world := &fakeStore{name: "world", coverage: osm.Bounds{MinLon: -180, MinLat: -85, MaxLon: 180, MaxLat: 85}}
	oslo := &fakeStore{name: "oslo", coverage: osloBounds}
	nowhere := &fakeStore{name: "nowhere", coverage: osm.Bounds{MinLon: -10, MinLat: -10, MaxLon: -5, MaxLat: -5}}

	storeSet := NewStoreSet(logpkg.NewLogger(new(bytes.Buffer), logpkg.LogLevelDebug), []TileStore{oslo, nowhere}, nil)
	storeSet.AddStore(world)

	chosen, err := storeSet.GetStoresForBounds(norwayBounds)
	require.NoError(t, err)
	require.Len(t, chosen, 2)

	assert.Equal(t, "world", chosen[0].Name())
	assert.Equal(t, MatchLevelFull, chosen[0].MatchLevel)
	assert.Equal(t, "oslo", chosen[1].Name())
	assert.Equal(t, MatchLevelPartial, chosen[1].MatchLevel)
}

func TestStoreSet_GetTileRequest(t *testing.T) {
	coord := vtmap.TileCoord{X: 1, Y: 0, Z: 1}
	missingCoord := vtmap.TileCoord{X: 0, Y: 1, Z: 1}

	empty := &fakeStore{name: "empty", coverage: vtmap.GetWholeWorldBounds()}
	full := &fakeStore{
		name:     "full",
		coverage: vtmap.GetWholeWorldBounds(),
		tiles:    map[vtmap.TileCoord][]byte{coord: {1, 2}},
	}

	cache, err := NewTileRequestCache(10)
	require.NoError(t, err)

	storeSet := NewStoreSet(logpkg.NewLogger(new(bytes.Buffer), logpkg.LogLevelInfo), []TileStore{empty, full}, cache)

	tileRequest, err := storeSet.GetTileRequest(context.Background(), coord)
	require.NoError(t, err)
	assert.Equal(t, coord, tileRequest.Coord)
	assert.Equal(t, []byte{1, 2}, tileRequest.Data())
	assert.Equal(t, 1, full.gets)
	assert.Equal(t, 1, cache.Len())

	cached, err := storeSet.GetTileRequest(context.Background(), coord)
	require.NoError(t, err)
	assert.Same(t, tileRequest, cached)
	assert.Equal(t, 1, full.gets)

	_, err = storeSet.GetTileRequest(context.Background(), missingCoord)
	require.Error(t, err)
	assert.True(t, IsNoDataAvailable(err))

	_, err = storeSet.GetTileRequest(context.Background(), vtmap.TileCoord{X: 2, Y: 0, Z: 1})
	require.Error(t, err)
	assert.False(t, IsNoDataAvailable(err))

	require.NoError(t, storeSet.Close())
}

func TestTileRequestCache_eviction(t *testing.T) {
	cache, err := NewTileRequestCache(1)
	require.NoError(t, err)

	cache.Add("a", vtmap.NewTileRequest([]byte{1}, 0, 0, 0))
	cache.Add("b", vtmap.NewTileRequest([]byte{2}, 0, 0, 0))

	_, ok := cache.Get("a", vtmap.TileCoord{})
	assert.False(t, ok)

	tileRequest, ok := cache.Get("b", vtmap.TileCoord{})
	require.True(t, ok)
	assert.Equal(t, []byte{2}, tileRequest.Data())

	var nilCache *TileRequestCache
	nilCache.Add("a", tileRequest)
	_, ok = nilCache.Get("a", vtmap.TileCoord{})
	assert.False(t, ok)

	_, err = NewTileRequestCache(0)
	require.Error(t, err)
}
