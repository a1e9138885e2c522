package vtdal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/jmoiron/sqlx"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMBTiles(t *testing.T, metadata map[string]string, tiles map[vtmap.TileCoord][]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.mbtiles")

	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(MBTilesSchema)
	require.NoError(t, err)

	for name, value := range metadata {
		_, err = db.Exec(`INSERT INTO metadata (name, value) VALUES (?, ?)`, name, value)
		require.NoError(t, err)
	}

	for coord, data := range tiles {
		row := (1 << coord.Z) - 1 - int64(coord.Y)
		_, err = db.Exec(
			`INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)`,
			coord.Z, coord.X, row, data,
		)
		require.NoError(t, err)
	}

	return path
}

func TestSQLStore_GetTile(t *testing.T) {
	compressed, err := Compress([]byte("north"))
	require.NoError(t, err)

	path := createMBTiles(t, nil, map[vtmap.TileCoord][]byte{
		{X: 1, Y: 0, Z: 2}: compressed,
		{X: 1, Y: 3, Z: 2}: []byte("south"),
	})

	store, err := OpenStore(nil, "mbtiles://"+path)
	require.NoError(t, err)
	defer store.Close()

	data, err := store.GetTile(context.Background(), vtmap.TileCoord{X: 1, Y: 0, Z: 2})
	require.NoError(t, err)
	assert.Equal(t, "north", string(data))

	data, err = store.GetTile(context.Background(), vtmap.TileCoord{X: 1, Y: 3, Z: 2})
	require.NoError(t, err)
	assert.Equal(t, "south", string(data))

	_, err = store.GetTile(context.Background(), vtmap.TileCoord{X: 2, Y: 3, Z: 2})
	require.Error(t, err)
	assert.True(t, IsNoDataAvailable(err))
}

func TestSQLStore_Coverage(t *testing.T) {
	path := createMBTiles(t, map[string]string{
		"name":   "test",
		"bounds": "4.5, 57.9, 31.2, 71.2",
	}, nil)

	store, err := NewMBTilesStore(path)
	require.NoError(t, err)
	defer store.Close()

	metadata, err := store.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "test", metadata["name"])

	coverage, err := store.Coverage()
	require.NoError(t, err)
	assert.Equal(t, osm.Bounds{MinLon: 4.5, MinLat: 57.9, MaxLon: 31.2, MaxLat: 71.2}, coverage)

	emptyPath := createMBTiles(t, nil, nil)
	emptyStore, err := NewMBTilesStore(emptyPath)
	require.NoError(t, err)
	defer emptyStore.Close()

	coverage, err = emptyStore.Coverage()
	require.NoError(t, err)
	assert.Equal(t, vtmap.GetWholeWorldBounds(), coverage)
}

func TestParseBounds(t *testing.T) {
	_, err := parseBounds("1,2,3")
	require.Error(t, err)

	_, err = parseBounds("1,2,3,x")
	require.Error(t, err)
}
