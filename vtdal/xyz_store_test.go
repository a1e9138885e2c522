package vtdal

import (
	"context"
	"testing"

	"github.com/jamesrr39/goutil/gofs/mockfs"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewXYZStore(t *testing.T) {
	fs := mockfs.NewMockFs()

	store, err := NewXYZStore(fs, "/srv/tiles/")
	require.NoError(t, err)
	assert.Equal(t, "xyz:///srv/tiles/{z}/{x}/{y}.pbf", store.Name())

	_, err = NewXYZStore(fs, "/srv/tiles/{z}/{x}.pbf")
	require.Error(t, err)

	_, err = NewXYZStore(fs, "/srv/{z}/tiles/{z}/{x}/{y}.pbf")
	require.Error(t, err)
}

func TestXYZStore_GetTile(t *testing.T) {
	fs := mockfs.NewMockFs()

	payload := []byte{0x1a, 0x00}
	compressed, err := Compress(payload)
	require.NoError(t, err)

	require.NoError(t, fs.MkdirAll("/srv/tiles/3/4", 0755))
	require.NoError(t, fs.WriteFile("/srv/tiles/3/4/2.mvt", compressed, 0644))

	store, err := NewXYZStore(fs, "/srv/tiles/{z}/{x}/{y}.mvt")
	require.NoError(t, err)

	data, err := store.GetTile(context.Background(), vtmap.TileCoord{X: 4, Y: 2, Z: 3})
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = store.GetTile(context.Background(), vtmap.TileCoord{X: 4, Y: 3, Z: 3})
	require.Error(t, err)
	assert.True(t, IsNoDataAvailable(err))
}

func TestFileStore(t *testing.T) {
	fs := mockfs.NewMockFs()
	require.NoError(t, fs.WriteFile("/tile.pbf", []byte{1, 2, 3}, 0644))

	store, err := OpenStore(fs, "file:///tile.pbf")
	require.NoError(t, err)

	for _, coord := range []vtmap.TileCoord{{}, {X: 1, Y: 1, Z: 1}} {
		data, err := store.GetTile(context.Background(), coord)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, data)
	}

	coverage, err := store.Coverage()
	require.NoError(t, err)
	assert.Equal(t, vtmap.GetWholeWorldBounds(), coverage)
}

func TestOpenStore_unknownType(t *testing.T) {
	_, err := OpenStore(mockfs.NewMockFs(), "ftp://example.com/tiles")
	require.Error(t, err)
}
