package vtdal

import (
	"context"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/paulmach/osm"
)

var _ TileStore = &FileStore{}

// FileStore serves a single tile file for every coordinate, for rendering one tile from the command line
type FileStore struct {
	fs   gofs.Fs
	path string
}

func NewFileStore(fs gofs.Fs, path string) *FileStore {
	return &FileStore{fs, path}
}

func (s *FileStore) Name() string {
	return string(StoreTypeFile) + ConnectionPathSeparator + s.path
}

func (s *FileStore) Coverage() (osm.Bounds, errorsx.Error) {
	return vtmap.GetWholeWorldBounds(), nil
}

func (s *FileStore) GetTile(ctx context.Context, coord vtmap.TileCoord) ([]byte, errorsx.Error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", s.path)
	}

	return Decompress(data)
}

func (s *FileStore) Close() errorsx.Error {
	return nil
}
