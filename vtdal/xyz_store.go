package vtdal

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/paulmach/osm"
)

const defaultXYZPattern = "{z}/{x}/{y}.pbf"

var _ TileStore = &XYZStore{}

// XYZStore reads tiles from a directory tree, laid out by a pattern such as "tiles/{z}/{x}/{y}.pbf"
type XYZStore struct {
	fs          gofs.Fs
	filePattern string
}

// NewXYZStore makes a store for a file pattern. A path without placeholders is taken as the root of a {z}/{x}/{y}.pbf tree.
func NewXYZStore(fs gofs.Fs, filePattern string) (*XYZStore, errorsx.Error) {
	if !strings.Contains(filePattern, "{") {
		filePattern = strings.TrimSuffix(filePattern, "/") + "/" + defaultXYZPattern
	}

	for _, placeholder := range []string{"{x}", "{y}", "{z}"} {
		if strings.Count(filePattern, placeholder) != 1 {
			return nil, errorsx.Errorf("file pattern %q must contain %s exactly once", filePattern, placeholder)
		}
	}

	return &XYZStore{fs, filePattern}, nil
}

func (s *XYZStore) Name() string {
	return string(StoreTypeXYZ) + ConnectionPathSeparator + s.filePattern
}

func (s *XYZStore) Coverage() (osm.Bounds, errorsx.Error) {
	return vtmap.GetWholeWorldBounds(), nil
}

func (s *XYZStore) GetTile(ctx context.Context, coord vtmap.TileCoord) ([]byte, errorsx.Error) {
	path := s.path(coord)

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errorsx.Wrap(ErrNoDataAvailable, "tile", coord.String())
		}
		return nil, errorsx.Wrap(err, "path", path)
	}

	return Decompress(data)
}

func (s *XYZStore) Close() errorsx.Error {
	return nil
}

func (s *XYZStore) path(coord vtmap.TileCoord) string {
	return strings.NewReplacer(
		"{x}", strconv.FormatUint(uint64(coord.X), 10),
		"{y}", strconv.FormatUint(uint64(coord.Y), 10),
		"{z}", strconv.FormatUint(uint64(coord.Z), 10),
	).Replace(s.filePattern)
}
