package vtdal

import (
	"context"
	"errors"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/paulmach/osm"
)

// ErrNoDataAvailable is the cause of GetTile errors for tiles a store does not have
var ErrNoDataAvailable = errors.New("no data available")

func IsNoDataAvailable(err error) bool {
	return errorsx.Cause(err) == ErrNoDataAvailable
}

// TileStore serves encoded vector tiles by tile coordinate
type TileStore interface {
	// Info methods
	Name() string
	Coverage() (osm.Bounds, errorsx.Error)

	// Data fetch methods
	GetTile(ctx context.Context, coord vtmap.TileCoord) ([]byte, errorsx.Error)
	Close() errorsx.Error
}

type StoreType string

const (
	StoreTypeXYZ        StoreType = "xyz"
	StoreTypeMBTiles    StoreType = "mbtiles"
	StoreTypePostgresql StoreType = "postgresql"
	StoreTypeFile       StoreType = "file"
)

type ConnectionURL struct {
	Type           StoreType
	ConnectionPath string
}

const ConnectionPathSeparator = "://"

// ParseConnString splits a connection string such as "mbtiles://data/planet.mbtiles" into the store type and the path
func ParseConnString(str string) (ConnectionURL, errorsx.Error) {
	idx := strings.Index(str, ConnectionPathSeparator)
	if idx < 0 {
		return ConnectionURL{}, errorsx.Errorf("couldn't find connection path separator %q in tile store connection string", ConnectionPathSeparator)
	}

	connURL := ConnectionURL{
		Type:           StoreType(str[:idx]),
		ConnectionPath: str[idx+len(ConnectionPathSeparator):],
	}

	if connURL.ConnectionPath == "" {
		return ConnectionURL{}, errorsx.Errorf("empty connection path in tile store connection string %q", str)
	}

	return connURL, nil
}
