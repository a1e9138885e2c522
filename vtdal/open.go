package vtdal

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
)

// OpenStore opens the tile store for a connection string, e.g. "xyz://tiles/{z}/{x}/{y}.pbf" or "mbtiles://planet.mbtiles"
func OpenStore(fs gofs.Fs, connString string) (TileStore, errorsx.Error) {
	connURL, err := ParseConnString(connString)
	if err != nil {
		return nil, errorsx.Wrap(err, "connection string", connString)
	}

	switch connURL.Type {
	case StoreTypeXYZ:
		return NewXYZStore(fs, connURL.ConnectionPath)
	case StoreTypeMBTiles:
		return NewMBTilesStore(connURL.ConnectionPath)
	case StoreTypePostgresql:
		return NewPostgresqlStore(connURL.ConnectionPath)
	case StoreTypeFile:
		return NewFileStore(fs, connURL.ConnectionPath), nil
	default:
		return nil, errorsx.Errorf("unrecognized tile store type: %q", connURL.Type)
	}
}
