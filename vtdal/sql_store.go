package vtdal

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/osm"
)

// MBTilesSchema is the table layout SQLStore reads, in both sqlite and postgresql databases
const MBTilesSchema = `
CREATE TABLE metadata (
	name TEXT NOT NULL,
	value TEXT NOT NULL
);

CREATE TABLE tiles (
	zoom_level INTEGER NOT NULL,
	tile_column INTEGER NOT NULL,
	tile_row INTEGER NOT NULL,
	tile_data BYTEA NOT NULL
);

CREATE UNIQUE INDEX tile_index ON tiles (zoom_level, tile_column, tile_row);
`

var _ TileStore = &SQLStore{}

// SQLStore reads tiles from a database with the MBTiles layout. Rows are numbered from the south (TMS).
type SQLStore struct {
	name string
	db   *sqlx.DB
}

func NewSQLStore(db *sqlx.DB, name string) *SQLStore {
	return &SQLStore{
		name: name,
		db:   db,
	}
}

// NewMBTilesStore opens an MBTiles file read-only
func NewMBTilesStore(path string) (*SQLStore, errorsx.Error) {
	db, err := sqlx.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}

	return NewSQLStore(db, string(StoreTypeMBTiles)+ConnectionPathSeparator+path), nil
}

func NewPostgresqlStore(connStr string) (*SQLStore, errorsx.Error) {
	db, err := sqlx.Open("postgres", "postgresql://"+connStr)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return NewSQLStore(db, "postgresql database"), nil
}

func (s *SQLStore) Name() string {
	return s.name
}

// Metadata reads the name/value pairs of the metadata table
func (s *SQLStore) Metadata() (map[string]string, errorsx.Error) {
	rows, err := s.db.Queryx(`SELECT name, value FROM metadata`)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var name, value string
		err = rows.Scan(&name, &value)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
		metadata[name] = value
	}

	err = rows.Err()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return metadata, nil
}

// Coverage is the "bounds" metadata entry (min lon, min lat, max lon, max lat), or the whole world if there is none
func (s *SQLStore) Coverage() (osm.Bounds, errorsx.Error) {
	metadata, err := s.Metadata()
	if err != nil {
		return osm.Bounds{}, err
	}

	boundsStr, ok := metadata["bounds"]
	if !ok {
		return vtmap.GetWholeWorldBounds(), nil
	}

	return parseBounds(boundsStr)
}

func (s *SQLStore) GetTile(ctx context.Context, coord vtmap.TileCoord) ([]byte, errorsx.Error) {
	// XYZ -> TMS
	row := (1 << coord.Z) - 1 - int64(coord.Y)

	var tileData []byte
	err := s.db.QueryRowxContext(
		ctx,
		s.db.Rebind(`SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`),
		coord.Z, coord.X, row,
	).Scan(&tileData)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errorsx.Wrap(ErrNoDataAvailable, "tile", coord.String())
		}
		return nil, errorsx.Wrap(err, "tile", coord.String())
	}

	return Decompress(tileData)
}

func (s *SQLStore) Close() errorsx.Error {
	return errorsx.Wrap(s.db.Close())
}

func parseBounds(s string) (osm.Bounds, errorsx.Error) {
	fragments := strings.Split(s, ",")
	if len(fragments) != 4 {
		return osm.Bounds{}, errorsx.Errorf("expected bounds as 'min lon,min lat,max lon,max lat' but got %q", s)
	}

	var values [4]float64
	for i, fragment := range fragments {
		value, err := strconv.ParseFloat(strings.TrimSpace(fragment), 64)
		if err != nil {
			return osm.Bounds{}, errorsx.Wrap(err, "bounds", s)
		}
		values[i] = value
	}

	return osm.Bounds{
		MinLon: values[0],
		MinLat: values[1],
		MaxLon: values[2],
		MaxLat: values[3],
	}, nil
}
