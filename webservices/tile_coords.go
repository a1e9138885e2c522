package webservices

import (
	"fmt"
	"strconv"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/vtmap"
	"github.com/paulmach/osm"
)

func parseTileCoord(xStr, yStr, zStr string) (vtmap.TileCoord, errorsx.Error) {
	ints, err := stringsToUints(xStr, yStr, zStr)
	if err != nil {
		return vtmap.TileCoord{}, errorsx.Wrap(err)
	}

	if ints[2] > uint64(vtmap.MaxZoomLevel) {
		return vtmap.TileCoord{}, errorsx.Errorf("zoom level %d is above the maximum of %d", ints[2], vtmap.MaxZoomLevel)
	}

	coord := vtmap.TileCoord{
		X: uint32(ints[0]),
		Y: uint32(ints[1]),
		Z: vtmap.ZoomLevel(ints[2]),
	}

	if !coord.Valid() {
		return vtmap.TileCoord{}, errorsx.Errorf("tile %s is outside of the tile grid", coord)
	}

	return coord, nil
}

func stringsToUints(s ...string) ([]uint64, error) {
	var ints []uint64
	for _, str := range s {
		i, err := strconv.ParseUint(str, 10, 32)
		if err != nil {
			return nil, err
		}
		ints = append(ints, i)
	}

	return ints, nil
}

// formatBounds formats bounds as "min lon,min lat,max lon,max lat", the order of the MBTiles bounds metadata
func formatBounds(bounds osm.Bounds) string {
	return fmt.Sprintf("%f,%f,%f,%f", bounds.MinLon, bounds.MinLat, bounds.MaxLon, bounds.MaxLat)
}
