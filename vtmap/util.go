package vtmap

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/paulmach/osm"
)

// Overlaps checks whether an item is at least partially inside a container
func Overlaps(container osm.Bounds, item osm.Bounds) bool {
	if container.MinLat > item.MaxLat {
		// container is wholly above item
		return false
	}

	if container.MaxLat < item.MinLat {
		// container is wholly below item
		return false
	}

	if container.MinLon > item.MaxLon {
		// container is wholly to the right of item
		return false
	}

	if container.MaxLon < item.MinLon {
		// container is wholly to the left of item
		return false
	}

	return true
}

func IsTotallyInside(container osm.Bounds, item osm.Bounds) bool {
	return item.MaxLat <= container.MaxLat && item.MaxLon <= container.MaxLon && item.MinLat >= container.MinLat && item.MinLon >= container.MinLon
}

func GetWholeWorldBounds() osm.Bounds {
	return osm.Bounds{
		MaxLat: 90,
		MinLat: -90,
		MaxLon: 180,
		MinLon: -180,
	}
}

// MaxMercatorLat is the latitude of the top edge of the spherical mercator plane
const MaxMercatorLat = 85.0511287798066

// MercatorToLonLat converts a spherical mercator bound into degrees
func MercatorToLonLat(b orb.Bound) osm.Bounds {
	min := project.Mercator.ToWGS84(b.Min)
	max := project.Mercator.ToWGS84(b.Max)

	return osm.Bounds{
		MinLat: min.Lat(),
		MaxLat: max.Lat(),
		MinLon: min.Lon(),
		MaxLon: max.Lon(),
	}
}

// LonLatToMercator converts degree bounds into spherical mercator meters
func LonLatToMercator(b osm.Bounds) orb.Bound {
	return orb.Bound{
		Min: project.WGS84.ToMercator(orb.Point{b.MinLon, b.MinLat}),
		Max: project.WGS84.ToMercator(orb.Point{b.MaxLon, b.MaxLat}),
	}
}

// WorldExtent is the whole spherical mercator plane
func WorldExtent() orb.Bound {
	return TileExtent(TileCoord{}, DefaultTileSpanPixels)
}
