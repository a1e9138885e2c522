package vtmap

import (
	"math"

	"github.com/paulmach/osm"
)

func Deg2num(lat, lon float64, zoomLevel ZoomLevel) (x, y uint32) {
	n := math.Exp2(float64(zoomLevel))
	latRad := lat * math.Pi / 180.0

	x = uint32(math.Floor((lon + 180.0) / 360.0 * n))
	y = uint32(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))
	return
}

func Num2deg(x, y uint32, zoomLevel ZoomLevel) (lat, lon float64) {
	n := math.Pi - 2.0*math.Pi*float64(y)/math.Exp2(float64(zoomLevel))
	lat = 180.0 / math.Pi * math.Atan(0.5*(math.Exp(n)-math.Exp(-n)))
	lon = float64(x)/math.Exp2(float64(zoomLevel))*360.0 - 180.0
	return lat, lon
}

// LonLatBounds returns the tile bounds in degrees
func (c TileCoord) LonLatBounds() osm.Bounds {
	maxLat, minLon := Num2deg(c.X, c.Y, c.Z)
	minLat, maxLon := Num2deg(c.X+1, c.Y+1, c.Z)

	return osm.Bounds{
		MinLat: minLat,
		MaxLat: maxLat,
		MinLon: minLon,
		MaxLon: maxLon,
	}
}
