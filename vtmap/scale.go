package vtmap

import (
	"math"
	"strings"
)

const (
	// standardized rendering pixel size of 0.28mm, as used by OGC and Mapnik
	standardPixelSizeMeters = 0.00028
	metersPerDegree         = EarthRadiusMeters * 2 * math.Pi / 360

	// scale denominator of a 256px tile at zoom 0
	zoom0ScaleDenominator = 559082264.0287178
)

// ScaleDenominator derives the map scale denominator from the ground units per pixel.
// Geographic reference systems measure ground units in degrees, which are converted to meters first.
func ScaleDenominator(groundUnitsPerPixel float64, geographic bool) float64 {
	denom := groundUnitsPerPixel / standardPixelSizeMeters
	if geographic {
		denom *= metersPerDegree
	}
	return denom
}

func ZoomToScaleDenominator(zoom float64) float64 {
	return zoom0ScaleDenominator / math.Exp2(zoom)
}

func ScaleDenominatorToZoom(denom float64) float64 {
	if denom <= 0 {
		return float64(MaxZoomLevel)
	}
	return math.Log2(zoom0ScaleDenominator / denom)
}

// IsGeographicSRS reports whether the reference system is measured in degrees (lon/lat) rather than projected meters
func IsGeographicSRS(srs string) bool {
	s := strings.ToLower(srs)
	switch {
	case strings.Contains(s, "+proj=longlat"), strings.Contains(s, "+proj=latlong"):
		return true
	case strings.HasSuffix(s, "epsg:4326"), strings.HasSuffix(s, "epsg:4269"), strings.HasSuffix(s, "epsg:4258"):
		return true
	case s == "wgs84":
		return true
	}
	return false
}

// IsWebMercatorSRS reports whether the reference system is spherical mercator
func IsWebMercatorSRS(srs string) bool {
	s := strings.ToLower(srs)
	if s == "" {
		return true
	}
	for _, code := range []string{"epsg:3857", "epsg:900913", "epsg:3785"} {
		if strings.HasSuffix(s, code) {
			return true
		}
	}
	return strings.Contains(s, "+proj=merc")
}
