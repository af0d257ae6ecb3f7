package geo

import (
	"github.com/wroge/wgs84"

	dmath "github.com/Faultbox/offshore-diorama/pkg/math"
)

// EPSG codes understood by the diorama.
const (
	SRIDWGS84       = 4326
	SRIDWebMercator = 3857
)

// WebMercatorFromLonLat projects a WGS84 longitude/latitude to EPSG:3857 metres.
func WebMercatorFromLonLat(lon, lat float64) (x, y float64) {
	f := wgs84.EPSG().Transform(SRIDWGS84, SRIDWebMercator)
	x, y, _ = f(lon, lat, 0)
	return x, y
}

// LonLatFromWebMercator unprojects EPSG:3857 metres to WGS84 longitude/latitude.
func LonLatFromWebMercator(x, y float64) (lon, lat float64) {
	f := wgs84.EPSG().Transform(SRIDWebMercator, SRIDWGS84)
	lon, lat, _ = f(x, y, 0)
	return lon, lat
}

// ToWebMercator returns points projected from srid into EPSG:3857. Points
// already in Web Mercator are returned unchanged; Z is carried through.
func ToWebMercator(points []dmath.Vec3, srid int) ([]dmath.Vec3, error) {
	switch srid {
	case 0, SRIDWebMercator:
		return points, nil
	case SRIDWGS84:
		out := make([]dmath.Vec3, len(points))
		for i, p := range points {
			x, y := WebMercatorFromLonLat(p.X, p.Y)
			out[i] = dmath.Vec3{X: x, Y: y, Z: p.Z}
		}
		return out, nil
	default:
		return nil, &UnsupportedSRIDError{SRID: srid}
	}
}
