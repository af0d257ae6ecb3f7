package geo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"

	dmath "github.com/Faultbox/offshore-diorama/pkg/math"
)

// Format is a route encoding.
type Format string

const (
	FormatWKT     Format = "wkt"
	FormatGeoJSON Format = "geojson"
)

// DetectFormat guesses the encoding from a file extension, falling back to
// sniffing the first non-blank byte ('{' means GeoJSON).
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wkt":
		return FormatWKT
	case ".json", ".geojson":
		return FormatGeoJSON
	}
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
		return FormatGeoJSON
	}
	return FormatWKT
}

// LoadRoute reads a route file and returns its vertices.
func LoadRoute(path string) ([]dmath.Vec3, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading route %s: %w", path, err)
	}
	return ParseRoute(data, DetectFormat(path, data))
}

// ParseRoute decodes a LineString (or the first path of a MultiLineString)
// and returns its vertices in order. Z defaults to 0 for 2D input.
func ParseRoute(data []byte, format Format) ([]dmath.Vec3, error) {
	var (
		g   geom.Geometry
		err error
	)
	switch format {
	case FormatWKT:
		g, err = geom.UnmarshalWKT(string(data))
	case FormatGeoJSON:
		g, err = geom.UnmarshalGeoJSON(data)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidRoute, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoute, err)
	}

	ls, err := firstPath(g)
	if err != nil {
		return nil, err
	}
	return lineStringPoints(ls)
}

// firstPath returns the line the route follows.
func firstPath(g geom.Geometry) (geom.LineString, error) {
	if ls, ok := g.AsLineString(); ok {
		return ls, nil
	}
	if mls, ok := g.AsMultiLineString(); ok {
		if mls.NumLineStrings() == 0 {
			return geom.LineString{}, fmt.Errorf("%w: empty multilinestring", ErrInvalidRoute)
		}
		return mls.LineStringN(0), nil
	}
	return geom.LineString{}, fmt.Errorf("%w: expected LineString, got %s", ErrInvalidRoute, g.Type())
}

func lineStringPoints(ls geom.LineString) ([]dmath.Vec3, error) {
	seq := ls.Coordinates()
	if seq.Length() < 2 {
		return nil, fmt.Errorf("%w: route must have at least 2 points, got %d", ErrInvalidRoute, seq.Length())
	}
	points := make([]dmath.Vec3, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		c := seq.Get(i)
		points[i] = dmath.Vec3{X: c.X, Y: c.Y, Z: c.Z}
	}
	return points, nil
}
