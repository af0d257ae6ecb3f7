package config

import (
	"fmt"

	"github.com/Faultbox/offshore-diorama/pkg/geo"
	"github.com/Faultbox/offshore-diorama/pkg/math"
)

// RoutePoints returns the submarine route in Web Mercator metres, read
// from File when set and from Points otherwise.
func (r RouteConfig) RoutePoints() ([]math.Vec3, error) {
	points := r.Points
	if r.File != "" {
		var err error
		if points, err = geo.LoadRoute(r.File); err != nil {
			return nil, err
		}
	}
	out, err := geo.ToWebMercator(points, r.SRID)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	return out, nil
}
