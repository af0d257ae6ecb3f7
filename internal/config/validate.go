package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/offshore-diorama/internal/game/bookmark"
	"github.com/Faultbox/offshore-diorama/pkg/geo"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// Validate checks the settings the diorama cannot start without.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return invalid("server.addr is empty")
	}
	if c.Server.FPS <= 0 {
		return invalid("server.fps must be positive, got %d", c.Server.FPS)
	}
	if c.Camera.BaseDuration <= 0 {
		return invalid("camera.base_duration must be positive")
	}
	if c.Animation.Submarine.Speed <= 0 {
		return invalid("animation.submarine.speed must be positive")
	}
	if c.Animation.Turbine.BladeRadius <= 0 {
		return invalid("animation.turbine.blade_radius must be positive")
	}
	if c.Animation.Boat.Damping < 0 || c.Animation.Boat.Factor < 0 {
		return invalid("animation.boat factor and damping must not be negative")
	}
	switch c.Route.SRID {
	case 0, geo.SRIDWGS84, geo.SRIDWebMercator:
	default:
		return invalid("route.srid %d is not supported", c.Route.SRID)
	}
	if c.Route.File == "" && len(c.Route.Points) < 2 {
		return invalid("route needs a file or at least two points")
	}

	seen := make(map[string]bool)
	for _, t := range c.Assets.Turbines {
		if t.ID == "" || seen[t.ID] {
			return invalid("turbine id %q is empty or duplicated", t.ID)
		}
		seen[t.ID] = true
		if t.WindSpeed < 0 {
			return invalid("turbine %s has negative wind speed", t.ID)
		}
	}

	if err := bookmark.Validate(c.Bookmarks); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level %q is unknown", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid("logging.format %q is unknown", c.Logging.Format)
	}
	return nil
}
