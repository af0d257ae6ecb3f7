// Package config handles diorama configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/offshore-diorama/internal/engine/animation"
	"github.com/Faultbox/offshore-diorama/internal/engine/camera"
	"github.com/Faultbox/offshore-diorama/internal/engine/frame"
	"github.com/Faultbox/offshore-diorama/internal/game/bookmark"
	"github.com/Faultbox/offshore-diorama/pkg/interp"
	"github.com/Faultbox/offshore-diorama/pkg/math"
)

// Config holds all diorama settings.
type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Animation animation.Params    `yaml:"animation"`
	Camera    CameraConfig        `yaml:"camera"`
	Route     RouteConfig         `yaml:"route"`
	Bookmarks []bookmark.Bookmark `yaml:"bookmarks"`
	Assets    AssetsConfig        `yaml:"assets"`
	Logging   LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds the viewer endpoint and frame loop settings.
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	WSPath string `yaml:"ws_path"`
	FPS    int    `yaml:"fps"`
}

// CameraConfig holds camera flight settings.
type CameraConfig struct {
	BaseDuration time.Duration     `yaml:"base_duration"`
	Initial      interp.CameraPose `yaml:"initial"`
}

// RouteConfig describes the submarine route. File takes priority over Points.
type RouteConfig struct {
	File   string      `yaml:"file"`   // WKT or GeoJSON line
	Points []math.Vec3 `yaml:"points"` // Inline vertices
	SRID   int         `yaml:"srid"`   // 4326 for lon/lat input, 0 or 3857 for Web Mercator
}

// AssetsConfig holds the animated entities.
type AssetsConfig struct {
	Turbines []TurbineAsset `yaml:"turbines"`
}

// TurbineAsset is one wind turbine rotor.
type TurbineAsset struct {
	ID        string  `yaml:"id"`
	WindSpeed float64 `yaml:"wind_speed"` // m/s
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Format  string `yaml:"format"` // log file encoding: console or json
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:   ":8080",
			WSPath: "/ws",
			FPS:    frame.DefaultFPS,
		},
		Animation: animation.DefaultParams(),
		Camera: CameraConfig{
			BaseDuration: camera.DefaultBaseDuration,
			Initial: interp.CameraPose{
				Position: math.Vec3{X: -13549161.92507, Y: 4307774.12432, Z: 174.102},
				Heading:  34.47,
				Tilt:     82.31,
			},
		},
		Route: RouteConfig{
			Points: []math.Vec3{
				{X: -13544900, Y: 4302600, Z: -15},
				{X: -13544600, Y: 4302900, Z: -20},
				{X: -13544300, Y: 4302600, Z: -25},
				{X: -13544600, Y: 4302300, Z: -20},
				{X: -13544900, Y: 4302600, Z: -15},
			},
		},
		Bookmarks: bookmark.Defaults(),
		Assets: AssetsConfig{
			Turbines: []TurbineAsset{
				{ID: "turbine-1", WindSpeed: 7.5},
				{ID: "turbine-2", WindSpeed: 8.2},
				{ID: "turbine-3", WindSpeed: 6.9},
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
			Format:  "console",
		},
	}
}
