package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/offshore-diorama/internal/game/bookmark"
	"github.com/Faultbox/offshore-diorama/pkg/geo"
	"github.com/Faultbox/offshore-diorama/pkg/math"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test server defaults
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.FPS != 60 {
		t.Errorf("expected fps 60, got %d", cfg.Server.FPS)
	}

	// Test animation defaults
	if cfg.Animation.Boat.Factor != 0.0006 {
		t.Errorf("expected wave factor 0.0006, got %f", cfg.Animation.Boat.Factor)
	}
	if cfg.Animation.Boat.Damping != 0.7 {
		t.Errorf("expected damping 0.7, got %f", cfg.Animation.Boat.Damping)
	}
	if cfg.Animation.Turbine.TipSpeedRatio != 6.0 {
		t.Errorf("expected tip speed ratio 6, got %f", cfg.Animation.Turbine.TipSpeedRatio)
	}

	// Test camera defaults
	if cfg.Camera.BaseDuration != 2*time.Second {
		t.Errorf("expected base duration 2s, got %v", cfg.Camera.BaseDuration)
	}

	// Test bookmark defaults
	if len(cfg.Bookmarks) != 4 {
		t.Errorf("expected 4 bookmarks, got %d", len(cfg.Bookmarks))
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  addr: "127.0.0.1:9000"
  fps: 30

animation:
  boat:
    damping: 0.5
    bob: false
    seed_blend: 250ms
  submarine:
    speed: 12

camera:
  base_duration: 3s

route:
  srid: 4326
  points:
    - {x: -122.4, y: 36.1, z: -10}
    - {x: -122.3, y: 36.2, z: -10}

bookmarks:
  - id: 7
    name: "Overview"
    action: camera
    camera: {position: {x: 1, y: 2, z: 300}, heading: 90, tilt: 60}

assets:
  turbines:
    - id: north
      wind_speed: 11

logging:
  level: "debug"
  log_file: "diorama.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("expected addr 127.0.0.1:9000, got %s", cfg.Server.Addr)
	}
	if cfg.Server.FPS != 30 {
		t.Errorf("expected fps 30, got %d", cfg.Server.FPS)
	}
	if cfg.Server.WSPath != "/ws" {
		t.Errorf("expected ws path to keep its default, got %s", cfg.Server.WSPath)
	}

	if cfg.Animation.Boat.Damping != 0.5 {
		t.Errorf("expected damping 0.5, got %f", cfg.Animation.Boat.Damping)
	}
	if cfg.Animation.Boat.Bob {
		t.Error("expected bob to be disabled")
	}
	if cfg.Animation.Boat.SeedBlend != 250*time.Millisecond {
		t.Errorf("expected seed blend 250ms, got %v", cfg.Animation.Boat.SeedBlend)
	}
	if cfg.Animation.Boat.Factor != 0.0006 {
		t.Errorf("expected untouched factor to keep its default, got %f", cfg.Animation.Boat.Factor)
	}
	if cfg.Animation.Submarine.Speed != 12 {
		t.Errorf("expected submarine speed 12, got %f", cfg.Animation.Submarine.Speed)
	}
	if cfg.Camera.BaseDuration != 3*time.Second {
		t.Errorf("expected base duration 3s, got %v", cfg.Camera.BaseDuration)
	}

	if cfg.Route.SRID != geo.SRIDWGS84 {
		t.Errorf("expected srid 4326, got %d", cfg.Route.SRID)
	}
	if len(cfg.Route.Points) != 2 || cfg.Route.Points[1] != (math.Vec3{X: -122.3, Y: 36.2, Z: -10}) {
		t.Errorf("unexpected route points %v", cfg.Route.Points)
	}

	if len(cfg.Bookmarks) != 1 {
		t.Fatalf("expected bookmarks to be replaced, got %d", len(cfg.Bookmarks))
	}
	b := cfg.Bookmarks[0]
	if b.ID != 7 || b.Action != bookmark.ActionCamera || b.Camera == nil || b.Camera.Heading != 90 {
		t.Errorf("unexpected bookmark %+v", b)
	}

	if len(cfg.Assets.Turbines) != 1 || cfg.Assets.Turbines[0].WindSpeed != 11 {
		t.Errorf("unexpected turbines %+v", cfg.Assets.Turbines)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "diorama.log" {
		t.Errorf("expected log file 'diorama.log', got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
server:
  fps: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero fps", func(c *Config) { c.Server.FPS = 0 }},
		{"zero camera duration", func(c *Config) { c.Camera.BaseDuration = 0 }},
		{"zero submarine speed", func(c *Config) { c.Animation.Submarine.Speed = 0 }},
		{"zero blade radius", func(c *Config) { c.Animation.Turbine.BladeRadius = 0 }},
		{"unknown srid", func(c *Config) { c.Route.SRID = 27700 }},
		{"no route", func(c *Config) { c.Route.Points = nil }},
		{"duplicate turbine", func(c *Config) {
			c.Assets.Turbines = []TurbineAsset{{ID: "a"}, {ID: "a"}}
		}},
		{"no bookmarks", func(c *Config) { c.Bookmarks = nil }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRoutePoints(t *testing.T) {
	r := RouteConfig{
		Points: []math.Vec3{{X: 0, Y: 0, Z: -5}, {X: 1, Y: 0, Z: -5}},
		SRID:   geo.SRIDWGS84,
	}
	points, err := r.RoutePoints()
	if err != nil {
		t.Fatalf("RoutePoints: %v", err)
	}
	if points[0].X != 0 || points[0].Z != -5 {
		t.Errorf("expected origin to stay at origin, got %v", points[0])
	}
	if points[1].X < 111000 || points[1].X > 111400 {
		t.Errorf("expected one degree of longitude near 111km, got %f", points[1].X)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "route.wkt")
	if err := os.WriteFile(path, []byte("LINESTRING Z (0 0 -1, 10 0 -1)"), 0644); err != nil {
		t.Fatalf("failed to write route: %v", err)
	}
	r = RouteConfig{File: path, Points: r.Points}
	points, err = r.RoutePoints()
	if err != nil {
		t.Fatalf("RoutePoints from file: %v", err)
	}
	if len(points) != 2 || points[1].X != 10 {
		t.Errorf("expected file route to win over inline points, got %v", points)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv(EnvConfigPath, "")

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  fps: 24\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "addr flag",
			setup: func() { *flagAddr = "0.0.0.0:7000" },
			verify: func(cfg *Config) {
				if cfg.Server.Addr != "0.0.0.0:7000" {
					t.Errorf("expected addr 0.0.0.0:7000, got %s", cfg.Server.Addr)
				}
			},
			teardown: func() { *flagAddr = "" },
		},
		{
			name:  "fps flag",
			setup: func() { *flagFPS = 24 },
			verify: func(cfg *Config) {
				if cfg.Server.FPS != 24 {
					t.Errorf("expected fps 24, got %d", cfg.Server.FPS)
				}
			},
			teardown: func() { *flagFPS = 0 },
		},
		{
			name: "route and srid flags",
			setup: func() {
				*flagRoute = "route.geojson"
				*flagSRID = 4326
			},
			verify: func(cfg *Config) {
				if cfg.Route.File != "route.geojson" {
					t.Errorf("expected route file route.geojson, got %s", cfg.Route.File)
				}
				if cfg.Route.SRID != 4326 {
					t.Errorf("expected srid 4326, got %d", cfg.Route.SRID)
				}
			},
			teardown: func() {
				*flagRoute = ""
				*flagSRID = -1
			},
		},
		{
			name:  "log file flag",
			setup: func() { *flagLogFile = "/tmp/diorama.log" },
			verify: func(cfg *Config) {
				if cfg.Logging.LogFile != "/tmp/diorama.log" {
					t.Errorf("expected log file /tmp/diorama.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  addr: ":9001"
  fps: 30
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagFPS = 50
	defer func() {
		*flagConfig = ""
		*flagFPS = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// FPS should be from flag (50), not file (30)
	if cfg.Server.FPS != 50 {
		t.Errorf("expected fps 50 from flag, got %d", cfg.Server.FPS)
	}

	// Addr should be from file since no flag override
	if cfg.Server.Addr != ":9001" {
		t.Errorf("expected addr :9001 from file, got %s", cfg.Server.Addr)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  fps: -1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Server.FPS = 25
	cfg.Animation.Boat.SeedBlend = 750 * time.Millisecond
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Server.FPS != 25 {
		t.Errorf("expected fps 25 after reload, got %d", loaded.Server.FPS)
	}
	if loaded.Animation.Boat.SeedBlend != 750*time.Millisecond {
		t.Errorf("expected seed blend 750ms after reload, got %v", loaded.Animation.Boat.SeedBlend)
	}
	if len(loaded.Bookmarks) != len(cfg.Bookmarks) || loaded.Bookmarks[3].Camera.Tilt != 78.73 {
		t.Errorf("bookmarks did not survive the round trip: %+v", loaded.Bookmarks)
	}
}

func TestFindConfigFileFromEnv(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	envPath := filepath.Join(tmpDir, "elsewhere.yaml")
	if err := os.WriteFile(envPath, []byte("server:\n  fps: 24\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	t.Setenv(EnvConfigPath, envPath)

	if path := findConfigFile(); path != envPath {
		t.Errorf("expected %s from %s, got %q", envPath, EnvConfigPath, path)
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  fsp: 30\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected a misspelled key to be rejected")
	}
}

func TestLoadFromFileResolvesRoute(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("route:\n  file: routes/sub.wkt\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if want := filepath.Join(tmpDir, "routes", "sub.wkt"); cfg.Route.File != want {
		t.Errorf("expected route file %s, got %s", want, cfg.Route.File)
	}
}

func TestSaveToRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Server.FPS = 0
	if err := cfg.SaveTo(path); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid config should not be written")
	}
}
