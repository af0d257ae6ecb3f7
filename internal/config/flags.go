package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagAddr    = flag.String("addr", "", "Viewer listen address")
	flagFPS     = flag.Int("fps", 0, "Frame loop rate")
	flagRoute   = flag.String("route", "", "Submarine route file (WKT or GeoJSON)")
	flagSRID    = flag.Int("srid", -1, "Spatial reference of the route (4326 or 3857)")
	flagLogFile = flag.String("log-file", "", "Rotating log file path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagFPS > 0 {
		cfg.Server.FPS = *flagFPS
	}
	if *flagRoute != "" {
		cfg.Route.File = *flagRoute
	}
	if *flagSRID >= 0 {
		cfg.Route.SRID = *flagSRID
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
