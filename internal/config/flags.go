package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagLevel  = flag.String("level", "", "Level file to build")
	flagWatch  = flag.Bool("watch", false, "Rebuild when the level file changes")
	flagTag    = flag.String("tag", "", "Actor tag collected by the exclusion node")
	flagNoSnap = flag.Bool("no-snap", false, "Disable ground snapping")
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
	if *flagLevel != "" {
		cfg.Scene.Level = *flagLevel
	}
	if *flagWatch {
		cfg.Scene.Watch = true
	}
	if *flagTag != "" {
		cfg.PCG.ActorTag = *flagTag
	}
	if *flagNoSnap {
		cfg.Snap.Enabled = false
	}
}
