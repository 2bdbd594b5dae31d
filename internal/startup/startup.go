package startup

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"lightbooru/internal/dupes"
	"lightbooru/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// DefaultConfigFile is consulted when LIGHTBOORU_CONFIG is unset.
const DefaultConfigFile = "lightbooru.toml"

// Config holds all application configuration. Values load from the TOML
// config file first, then environment variables override individual fields.
type Config struct {
	// Roots are the library directories to scan.
	Roots []string `toml:"roots"`

	Port           string        `toml:"port"`
	RescanInterval time.Duration `toml:"-"`
	RescanRaw      string        `toml:"rescan_interval"`

	// Duplicate detection defaults; per-request parameters override them.
	HashAlgorithm string `toml:"hash_algorithm"`
	HashThreshold int    `toml:"hash_threshold"`
	SkipSameDir   bool   `toml:"skip_same_dir"`
}

// LoadConfig reads the config file (when present) and applies environment
// overrides. A missing config file is not an error; missing roots are.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:           "8080",
		RescanInterval: 0,
		HashAlgorithm:  string(dupes.PHash),
		HashThreshold:  dupes.DefaultThreshold,
	}

	path := getEnv("LIGHTBOORU_CONFIG", DefaultConfigFile)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		logging.Info("loaded configuration from %s", path)
	} else if os.Getenv("LIGHTBOORU_CONFIG") != "" {
		// An explicitly named file must exist.
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if cfg.RescanRaw != "" {
		interval, err := time.ParseDuration(cfg.RescanRaw)
		if err != nil {
			return nil, fmt.Errorf("invalid rescan_interval %q: %w", cfg.RescanRaw, err)
		}
		cfg.RescanInterval = interval
	}

	applyEnv(cfg)

	if _, err := dupes.ParseAlgorithm(cfg.HashAlgorithm); err != nil {
		return nil, err
	}
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("no library roots configured (set roots in %s or LIGHTBOORU_ROOTS)", path)
	}

	logging.Info("configuration:")
	logging.Info("  roots:           %s", strings.Join(cfg.Roots, ", "))
	logging.Info("  port:            %s", cfg.Port)
	logging.Info("  rescan interval: %s", describeInterval(cfg.RescanInterval))
	logging.Info("  hash algorithm:  %s (threshold %d)", cfg.HashAlgorithm, cfg.HashThreshold)
	logging.Info("  log level:       %s", logging.GetLevel())

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if roots := os.Getenv("LIGHTBOORU_ROOTS"); roots != "" {
		cfg.Roots = splitRoots(roots)
	}
	if port := os.Getenv("LIGHTBOORU_PORT"); port != "" {
		cfg.Port = port
	}
	if raw := os.Getenv("LIGHTBOORU_RESCAN_INTERVAL"); raw != "" {
		if interval, err := time.ParseDuration(raw); err == nil {
			cfg.RescanInterval = interval
		} else {
			logging.Warn("ignoring invalid LIGHTBOORU_RESCAN_INTERVAL %q: %v", raw, err)
		}
	}
	if algo := os.Getenv("LIGHTBOORU_HASH_ALGORITHM"); algo != "" {
		cfg.HashAlgorithm = algo
	}
	if raw := os.Getenv("LIGHTBOORU_HASH_THRESHOLD"); raw != "" {
		if threshold, err := strconv.Atoi(raw); err == nil && threshold >= 0 {
			cfg.HashThreshold = threshold
		} else {
			logging.Warn("ignoring invalid LIGHTBOORU_HASH_THRESHOLD %q", raw)
		}
	}
}

// splitRoots parses a list separated by the OS path-list separator or
// commas, whichever the operator used.
func splitRoots(raw string) []string {
	raw = strings.ReplaceAll(raw, string(os.PathListSeparator), ",")
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func describeInterval(d time.Duration) string {
	if d <= 0 {
		return "disabled (manual rebuilds only)"
	}
	return d.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
