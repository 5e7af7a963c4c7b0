package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/kiliankoe/numberhunter/internal/game"
)

type Config struct {
	Port               string
	LogLevel           string
	HostUser           string
	HostPass           string
	SingleSession      bool
	ExportEnabled      bool
	ExportFile         string
	ConfigFile         string
	DefaultTargetCount int
	// Spread avoids overlap when placing small initial boards.
	Spread  bool
	Timings game.Timings
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.LogLevel = getenv("LOG_LEVEL", "info")
	c.HostUser = os.Getenv("HOST_USER")
	c.HostPass = os.Getenv("HOST_PASS")
	c.SingleSession = getenv("SINGLE_SESSION", "false") == "true"
	c.ExportEnabled = getenv("EXPORT_ENABLED", "true") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./numberhunter-results.txt")
	c.ConfigFile = os.Getenv("CONFIG_FILE")
	c.DefaultTargetCount = getenvInt("DEFAULT_TARGET_COUNT", 50)
	c.Spread = getenv("SPREAD", "true") == "true"
	c.Timings = game.DefaultTimings()
	return c
}

// Load reads the environment and then applies the config file named by
// CONFIG_FILE (or path, when non-empty) on top.
func Load(path string) (Config, error) {
	c := FromEnv()
	if path != "" {
		c.ConfigFile = path
	}
	if c.ConfigFile == "" {
		return c, nil
	}
	f, err := LoadFile(c.ConfigFile)
	if err != nil {
		return c, err
	}
	f.Apply(&c)
	return c, nil
}

// AuthEnabled reports whether host routes are protected by basic auth.
func (c Config) AuthEnabled() bool {
	return c.HostUser != "" && c.HostPass != ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getenvInt(k string, def int) int {
	v, err := strconv.Atoi(getenv(k, ""))
	if err != nil || v < 1 {
		return def
	}
	return v
}
