// Package config loads process settings from the environment and the
// clinical table from JSON.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvAddr       = "YANAGIHARA_ADDR"
	EnvCamera     = "YANAGIHARA_CAMERA"
	EnvFPS        = "YANAGIHARA_FPS"
	EnvTable      = "YANAGIHARA_TABLE"
	EnvStaticDir  = "YANAGIHARA_STATIC_DIR"
	EnvTraceDir   = "YANAGIHARA_TRACE_DIR"
	EnvScript     = "YANAGIHARA_LANDMARKER"
	EnvStillLimit = "YANAGIHARA_STILL_LIMIT"
	EnvLogLevel   = "YANAGIHARA_LOG_LEVEL"
	EnvLogFile    = "YANAGIHARA_LOG_FILE"
)

// Config holds the process settings.
type Config struct {
	Addr       string
	CameraID   int
	FPS        int
	TablePath  string
	StaticDir  string
	TraceDir   string
	ScriptPath string
	StillLimit float64
	LogLevel   string
	LogFile    string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:       "127.0.0.1:8080",
		CameraID:   0,
		FPS:        30,
		StillLimit: 1.0,
		LogLevel:   "info",
	}
}

// Load reads the given dotenv files (".env" when none are named) into the
// environment and then builds a Config from it. Missing dotenv files are
// not an error; variables already set in the environment win.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a variable lookup.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()

	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str(EnvAddr, &c.Addr)
	str(EnvTable, &c.TablePath)
	str(EnvStaticDir, &c.StaticDir)
	str(EnvTraceDir, &c.TraceDir)
	str(EnvScript, &c.ScriptPath)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvLogFile, &c.LogFile)

	if v := getenv(EnvCamera); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("%s: invalid camera id %q", EnvCamera, v)
		}
		c.CameraID = n
	}
	if v := getenv(EnvFPS); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 120 {
			return Config{}, fmt.Errorf("%s: invalid frame rate %q", EnvFPS, v)
		}
		c.FPS = n
	}
	if v := getenv(EnvStillLimit); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return Config{}, fmt.Errorf("%s: invalid limit %q", EnvStillLimit, v)
		}
		c.StillLimit = f
	}
	return c, nil
}
