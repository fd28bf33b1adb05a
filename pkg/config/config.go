// Package config handles graphwalk configuration from environment variables
// and an optional YAML file.
//
// Values are resolved in this order, later sources winning:
//
//  1. DefaultConfig()
//  2. the YAML file passed to LoadFile (if any)
//  3. GRAPHWALK_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example Usage:
//
//	cfg, err := config.LoadFile("graphwalk.yaml")
//	if err != nil {
//		return err
//	}
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//
// Environment Variables:
//
//	GRAPHWALK_SEARCH_MODE=dfs|bfs
//	GRAPHWALK_FILES_ROOT=./file_nodes
//	GRAPHWALK_FILES_LINK_MARKER=.txt
//	GRAPHWALK_WEB_DRIVER=http|chrome
//	GRAPHWALK_WEB_TIMEOUT=30s
//	GRAPHWALK_WEB_USER_AGENT=...
//	GRAPHWALK_WEB_HEADLESS=true
//	GRAPHWALK_WEB_CHROME_PATH=/usr/bin/chromium
//	GRAPHWALK_WEB_SAME_HOST=true
//	GRAPHWALK_STORAGE_DATA_DIR=./data
//	GRAPHWALK_STORAGE_SYNC_WRITES=false
//	GRAPHWALK_LOG_LEVEL=info
//	GRAPHWALK_LOG_FORMAT=text|json
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/orneryd/graphwalk/pkg/traverse"
)

// Config holds all graphwalk configuration.
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Files   FilesConfig   `yaml:"files"`
	Web     WebConfig     `yaml:"web"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// SearchConfig holds traversal settings.
type SearchConfig struct {
	// Mode is "dfs" or "bfs"
	Mode string `yaml:"mode"`
}

// FilesConfig holds file-graph settings.
type FilesConfig struct {
	// Root is the directory holding one file per node
	Root string `yaml:"root"`
	// LinkMarker identifies the children line of a node file
	LinkMarker string `yaml:"link_marker"`
}

// WebConfig holds web traversal settings.
type WebConfig struct {
	// Driver is "http" or "chrome"
	Driver string `yaml:"driver"`
	// Timeout bounds each page load
	Timeout time.Duration `yaml:"timeout"`
	// UserAgent overrides the default user agent
	UserAgent string `yaml:"user_agent"`
	// Headless runs Chrome without a window
	Headless bool `yaml:"headless"`
	// ChromePath points at the Chrome binary
	ChromePath string `yaml:"chrome_path"`
	// SameHost restricts crawling to the start URL's host
	SameHost bool `yaml:"same_host"`
}

// StorageConfig holds matrix store settings.
type StorageConfig struct {
	// DataDir is the BadgerDB directory
	DataDir string `yaml:"data_dir"`
	// SyncWrites forces fsync after each write
	SyncWrites bool `yaml:"sync_writes"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is a logrus level name (debug, info, warn, ...)
	Level string `yaml:"level"`
	// Format is "text" or "json"
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{Mode: "dfs"},
		Files: FilesConfig{
			Root:       "./file_nodes",
			LinkMarker: ".txt",
		},
		Web: WebConfig{
			Driver:   "http",
			Timeout:  30 * time.Second,
			Headless: true,
			SameHost: true,
		},
		Storage: StorageConfig{DataDir: "./data"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadFromEnv returns the defaults overridden by GRAPHWALK_* variables.
func LoadFromEnv() *Config {
	c := DefaultConfig()
	c.applyEnv()
	return c
}

// LoadFile reads a YAML config file, then applies environment overrides.
// An empty path behaves like LoadFromEnv.
func LoadFile(path string) (*Config, error) {
	c := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	c.Search.Mode = getEnv("GRAPHWALK_SEARCH_MODE", c.Search.Mode)

	c.Files.Root = getEnv("GRAPHWALK_FILES_ROOT", c.Files.Root)
	c.Files.LinkMarker = getEnv("GRAPHWALK_FILES_LINK_MARKER", c.Files.LinkMarker)

	c.Web.Driver = getEnv("GRAPHWALK_WEB_DRIVER", c.Web.Driver)
	c.Web.Timeout = getEnvDuration("GRAPHWALK_WEB_TIMEOUT", c.Web.Timeout)
	c.Web.UserAgent = getEnv("GRAPHWALK_WEB_USER_AGENT", c.Web.UserAgent)
	c.Web.Headless = getEnvBool("GRAPHWALK_WEB_HEADLESS", c.Web.Headless)
	c.Web.ChromePath = getEnv("GRAPHWALK_WEB_CHROME_PATH", c.Web.ChromePath)
	c.Web.SameHost = getEnvBool("GRAPHWALK_WEB_SAME_HOST", c.Web.SameHost)

	c.Storage.DataDir = getEnv("GRAPHWALK_STORAGE_DATA_DIR", c.Storage.DataDir)
	c.Storage.SyncWrites = getEnvBool("GRAPHWALK_STORAGE_SYNC_WRITES", c.Storage.SyncWrites)

	c.Logging.Level = getEnv("GRAPHWALK_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("GRAPHWALK_LOG_FORMAT", c.Logging.Format)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := traverse.ParseMode(c.Search.Mode); err != nil {
		return err
	}
	if c.Files.LinkMarker == "" {
		return fmt.Errorf("files link marker must not be empty")
	}
	switch c.Web.Driver {
	case "http", "chrome":
	default:
		return fmt.Errorf("invalid web driver: %q (want http or chrome)", c.Web.Driver)
	}
	if c.Web.Timeout < 0 {
		return fmt.Errorf("invalid web timeout: %v", c.Web.Timeout)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q (want text or json)", c.Logging.Format)
	}
	return nil
}

// SearchMode returns the parsed search mode, defaulting to DFS.
func (c *Config) SearchMode() traverse.Mode {
	m, err := traverse.ParseMode(c.Search.Mode)
	if err != nil {
		return traverse.DepthFirst
	}
	return m
}

// String returns a one-line summary suitable for logging.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Mode: %s, FilesRoot: %s, WebDriver: %s, DataDir: %s, Log: %s/%s}",
		c.Search.Mode, c.Files.Root, c.Web.Driver, c.Storage.DataDir,
		c.Logging.Level, c.Logging.Format,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		// Try parsing as seconds
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}
