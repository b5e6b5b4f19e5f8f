// Package config handles configuration loading from CLI flags,
// environment variables, and TOML files.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration settings for the builder.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Project ProjectConfig `toml:"project"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig holds preview-server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ProjectConfig holds project file settings.
type ProjectConfig struct {
	Path   string `toml:"path"`   // project snapshot file
	Output string `toml:"output"` // compiled JS output file
	Watch  bool   `toml:"watch"`  // hot-reload the project file
}

// StorageConfig holds snapshot storage settings.
type StorageConfig struct {
	Type string `toml:"type"` // "memory", "sqlite", "postgresql"
	Path string `toml:"path"` // SQLite file path
	URL  string `toml:"url"`  // PostgreSQL connection URL
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Verbosity int `toml:"verbosity"` // 0=errors, 1=lifecycle, 2=operations, 3=mutations, 4=values
}

// Duration is a time.Duration that can be unmarshaled from TOML strings.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// verbosityCounter implements flag.Value for counting -v flags.
type verbosityCounter int

func (v *verbosityCounter) String() string {
	return fmt.Sprintf("%d", *v)
}

func (v *verbosityCounter) Set(string) error {
	*v++
	return nil
}

func (v *verbosityCounter) IsBoolFlag() bool {
	return true
}

// expandVerbosityFlags preprocesses args to expand -vvv into -v -v -v.
func expandVerbosityFlags(args []string) []string {
	result := make([]string, 0, len(args))
	for _, arg := range args {
		if len(arg) > 2 && arg[0] == '-' && arg[1] == 'v' {
			allV := true
			for _, c := range arg[1:] {
				if c != 'v' {
					allV = false
					break
				}
			}
			if allV {
				for range arg[1:] {
					result = append(result, "-v")
				}
				continue
			}
		}
		result = append(result, arg)
	}
	return result
}

// DefaultConfig returns a Config with all default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Project: ProjectConfig{
			Path:   "project.json",
			Output: "app.js",
			Watch:  true,
		},
		Storage: StorageConfig{
			Type: "memory",
			Path: "projects.db",
		},
		Logging: LoggingConfig{
			Verbosity: 0,
		},
	}
}

// Load loads configuration from CLI flags, environment variables, and a
// TOML file. Priority: CLI flags > env vars > TOML file > defaults.
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()
	args = expandVerbosityFlags(args)

	fs := flag.NewFlagSet("ui-builder", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML config file")
	host := fs.String("host", "", "Preview server listen address")
	port := fs.Int("port", 0, "Preview server listen port")
	project := fs.String("project", "", "Project snapshot file")
	output := fs.String("out", "", "Compiled JS output file")
	watch := fs.Bool("watch", true, "Hot-reload the project file")
	storage := fs.String("storage", "", "Storage type: memory, sqlite, postgresql")
	storagePath := fs.String("storage-path", "", "SQLite database path")
	storageURL := fs.String("storage-url", "", "PostgreSQL connection URL")
	var verbosity verbosityCounter
	fs.Var(&verbosity, "v", "Verbosity level (use -v, -vv, or -vvv)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path := "ui-builder.toml"
	if *configPath != "" {
		path = *configPath
	}
	if err := cfg.loadTOML(path); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()

	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *project != "" {
		cfg.Project.Path = *project
	}
	if *output != "" {
		cfg.Project.Output = *output
	}
	if fs.Lookup("watch").Value.String() != "true" {
		cfg.Project.Watch = *watch
	}
	if *storage != "" {
		cfg.Storage.Type = *storage
	}
	if *storagePath != "" {
		cfg.Storage.Path = *storagePath
	}
	if *storageURL != "" {
		cfg.Storage.URL = *storageURL
	}
	if verbosity > 0 {
		cfg.Logging.Verbosity = int(verbosity)
	}
	return cfg, nil
}

// loadTOML loads configuration from a TOML file.
func (c *Config) loadTOML(path string) error {
	_, err := toml.DecodeFile(path, c)
	return err
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("UIB_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("UIB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("UIB_PROJECT"); v != "" {
		c.Project.Path = v
	}
	if v := os.Getenv("UIB_OUTPUT"); v != "" {
		c.Project.Output = v
	}
	if v := os.Getenv("UIB_STORAGE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("UIB_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("UIB_STORAGE_URL"); v != "" {
		c.Storage.URL = v
	}
	if v := os.Getenv("UIB_VERBOSITY"); v != "" {
		if verbosity, err := strconv.Atoi(v); err == nil {
			c.Logging.Verbosity = verbosity
		}
	}
}

// Verbosity returns the configured verbosity level.
func (c *Config) Verbosity() int {
	return c.Logging.Verbosity
}

// Log logs a message when the verbosity level admits it.
func (c *Config) Log(level int, format string, args ...interface{}) {
	if c.Logging.Verbosity >= level {
		log.Printf(format, args...)
	}
}
