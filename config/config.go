// Package config handles gwbasic.toml session configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file.
const FileName = "gwbasic.toml"

// Config represents a gwbasic.toml configuration.
type Config struct {
	Session Session `toml:"session"`
	Store   Store   `toml:"store"`
	Log     Log     `toml:"log"`
	Server  Server  `toml:"server"`

	// Dir is the directory containing the gwbasic.toml file (set at load time).
	Dir string `toml:"-"`
}

// Session configures the interpreter.
type Session struct {
	// Syntax is the dialect: "advanced", "pcjr" or "tandy".
	Syntax        string `toml:"syntax"`
	Tron          bool   `toml:"tron"`
	MaxGosubDepth int    `toml:"max-gosub-depth"`
	// Width is the console width PRINT wraps at.
	Width int `toml:"width"`
}

// Store configures the program library.
type Store struct {
	Path string `toml:"path"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Server configures the language server.
type Server struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	c := &Config{}
	c.fillDefaults()
	return c
}

func (c *Config) fillDefaults() {
	if c.Session.Syntax == "" {
		c.Session.Syntax = "advanced"
	}
	if c.Session.MaxGosubDepth <= 0 {
		c.Session.MaxGosubDepth = 1000
	}
	if c.Session.Width <= 0 {
		c.Session.Width = 80
	}
}

// Load parses a gwbasic.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("config: cannot resolve path %s: %w", dir, err)
	}
	c.fillDefaults()
	return &c, nil
}

// FindAndLoad walks up from startDir to find a gwbasic.toml file, then
// loads it. It returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// StorePath returns the program library path, resolved against the
// configuration directory. Empty means the store default.
func (c *Config) StorePath() string {
	if c.Store.Path == "" || c.Store.Path == ":memory:" || filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.Dir, c.Store.Path)
}

// LogPath returns the log file path, resolved like StorePath.
func (c *Config) LogPath() string {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.Dir, c.Log.File)
}
