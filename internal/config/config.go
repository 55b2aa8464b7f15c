// Package config reads nameplate.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/jward/nameplate/internal/diag"
	"github.com/jward/nameplate/internal/naming"
)

// FileName is the configuration file looked up by Find.
const FileName = "nameplate.toml"

// Config is the decoded configuration file.
type Config struct {
	Database        string      `toml:"database"`
	Assembly        string      `toml:"assembly"`
	IncludeExternal bool        `toml:"include_external"`
	Logging         Logging     `toml:"logging"`
	Naming          Naming      `toml:"naming"`
	References      []Reference `toml:"references"`

	// dir is the directory of the file the config was loaded from; relative
	// paths are resolved against it.
	dir string
}

type Logging struct {
	Diagnostics bool `toml:"diagnostics"`
	Logs        bool `toml:"logs"`
}

type Naming struct {
	TypeArguments bool `toml:"type_arguments"`
	Variance      bool `toml:"variance"`
	Parameters    bool `toml:"parameters"`
}

// Reference is an external assembly indexed from a source directory.
type Reference struct {
	Assembly string `toml:"assembly"`
	Path     string `toml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Database: filepath.Join(".nameplate", "index.db"),
		Assembly: "App",
		Logging:  Logging{Diagnostics: true},
		Naming:   Naming{Variance: true},
		dir:      ".",
	}
}

// Load decodes the file at path over the defaults. A missing file yields
// the defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	for i, ref := range cfg.References {
		if ref.Assembly == "" || ref.Path == "" {
			return nil, fmt.Errorf("parse config %s: reference %d needs assembly and path", path, i)
		}
	}
	return cfg, nil
}

// Find walks up from startDir looking for nameplate.toml. It stops at the
// first directory containing .git, or at the filesystem root, and returns
// "" when no file was found.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("find config: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Resolve makes p absolute relative to the config file's directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// DatabasePath is the resolved database location.
func (c *Config) DatabasePath() string {
	return c.Resolve(c.Database)
}

func (c *Config) FilterMode() diag.FilterMode {
	return diag.FilterModeFrom(c.Logging.Diagnostics, c.Logging.Logs)
}

func (c *Config) Format() naming.Format {
	return naming.FormatFrom(c.Naming.TypeArguments, c.Naming.Variance, c.Naming.Parameters)
}
