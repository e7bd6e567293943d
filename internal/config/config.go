// Package config provides reading and writing of glossd configuration.
// Supports both global (~/.glossd/config.yaml) and local (.glossd/config.yaml).
// Reading: uses local if it exists, otherwise global.
// Writing: defaults to global, use --local for local.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.glossd/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is repository-specific config in .glossd/config.yaml
	ScopeLocal
)

// User identifies who is searching. ID 0 is anonymous.
type User struct {
	ID   *int64 `yaml:"id,omitempty"`
	Name string `yaml:"name,omitempty"`
}

// Search holds settings applied to every search.
type Search struct {
	FullText        *bool  `yaml:"full_text,omitempty"`
	Format          string `yaml:"format,omitempty"`
	KeepEmptyTokens *bool  `yaml:"keep_empty_tokens,omitempty"`
}

// Access holds permission settings.
type Access struct {
	// Open grants every user the view capability on every glossary.
	Open *bool `yaml:"open,omitempty"`
}

// Limits holds size limit configuration options.
type Limits struct {
	MaxQuery *int `yaml:"max_query,omitempty"`
}

// Defaults applied when not configured.
const (
	DefaultFormat   = "dictionary"
	DefaultMaxQuery = 255 // the search form's maxlength
)

// Validation bounds for configuration values.
const (
	MinMaxQuery = 1
	MaxMaxQuery = 4096
)

// Formats returns the entry display formats search.format accepts.
func Formats() []string {
	return []string{"dictionary", "continuous", "fullwithauthor", "entrylist"}
}

// Config contains configuration for glossd.
type Config struct {
	User   User   `yaml:"user,omitempty"`
	Search Search `yaml:"search,omitempty"`
	Access Access `yaml:"access,omitempty"`
	Limits Limits `yaml:"limits,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.User.ID != nil && *c.User.ID < 0 {
		return fmt.Errorf("%w: user.id must not be negative, got %d", ErrInvalidValue, *c.User.ID)
	}
	if c.Search.Format != "" && !slices.Contains(Formats(), c.Search.Format) {
		return fmt.Errorf("%w: search.format must be one of %s, got %q",
			ErrInvalidValue, strings.Join(Formats(), ", "), c.Search.Format)
	}
	if c.Limits.MaxQuery != nil {
		v := *c.Limits.MaxQuery
		if v < MinMaxQuery || v > MaxMaxQuery {
			return fmt.Errorf("%w: max_query must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxQuery, MaxMaxQuery, v)
		}
	}
	return nil
}

// UserID returns the configured user (defaults to 0, anonymous).
func (c *Config) UserID() int64 {
	if c.User.ID == nil {
		return 0
	}
	return *c.User.ID
}

// FullText returns whether definitions are searched (defaults to true).
func (c *Config) FullText() bool {
	if c.Search.FullText == nil {
		return true
	}
	return *c.Search.FullText
}

// Format returns the default entry display format (defaults to dictionary).
func (c *Config) Format() string {
	if c.Search.Format == "" {
		return DefaultFormat
	}
	return c.Search.Format
}

// KeepEmptyTokens returns whether repeated spaces produce empty tokens
// (defaults to false).
func (c *Config) KeepEmptyTokens() bool {
	if c.Search.KeepEmptyTokens == nil {
		return false
	}
	return *c.Search.KeepEmptyTokens
}

// OpenAccess returns whether every user may view every glossary (defaults
// to true).
func (c *Config) OpenAccess() bool {
	if c.Access.Open == nil {
		return true
	}
	return *c.Access.Open
}

// MaxQuery returns the maximum query length in characters (defaults to 255).
func (c *Config) MaxQuery() int {
	if c.Limits.MaxQuery == nil {
		return DefaultMaxQuery
	}
	return *c.Limits.MaxQuery
}

// LocalPath returns the path to the local (repository) config file.
func LocalPath() string {
	return filepath.Join(".glossd", "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.glossd/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".glossd", "config.yaml")
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	// Check if local config exists
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	// Fall back to global
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
