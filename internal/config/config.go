package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage backend names for Config.Storage.
const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
)

// Defaults for the local web UI listener.
const (
	DefaultWebBind = "127.0.0.1"
	DefaultWebPort = 8532
)

// Config holds application configuration.
type Config struct {
	// Storage selects the persistence backend for the collection slot.
	// Supported values: "sqlite" (default) and "file".
	Storage string `json:"storage,omitempty"`

	// ShareBaseURL is the link prefix used when building share links;
	// the token rides in the URL fragment after it. Empty means derive
	// from the web listener address.
	ShareBaseURL string `json:"share_base_url,omitempty"`

	// WebBind is the address the local web UI listens on.
	WebBind string `json:"web_bind,omitempty"`

	// WebPort is the port the local web UI listens on.
	WebPort int `json:"web_port,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.marklet/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// When true, any directory is allowed (but symlink and extension checks still apply).
	// Use with caution: enables file read/write outside ~/.marklet/exports.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// All tools are enabled by default. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageSQLite,
		WebBind: DefaultWebBind,
		WebPort: DefaultWebPort,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.marklet.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// Validate rejects config values the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageFile:
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q (supported: %s, %s)", c.Storage, StorageSQLite, StorageFile)
	}
}

// ShareBase returns the configured share link prefix, or one derived
// from the web listener address when unset.
func (c *Config) ShareBase() string {
	if c.ShareBaseURL != "" {
		return c.ShareBaseURL
	}
	return fmt.Sprintf("http://%s:%d/import", c.WebBind, c.WebPort)
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, return zero config
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.Storage = overlay.Storage
	if result.Storage == "" {
		result.Storage = base.Storage
	}

	result.ShareBaseURL = overlay.ShareBaseURL
	if result.ShareBaseURL == "" {
		result.ShareBaseURL = base.ShareBaseURL
	}

	result.WebBind = overlay.WebBind
	if result.WebBind == "" {
		result.WebBind = base.WebBind
	}

	result.WebPort = overlay.WebPort
	if result.WebPort == 0 {
		result.WebPort = base.WebPort
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
