// Package config loads and validates the iwt configuration.
// One Config value is threaded explicitly through all components; nothing
// reads configuration ad hoc at call sites.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultPrefix is the branch prefix used when none is configured.
const DefaultPrefix = "issue"

// DefaultLinksFileName is the private-link declaration file, read from the
// repository root. Its absence is not an error.
const DefaultLinksFileName = ".worktree-links.local.json"

// LinksConfig holds private-link application settings.
type LinksConfig struct {
	File    string `toml:"file"`    // override path of the declaration file
	Force   bool   `toml:"force"`   // replace existing files/symlinks at dest
	Disable bool   `toml:"disable"` // skip link application entirely
}

// Config holds the iwt configuration.
type Config struct {
	WorktreeDir string      `toml:"worktree_dir"` // root for new worktrees; default <repo-parent>/worktrees
	BaseBranch  string      `toml:"base_branch"`  // base for new branches; default origin/HEAD
	Prefix      string      `toml:"prefix"`       // branch prefix; default "issue"
	Links       LinksConfig `toml:"links"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{Prefix: DefaultPrefix}
}

// ValidatePath checks that the path is absolute or starts with ~.
// Relative paths like "." or ".." are rejected.
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // empty means not configured
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "iwt", "config.toml"), nil
}

// Load reads config from ~/.config/iwt/config.toml.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from an explicit path, applying the same defaulting
// and validation rules as Load.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidatePath(cfg.WorktreeDir, "worktree_dir"); err != nil {
		return Default(), err
	}
	if cfg.WorktreeDir != "" {
		expanded, err := expandPath(cfg.WorktreeDir)
		if err != nil {
			return Default(), fmt.Errorf("expand worktree_dir: %w", err)
		}
		cfg.WorktreeDir = expanded
	}

	if cfg.Links.File != "" {
		expanded, err := expandPath(cfg.Links.File)
		if err != nil {
			return Default(), fmt.Errorf("expand links.file: %w", err)
		}
		cfg.Links.File = expanded
	}

	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	return cfg, nil
}

const defaultConfig = `# iwt configuration

# Root directory for new worktrees
# Must be an absolute path or start with ~ (no relative paths like "." or "..")
# Default: the "worktrees" directory next to the repository
# worktree_dir = "~/Git/worktrees"

# Base branch for new issue branches
# Default: the branch origin/HEAD points at (usually main or master)
# base_branch = "main"

# Branch name prefix; branches become <prefix>/gh-123-slug or <prefix>/lin-abc-7-slug
prefix = "issue"

# Private file links, applied into every new worktree.
# Link declarations live in <repo>/.worktree-links.local.json as a JSON array:
#   [{"src": "~/secrets/.env", "dest": ".env", "force": false}]
# [links]
# file = ""        # override the declaration file path
# force = false    # replace existing files/symlinks at dest (never directories)
# disable = false  # skip link application entirely
`

// Init creates a default config file at ~/.config/iwt/config.toml.
// If force is true, overwrites an existing file.
// Returns the path to the created file.
func Init(force bool) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}
	return path, nil
}
