package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"cguard/internal/directive"
	"cguard/internal/diagfmt"
)

const manifestName = "cguard.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
	meta   toml.MetaData
}

type projectConfig struct {
	Check  checkConfig  `toml:"check"`
	Output outputConfig `toml:"output"`
}

type checkConfig struct {
	Extensions []string `toml:"extensions"`
	Parse      bool     `toml:"parse"`
	All        bool     `toml:"all"`
	Jobs       int      `toml:"jobs"`
	Engine     string   `toml:"engine"`
	NFC        bool     `toml:"nfc"`
	Cache      bool     `toml:"cache"`
}

type outputConfig struct {
	Format    string `toml:"format"`
	Color     string `toml:"color"`
	PathMode  string `toml:"path_mode"`
	WithNotes *bool  `toml:"with_notes"`
}

// isSet reports whether the manifest defines key, e.g. ("check", "parse").
func (m *projectManifest) isSet(key ...string) bool {
	return m != nil && m.meta.IsDefined(key...)
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest finds cguard.toml upwards from startDir and loads it.
// A missing manifest is not an error.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := loadManifestFile(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func loadManifestFile(path string) (*projectManifest, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &projectManifest{
		Path:   abs,
		Root:   filepath.Dir(abs),
		Config: cfg,
		meta:   meta,
	}, nil
}

func (c projectConfig) validate() error {
	if c.Check.Engine != "" {
		if _, err := directive.ParseEngine(c.Check.Engine); err != nil {
			return fmt.Errorf("[check].engine: %w", err)
		}
	}
	if c.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must be >= 0, got %d", c.Check.Jobs)
	}
	for _, ext := range c.Check.Extensions {
		if strings.TrimSpace(ext) == "" {
			return fmt.Errorf("[check].extensions: empty extension")
		}
	}
	if c.Output.Format != "" {
		if _, err := parseFormat(c.Output.Format); err != nil {
			return fmt.Errorf("[output].format: %w", err)
		}
	}
	if c.Output.Color != "" {
		if _, err := readSwitch("color", c.Output.Color); err != nil {
			return fmt.Errorf("[output].color: %w", err)
		}
	}
	if c.Output.PathMode != "" {
		if _, err := diagfmt.ParsePathMode(c.Output.PathMode); err != nil {
			return fmt.Errorf("[output].path_mode: %w", err)
		}
	}
	return nil
}

type manifestKey struct{}

func withManifest(ctx context.Context, m *projectManifest) context.Context {
	return context.WithValue(ctx, manifestKey{}, m)
}

// manifestFrom returns the manifest loaded for the command, or nil.
func manifestFrom(ctx context.Context) *projectManifest {
	m, _ := ctx.Value(manifestKey{}).(*projectManifest)
	return m
}

// loadManifestForCmd honours --config and --no-config; otherwise it
// searches upwards from the working directory.
func loadManifestForCmd(cmd *cobra.Command) (*projectManifest, error) {
	flags := cmd.Root().PersistentFlags()
	noConfig, err := flags.GetBool("no-config")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-config flag: %w", err)
	}
	if noConfig {
		return nil, nil
	}
	explicit, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if explicit != "" {
		return loadManifestFile(explicit)
	}
	m, _, err := loadProjectManifest(".")
	return m, err
}
