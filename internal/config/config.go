// Package config loads sharpfix.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"sharpfix/internal/diag"
	"sharpfix/internal/rule"
)

// FileName is the name looked up by Find.
const FileName = "sharpfix.toml"

// ErrUnknownKey is returned for keys the configuration does not define.
var ErrUnknownKey = errors.New("unknown configuration key")

// Config is a decoded sharpfix.toml.
type Config struct {
	Path  string      `toml:"-"` // пусто для конфигурации по умолчанию
	Root  string      `toml:"-"` // каталог, относительно которого матчатся globs
	Rules RulesConfig `toml:"rules"`
	Files FilesConfig `toml:"files"`
	Run   RunConfig   `toml:"run"`
}

// RulesConfig selects rules and overrides their severities.
type RulesConfig struct {
	Enable   []string          `toml:"enable"`
	Disable  []string          `toml:"disable"`
	Severity map[string]string `toml:"severity"`
}

// FilesConfig holds doublestar patterns over slash-separated paths relative to Root.
type FilesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// RunConfig tunes the driver.
type RunConfig struct {
	Jobs     int    `toml:"jobs"`
	Cache    bool   `toml:"cache"`
	CacheDir string `toml:"cache_dir"`
	UI       string `toml:"ui"` // progress view default: auto, on or off
}

// Default returns the configuration used when no file is found.
func Default(root string) *Config {
	return &Config{
		Root: root,
		Files: FilesConfig{
			Include: []string{"**/*.cs"},
			Exclude: []string{"**/bin/**", "**/obj/**"},
		},
	}
}

// Find walks up from startDir to locate sharpfix.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
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

// Discover loads the nearest sharpfix.toml above start, or the default
// configuration rooted at start when there is none.
func Discover(start string) (*Config, error) {
	path, ok, err := Find(start)
	if err != nil {
		return nil, err
	}
	if !ok {
		root, err := filepath.Abs(start)
		if err != nil {
			return nil, err
		}
		if info, err := os.Stat(root); err == nil && !info.IsDir() {
			root = filepath.Dir(root)
		}
		return Default(root), nil
	}
	return Load(path)
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = abs
	return cfg, nil
}

// Parse decodes TOML data. Sections left out keep their defaults.
func Parse(data []byte, root string) (*Config, error) {
	cfg := Default(root)
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Run.Jobs < 0 {
		return fmt.Errorf("[run].jobs must not be negative, got %d", c.Run.Jobs)
	}
	switch c.Run.UI {
	case "", "auto", "on", "off":
	default:
		return fmt.Errorf("[run].ui must be auto, on or off, got %q", c.Run.UI)
	}
	for _, list := range [][]string{c.Files.Include, c.Files.Exclude} {
		for _, p := range list {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("[files]: invalid pattern %q", p)
			}
		}
	}
	_, err := c.Selection()
	return err
}

// Selection converts the [rules] section into a rule selection.
func (c *Config) Selection() (rule.Selection, error) {
	var sel rule.Selection
	var err error
	if sel.Only, err = codes("enable", c.Rules.Enable); err != nil {
		return rule.Selection{}, err
	}
	if sel.Disable, err = codes("disable", c.Rules.Disable); err != nil {
		return rule.Selection{}, err
	}
	if len(c.Rules.Severity) > 0 {
		sel.Severity = make(map[diag.Code]diag.Severity, len(c.Rules.Severity))
		for k, v := range c.Rules.Severity {
			code, err := diag.ParseCode(k)
			if err != nil {
				return rule.Selection{}, fmt.Errorf("[rules.severity]: %w", err)
			}
			sev, err := diag.ParseSeverity(v)
			if err != nil {
				return rule.Selection{}, fmt.Errorf("[rules.severity].%s: %w", k, err)
			}
			sel.Severity[code] = sev
		}
	}
	return sel, nil
}

func codes(key string, list []string) ([]diag.Code, error) {
	out := make([]diag.Code, 0, len(list))
	for _, s := range list {
		code, err := diag.ParseCode(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("[rules].%s: %w", key, err)
		}
		out = append(out, code)
	}
	return out, nil
}

// Match reports whether path (absolute or relative to Root) is analysed.
func (c *Config) Match(path string) bool {
	rel := path
	if filepath.IsAbs(path) && c.Root != "" {
		r, err := filepath.Rel(c.Root, path)
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)
	if !matchAny(c.Files.Include, rel) {
		return false
	}
	return !matchAny(c.Files.Exclude, rel)
}

// Excluded reports whether a directory can be skipped during discovery.
func (c *Config) Excluded(dir string) bool {
	rel := dir
	if filepath.IsAbs(dir) && c.Root != "" {
		r, err := filepath.Rel(c.Root, dir)
		if err != nil {
			return false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return false
	}
	// любой путь внутри каталога
	return matchAny(c.Files.Exclude, rel) || matchAny(c.Files.Exclude, rel+"/x")
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
