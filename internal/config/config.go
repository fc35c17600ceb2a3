// Package config loads protogen.toml, the generator configuration.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/canvasproto/internal/logging"
)

const DefaultPath = "protogen.toml"

type Config struct {
	// Schema is the .proto source both targets are generated from.
	Schema string
	// Stamp records the last generation per target for incremental runs.
	Stamp   string
	Native  NativeConfig
	Browser BrowserConfig
}

// NativeConfig controls the Go target.
type NativeConfig struct {
	Enabled  bool
	Output   string
	Package  string
	Protoc   string
	Includes []string
	// Descriptor, when set, receives a copy of the protoc descriptor set.
	Descriptor string
}

// BrowserConfig controls the JavaScript target.
type BrowserConfig struct {
	Enabled  bool
	Output   string
	Protoc   string
	Includes []string
	// Verify is an optional checker run over the rendered client, for
	// example ["node", "--check"].
	Verify []string
}

func DefaultConfig() Config {
	return Config{
		Schema: "proto/messages.proto",
		Stamp:  ".protogen-stamp.toml",
		Native: NativeConfig{
			Enabled: true,
			Output:  "internal/canvaspb/messages.gen.go",
			Package: "canvaspb",
			Protoc:  "protoc",
		},
		Browser: BrowserConfig{
			Enabled: true,
			Output:  "web/static/proto-client.js",
			Protoc:  "protoc",
		},
	}
}

type fileConfig struct {
	Schema string `toml:"schema"`
	Stamp  string `toml:"stamp"`
	Native struct {
		Enabled    bool     `toml:"enabled"`
		Output     string   `toml:"output"`
		Package    string   `toml:"package"`
		Protoc     string   `toml:"protoc"`
		Includes   []string `toml:"includes"`
		Descriptor string   `toml:"descriptor"`
	} `toml:"native"`
	Browser struct {
		Enabled  bool     `toml:"enabled"`
		Output   string   `toml:"output"`
		Protoc   string   `toml:"protoc"`
		Includes []string `toml:"includes"`
		Verify   []string `toml:"verify"`
	} `toml:"browser"`
}

// Load reads path over DefaultConfig, resolves relative paths against the
// file's directory and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		logging.Warnf("config: ignoring unknown key %s in %s", key, path)
	}

	if meta.IsDefined("schema") {
		cfg.Schema = strings.TrimSpace(raw.Schema)
	}
	if meta.IsDefined("stamp") {
		cfg.Stamp = strings.TrimSpace(raw.Stamp)
	}

	if meta.IsDefined("native", "enabled") {
		cfg.Native.Enabled = raw.Native.Enabled
	}
	if meta.IsDefined("native", "output") {
		cfg.Native.Output = strings.TrimSpace(raw.Native.Output)
	}
	if meta.IsDefined("native", "package") {
		cfg.Native.Package = strings.TrimSpace(raw.Native.Package)
	}
	if meta.IsDefined("native", "protoc") {
		cfg.Native.Protoc = strings.TrimSpace(raw.Native.Protoc)
	}
	if meta.IsDefined("native", "includes") {
		cfg.Native.Includes = normalizeList(raw.Native.Includes)
	}
	if meta.IsDefined("native", "descriptor") {
		cfg.Native.Descriptor = strings.TrimSpace(raw.Native.Descriptor)
	}

	if meta.IsDefined("browser", "enabled") {
		cfg.Browser.Enabled = raw.Browser.Enabled
	}
	if meta.IsDefined("browser", "output") {
		cfg.Browser.Output = strings.TrimSpace(raw.Browser.Output)
	}
	if meta.IsDefined("browser", "protoc") {
		cfg.Browser.Protoc = strings.TrimSpace(raw.Browser.Protoc)
	}
	if meta.IsDefined("browser", "includes") {
		cfg.Browser.Includes = normalizeList(raw.Browser.Includes)
	}
	if meta.IsDefined("browser", "verify") {
		cfg.Browser.Verify = normalizeList(raw.Browser.Verify)
	}

	cfg = cfg.Resolve(filepath.Dir(path))
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Resolve returns cfg with relative file paths joined onto dir.
func (cfg Config) Resolve(dir string) Config {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	joinAll := func(ps []string) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = join(p)
		}
		return out
	}
	cfg.Schema = join(cfg.Schema)
	cfg.Stamp = join(cfg.Stamp)
	cfg.Native.Output = join(cfg.Native.Output)
	cfg.Native.Descriptor = join(cfg.Native.Descriptor)
	cfg.Native.Includes = joinAll(cfg.Native.Includes)
	cfg.Browser.Output = join(cfg.Browser.Output)
	cfg.Browser.Includes = joinAll(cfg.Browser.Includes)
	return cfg
}

func Validate(cfg Config) error {
	if cfg.Schema == "" {
		return fmt.Errorf("schema path is required")
	}
	if cfg.Stamp == "" {
		return fmt.Errorf("stamp path is required")
	}
	if cfg.Native.Enabled {
		if err := validateNative(cfg.Native); err != nil {
			return fmt.Errorf("native: %w", err)
		}
	}
	if cfg.Browser.Enabled {
		if cfg.Browser.Output == "" {
			return fmt.Errorf("browser: output is required")
		}
		if cfg.Browser.Protoc == "" {
			return fmt.Errorf("browser: protoc is required")
		}
	}
	if !cfg.Native.Enabled && !cfg.Browser.Enabled {
		logging.Warnf("config: both targets disabled, nothing will be generated")
	}
	return nil
}

func validateNative(cfg NativeConfig) error {
	if cfg.Output == "" {
		return fmt.Errorf("output is required")
	}
	if filepath.Ext(cfg.Output) != ".go" {
		return fmt.Errorf("output must be a .go file: %s", cfg.Output)
	}
	if cfg.Protoc == "" {
		return fmt.Errorf("protoc is required")
	}
	if !isPackageName(cfg.Package) {
		return fmt.Errorf("invalid package name %q", cfg.Package)
	}
	return nil
}

func isPackageName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		if !(isLower || c == '_' || (isDigit && i > 0)) {
			return false
		}
	}
	return true
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
