// Package config provides configuration parsing for pagesketch.
// This file implements the unified parser that auto-detects the configuration format.

package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Parser provides a unified interface for parsing configuration files.
// It detects whether a file is Lua (sketch.config = {...}) or TOML.
type Parser struct {
	tomlParser *TOMLConfigParser
	luaParser  *LuaConfigParser
}

// NewParser creates a new Parser that can handle both Lua and TOML configurations.
func NewParser() (*Parser, error) {
	luaParser, err := NewLuaConfigParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create Lua parser: %w", err)
	}

	return &Parser{
		tomlParser: NewTOMLConfigParser(),
		luaParser:  luaParser,
	}, nil
}

// ParseFile reads and parses a configuration file. The extension decides
// the format when it is .lua or .toml; otherwise the content does.
// Environment references in paths are expanded and relative paths are
// resolved against the file's directory.
func (p *Parser) ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := p.parseNamed(path, content)
	if err != nil {
		return nil, err
	}
	ExpandEnvConfig(cfg)
	ResolvePaths(cfg, filepath.Dir(path))
	return cfg, nil
}

// Parse parses configuration content, auto-detecting the format.
func (p *Parser) Parse(content []byte) (*Config, error) {
	if isLuaConfig(content) {
		return p.luaParser.Parse(content)
	}
	return p.tomlParser.Parse(content)
}

func (p *Parser) parseNamed(name string, content []byte) (*Config, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lua":
		return p.luaParser.Parse(content)
	case ".toml":
		return p.tomlParser.Parse(content)
	default:
		return p.Parse(content)
	}
}

// luaConfigPattern matches "sketch.config" followed by optional whitespace
// and "=" at the start of a line.
var luaConfigPattern = regexp.MustCompile(`(?m)^\s*sketch\.config\s*=`)

// isLuaConfig determines if the content is a Lua configuration.
func isLuaConfig(content []byte) bool {
	return luaConfigPattern.Match(content)
}

// ParseFromFS reads and parses a configuration file from a filesystem.
func (p *Parser) ParseFromFS(fsys fs.FS, path string) (*Config, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS %s: %w", path, err)
	}

	cfg, err := p.parseNamed(path, content)
	if err != nil {
		return nil, err
	}
	ExpandEnvConfig(cfg)
	return cfg, nil
}

// ParseReader parses configuration from an io.Reader.
// The format parameter must be "lua" or "toml".
func (p *Parser) ParseReader(r io.Reader, format string) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch format {
	case "lua":
		return p.luaParser.Parse(content)
	case "toml":
		return p.tomlParser.Parse(content)
	default:
		return nil, fmt.Errorf("unknown format: %s (expected 'lua' or 'toml')", format)
	}
}

// Close releases resources associated with the parser.
func (p *Parser) Close() error {
	if p.luaParser != nil {
		return p.luaParser.Close()
	}
	return nil
}

// ResolvePaths makes the script, assets and output paths absolute
// relative to dir. Empty and absolute paths are left alone.
func ResolvePaths(cfg *Config, dir string) {
	if cfg == nil {
		return
	}
	for _, p := range []*string{&cfg.Sketch.Script, &cfg.Sketch.Assets, &cfg.Output.Path} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
