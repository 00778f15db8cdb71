package config

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// TOMLConfigParser parses pagesketch.toml files:
//
//	[document]
//	width = 420.0
//	height = 595.0
//	units = "pt"
//	margins = { top = 36.0, left = 48.0, bottom = 36.0, right = 36.0 }
//	bleed = 9.0
//	facing = true
//	pages = 4
//
//	[sketch]
//	script = "poster.lua"
//	canvas_mode = "margin"
//
//	[output]
//	path = "poster.pdf"
//
// Unknown keys are rejected so typos do not silently fall back to
// defaults.
type TOMLConfigParser struct{}

// NewTOMLConfigParser creates a TOMLConfigParser.
func NewTOMLConfigParser() *TOMLConfigParser {
	return &TOMLConfigParser{}
}

// Parse parses TOML content over the default configuration.
func (p *TOMLConfigParser) Parse(content []byte) (*Config, error) {
	var fc fileConfig
	md, err := toml.NewDecoder(bytes.NewReader(content)).Decode(&fc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML configuration: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
	}

	cfg := DefaultConfig()
	if err := fc.apply(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
