// Package config provides configuration parsing for pagesketch.
// This file implements environment variable expansion support for configuration values.
package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// Unknown or unset variables without defaults are replaced with empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			inner := match[2 : len(match)-1]

			// VAR:-default
			if idx := strings.Index(inner, ":-"); idx >= 0 {
				if val := os.Getenv(inner[:idx]); val != "" {
					return val
				}
				return inner[idx+2:]
			}
			return os.Getenv(inner)
		}

		if strings.HasPrefix(match, "$") {
			return os.Getenv(match[1:])
		}

		return match
	})
}

// ExpandEnvConfig expands environment variables in the path settings:
// the script, the assets directory and the output file.
func ExpandEnvConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Sketch.Script = ExpandEnv(cfg.Sketch.Script)
	cfg.Sketch.Assets = ExpandEnv(cfg.Sketch.Assets)
	cfg.Output.Path = ExpandEnv(cfg.Output.Path)
}
