package layout

import "fmt"

// ConfigError reports an unknown or unsupported mode value. It is fatal to
// the script run that triggered it.
type ConfigError struct {
	Setting string
	Value   string
	Hint    string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("unsupported %s %q", e.Setting, e.Value)
	if e.Hint != "" {
		msg += ", " + e.Hint
	}
	return msg
}
