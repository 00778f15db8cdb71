// Package config provides configuration parsing and validation for pagesketch.
// This file implements validation for configuration values.
package config

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-pagesketch/internal/layout"
)

// maxPageSize is the largest page edge most PDF readers accept, in points.
const maxPageSize = 14400

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Merge combines another ValidationResult into this one.
func (vr *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	vr.Errors = append(vr.Errors, other.Errors...)
	vr.Warnings = append(vr.Warnings, other.Warnings...)
}

// Validator checks a Config for values the sketch cannot run with.
type Validator struct {
	// strictMode turns warnings into errors.
	strictMode bool
}

// NewValidator creates a new Validator with default settings.
func NewValidator() *Validator {
	return &Validator{}
}

// WithStrictMode enables strict validation where warnings are errors.
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.strictMode = strict
	return v
}

// Validate performs comprehensive validation of a Config.
func (v *Validator) Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	v.validateDocument(&cfg.Document, result)
	v.validateSketch(&cfg.Sketch, result)
	v.validateOutput(&cfg.Output, &cfg.Document, result)
	v.validatePreview(&cfg.Preview, result)

	if v.strictMode {
		result.Errors = append(result.Errors, result.Warnings...)
		result.Warnings = nil
	}
	return result
}

func (v *Validator) validateDocument(dc *DocumentConfig, result *ValidationResult) {
	if dc.Width <= 0 {
		result.AddError("document.width", fmt.Sprintf("must be positive, got %g", dc.Width))
	}
	if dc.Height <= 0 {
		result.AddError("document.height", fmt.Sprintf("must be positive, got %g", dc.Height))
	}
	if dc.Pages < 1 {
		result.AddError("document.pages", fmt.Sprintf("must be at least 1, got %d", dc.Pages))
	}

	v.validateInsets("document.margins", dc.Margins, result)
	v.validateInsets("document.bleed", dc.Bleed, result)

	if dc.Width > 0 && dc.Margins.Left+dc.Margins.Right >= dc.Width {
		result.AddError("document.margins", "left and right margins leave no live area")
	}
	if dc.Height > 0 && dc.Margins.Top+dc.Margins.Bottom >= dc.Height {
		result.AddError("document.margins", "top and bottom margins leave no live area")
	}

	k := dc.Units.PointsPer()
	if dc.Width*k > maxPageSize || dc.Height*k > maxPageSize {
		result.AddWarning("document", fmt.Sprintf("page is larger than %d pt and may not open in PDF readers", maxPageSize))
	}
}

func (v *Validator) validateInsets(field string, in layout.Insets, result *ValidationResult) {
	for _, edge := range []struct {
		name  string
		value float64
	}{
		{"top", in.Top}, {"left", in.Left}, {"bottom", in.Bottom}, {"right", in.Right},
	} {
		if edge.value < 0 {
			result.AddError(field+"."+edge.name, fmt.Sprintf("must be non-negative, got %g", edge.value))
		}
	}
}

func (v *Validator) validateSketch(sc *SketchConfig, result *ValidationResult) {
	for _, m := range []struct {
		field string
		kind  layout.ShapeKind
		mode  layout.ShapeMode
	}{
		{"sketch.rect_mode", layout.KindRect, sc.RectMode},
		{"sketch.ellipse_mode", layout.KindEllipse, sc.EllipseMode},
		{"sketch.image_mode", layout.KindImage, sc.ImageMode},
	} {
		if err := m.kind.CheckMode(m.mode); err != nil {
			result.AddError(m.field, err.Error())
		}
	}

	if sc.FrameRate <= 0 {
		result.AddError("sketch.frame_rate", fmt.Sprintf("must be positive, got %g", sc.FrameRate))
	} else if sc.FrameRate > 120 {
		result.AddWarning("sketch.frame_rate", fmt.Sprintf("unusually high value %g", sc.FrameRate))
	}

	if sc.CPULimit == 0 {
		result.AddWarning("sketch.cpu_limit", "no CPU limit; a runaway script will hang the sketch")
	}
	if sc.MemoryLimit == 0 {
		result.AddWarning("sketch.memory_limit", "no memory limit")
	}
}

func (v *Validator) validateOutput(oc *OutputConfig, dc *DocumentConfig, result *ValidationResult) {
	if oc.Path != "" {
		if _, err := oc.ResolvedFormat(); err != nil {
			result.AddError("output.path", err.Error())
		} else if implied, ok := FormatForPath(oc.Path); ok && oc.Format != FormatAuto && implied != oc.Format {
			result.AddWarning("output.format", fmt.Sprintf("%s output written to a .%s file", oc.Format, implied))
		}
	}
	if oc.Spreads && !dc.Facing {
		result.AddWarning("output.spreads", "spreads have no effect without facing pages")
	}
}

func (v *Validator) validatePreview(pc *PreviewConfig, result *ValidationResult) {
	if pc.Scale <= 0 {
		result.AddError("preview.scale", fmt.Sprintf("must be positive, got %g", pc.Scale))
	} else if pc.Scale > 8 {
		result.AddWarning("preview.scale", fmt.Sprintf("unusually large value %g", pc.Scale))
	}
	if pc.AlwaysOnTop && !pc.Enabled {
		result.AddWarning("preview.always_on_top", "preview is disabled")
	}
}

// ValidateConfig is a convenience function to validate a Config with default settings.
// Returns nil if the config is valid, or an error describing validation failures.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	validator := NewValidator()
	result := validator.Validate(cfg)
	return result.Error()
}

// ValidateConfigStrict validates a Config with strict mode enabled.
// Warnings are treated as errors.
func ValidateConfigStrict(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	validator := NewValidator().WithStrictMode(true)
	result := validator.Validate(cfg)
	return result.Error()
}
