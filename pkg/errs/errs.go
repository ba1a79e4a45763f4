package errs

import (
	"fmt"
	"strings"
)

// ErrMissingValue is returned if a value is not given
type ErrMissingValue struct {
	// What is missing
	Kind string

	// Additional info
	Info []string
}

// ErrMissing creates a "missing" error
func ErrMissing(kind string, info ...string) *ErrMissingValue {
	return &ErrMissingValue{
		Kind: kind,
		Info: info,
	}
}

func (e *ErrMissingValue) Error() string {
	if len(e.Info) == 0 {
		return fmt.Sprintf(`%v is missing`, e.Kind)
	}
	return fmt.Sprintf(`%v is missing (%v)`, e.Kind, strings.Join(e.Info, ", "))
}

// ValidationError is returned when the module set has problems
// that block generation.
type ValidationError struct {
	// Issues are the human readable problems.
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "validation failed: " + e.Issues[0]
	}
	return fmt.Sprintf("validation failed with %v issues:\n%v", len(e.Issues), strings.Join(e.Issues, "\n"))
}

// ConfigurationError is returned when the generator can't start,
// e.g. the output path is missing or not allowed.
type ConfigurationError struct {
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf(`invalid configuration for "%v": %v`, e.Path, e.Reason)
}

// GenerationError is returned when a single variant fails to generate.
type GenerationError struct {
	Variant string
	Err     error
}

func (e *GenerationError) Error() string {
	variant := e.Variant
	if variant == "" {
		variant = "base"
	}
	return fmt.Sprintf("variant %v failed: %v", variant, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// FilesystemError is returned when an artifact can't be written.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf(`failed to write "%v": %v`, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}
