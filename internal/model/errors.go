package model

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedRoot reports that the expected anchor node is absent
var ErrUnrecognizedRoot = errors.New("unrecognized document root")

// Mode names the mapping strategy a conversion used
type Mode string

const (
	ModeStrict  Mode = "strict"
	ModeDynamic Mode = "dynamic"
)

// ParseMode converts a user supplied name into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict, ModeDynamic:
		return Mode(s), nil
	case "":
		return ModeStrict, nil
	default:
		return "", NewValidationError("mode", s, "enum", "must be strict or dynamic")
	}
}

// DocumentError reports a source document that cannot be read as a tree
type DocumentError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *DocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(stage, message string, cause error) *DocumentError {
	return &DocumentError{
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// RootError reports a missing anchor node. It matches ErrUnrecognizedRoot.
type RootError struct {
	Mode   Mode
	Anchor string
}

func (e *RootError) Error() string {
	return fmt.Sprintf("[%s] %s: anchor %q not found", e.Mode, ErrUnrecognizedRoot, e.Anchor)
}

func (e *RootError) Is(target error) bool {
	return target == ErrUnrecognizedRoot
}

// NewRootError creates a new root error
func NewRootError(mode Mode, anchor string) *RootError {
	return &RootError{Mode: mode, Anchor: anchor}
}

// ValidationError represents invalid configuration or request input
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// MappingError wraps a failed conversion with the mode that ran
type MappingError struct {
	Mode    Mode
	Message string
	Cause   error
}

func (e *MappingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("mapping failed [%s]: %s (%v)", e.Mode, e.Message, e.Cause)
	}
	return fmt.Sprintf("mapping failed [%s]: %s", e.Mode, e.Message)
}

func (e *MappingError) Unwrap() error {
	return e.Cause
}

// NewMappingError creates a new mapping error
func NewMappingError(mode Mode, message string, cause error) *MappingError {
	return &MappingError{
		Mode:    mode,
		Message: message,
		Cause:   cause,
	}
}
