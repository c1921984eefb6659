// Package idocedi provides a public API for converting SAP IDOC XML exports
// into EDIFACT INVOIC messages and generic delimited segments.
//
// Example usage:
//
//	conv := idocedi.NewDefaultConverter()
//	result, err := conv.ConvertStrict(ctx, reader)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Content)
package idocedi

import (
	"github.com/rezonia/idoc-edi/internal/config"
	"github.com/rezonia/idoc-edi/internal/mapper"
	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/segment"
)

// Re-export core types for public API
type (
	Mode    = model.Mode
	Profile = config.Profile
	Summary = mapper.Summary
	Segment = segment.Segment
)

// Re-export modes
const (
	ModeStrict  = model.ModeStrict
	ModeDynamic = model.ModeDynamic
)

// Re-export error types
type (
	DocumentError   = model.DocumentError
	RootError       = model.RootError
	MappingError    = model.MappingError
	ValidationError = model.ValidationError
)

// ErrUnrecognizedRoot is matched by errors for documents without the anchor
var ErrUnrecognizedRoot = model.ErrUnrecognizedRoot

// ParseMode converts "strict" or "dynamic" into a Mode; empty means strict
func ParseMode(s string) (Mode, error) {
	return model.ParseMode(s)
}

// DefaultProfile returns the canonical INVOIC02 conversion profile
func DefaultProfile() *Profile {
	return config.Default()
}

// LoadProfile reads a YAML profile over the defaults
func LoadProfile(path string) (*Profile, error) {
	return config.Load(path)
}

// VerifyTrailers checks the CNT, UNT and UNZ counts of a rendered EDIFACT
// interchange
func VerifyTrailers(text string) error {
	return mapper.NewReconciler().Verify(segment.EDIFACT.Split(text))
}
