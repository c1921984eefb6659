// Package config loads conversion profiles.
//
// A profile is YAML. Keys left out of a file keep their default value, so a
// profile only needs to name what it changes:
//
//	strict:
//	  currency: USD
//	  rounding: bank
//	dynamic:
//	  denylist: ["@_BEGIN", "@_SEGMENT", EDI_DC40]
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rezonia/idoc-edi/internal/decimal"
	"github.com/rezonia/idoc-edi/internal/format"
	"github.com/rezonia/idoc-edi/internal/mapper"
	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/segment"
	"github.com/rezonia/idoc-edi/internal/tree"
)

// maxDecimals bounds the fixed-point precision of rendered amounts
const maxDecimals = 6

// Profile holds every tunable of a conversion
type Profile struct {
	Parser  ParserConfig  `yaml:"parser"`
	Strict  StrictConfig  `yaml:"strict"`
	Dynamic DynamicConfig `yaml:"dynamic"`
}

// ParserConfig controls XML to tree conversion
type ParserConfig struct {
	ForceSequence   []string `yaml:"force_sequence"`
	AttributePrefix string   `yaml:"attribute_prefix"`
	TextKey         string   `yaml:"text_key"`
	TrimValues      bool     `yaml:"trim_values"`
	StripNamespaces bool     `yaml:"strip_namespaces"`
	KeepAttributes  bool     `yaml:"keep_attributes"`
}

// StrictConfig controls the INVOIC mapping
type StrictConfig struct {
	Anchor           string `yaml:"anchor"`
	ControlReference string `yaml:"control_reference"`
	Currency         string `yaml:"currency"`
	UnitOverride     string `yaml:"unit_override"`
	Rounding         string `yaml:"rounding"`
	Decimals         int32  `yaml:"decimals"`
	DueDateQualifier string `yaml:"due_date_qualifier"`
}

// DynamicConfig controls schema-agnostic mapping
type DynamicConfig struct {
	Anchor         string   `yaml:"anchor"`
	Denylist       []string `yaml:"denylist"`
	FieldSeparator string   `yaml:"field_separator"`
	Terminator     string   `yaml:"terminator"`
	InnerSeparator string   `yaml:"inner_separator"`
}

// Default returns the canonical INVOIC02 profile
func Default() *Profile {
	parser := tree.DefaultOptions()
	strict := mapper.DefaultStrictOptions()
	dynamic := mapper.DefaultDynamicOptions()

	return &Profile{
		Parser: ParserConfig{
			ForceSequence:   parser.ForceSequence,
			AttributePrefix: parser.AttributePrefix,
			TextKey:         parser.TextKey,
			TrimValues:      parser.TrimValues,
			StripNamespaces: parser.StripNamespaces,
			KeepAttributes:  parser.KeepAttributes,
		},
		Strict: StrictConfig{
			Anchor:           strict.Anchor,
			ControlReference: strict.ControlReference,
			Currency:         strict.Currency,
			Rounding:         string(strict.Number.Rounding),
			Decimals:         strict.Number.Decimals,
			DueDateQualifier: strict.DueDateQualifier,
		},
		Dynamic: DynamicConfig{
			Anchor:         dynamic.Anchor,
			Denylist:       dynamic.Denylist,
			FieldSeparator: dynamic.Grammar.FieldSeparator,
			Terminator:     dynamic.Grammar.Terminator,
			InnerSeparator: dynamic.InnerSeparator,
		},
	}
}

// Load reads a profile file over the defaults and validates the result
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Marshal serializes the profile to YAML
func (p *Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Validate checks the profile for settings no conversion can run with
func (p *Profile) Validate() error {
	if p.Parser.TextKey == "" {
		return model.NewValidationError("parser.text_key", nil, "required", "text key must not be empty")
	}

	if p.Strict.Anchor == "" {
		return model.NewValidationError("strict.anchor", nil, "required", "anchor path must not be empty")
	}
	if !decimal.RoundingMode(p.Strict.Rounding).Valid() {
		return model.NewValidationError("strict.rounding", p.Strict.Rounding, "enum",
			fmt.Sprintf("must be %q or %q", decimal.RoundHalfUp, decimal.RoundBank))
	}
	if p.Strict.Decimals < 0 || p.Strict.Decimals > maxDecimals {
		return model.NewValidationError("strict.decimals", p.Strict.Decimals, "range",
			fmt.Sprintf("must be between 0 and %d", maxDecimals))
	}
	if p.Strict.Currency == "" {
		return model.NewValidationError("strict.currency", nil, "required", "currency must not be empty")
	}

	if p.Dynamic.Anchor == "" {
		return model.NewValidationError("dynamic.anchor", nil, "required", "anchor path must not be empty")
	}
	if p.Dynamic.FieldSeparator == "" || p.Dynamic.Terminator == "" {
		return model.NewValidationError("dynamic", nil, "required", "field separator and terminator must not be empty")
	}
	if p.Dynamic.FieldSeparator == p.Dynamic.Terminator {
		return model.NewValidationError("dynamic.terminator", p.Dynamic.Terminator, "distinct", "terminator must differ from the field separator")
	}

	return nil
}

// TreeOptions returns the parser settings
func (p *Profile) TreeOptions() tree.Options {
	return tree.Options{
		ForceSequence:   append([]string(nil), p.Parser.ForceSequence...),
		AttributePrefix: p.Parser.AttributePrefix,
		TextKey:         p.Parser.TextKey,
		TrimValues:      p.Parser.TrimValues,
		StripNamespaces: p.Parser.StripNamespaces,
		KeepAttributes:  p.Parser.KeepAttributes,
	}
}

// StrictOptions returns the INVOIC mapping settings
func (p *Profile) StrictOptions() mapper.StrictOptions {
	return mapper.StrictOptions{
		Anchor:           p.Strict.Anchor,
		ControlReference: p.Strict.ControlReference,
		Currency:         p.Strict.Currency,
		UnitOverride:     p.Strict.UnitOverride,
		DueDateQualifier: p.Strict.DueDateQualifier,
		Number: format.NumberFormat{
			Decimals:  p.Strict.Decimals,
			Rounding:  decimal.RoundingMode(p.Strict.Rounding),
			Separator: format.DecimalComma,
		},
	}
}

// DynamicOptions returns the generic mapping settings
func (p *Profile) DynamicOptions() mapper.DynamicOptions {
	return mapper.DynamicOptions{
		Anchor:   p.Dynamic.Anchor,
		Denylist: append([]string(nil), p.Dynamic.Denylist...),
		Grammar: segment.Grammar{
			FieldSeparator: p.Dynamic.FieldSeparator,
			Terminator:     p.Dynamic.Terminator,
			LineBreak:      segment.Generic.LineBreak,
		},
		InnerSeparator: p.Dynamic.InnerSeparator,
	}
}
