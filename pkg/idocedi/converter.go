package idocedi

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/processor"
)

// ConversionResult represents a converted document
type ConversionResult struct {
	Mode     Mode
	Content  string
	Lines    []string
	Segments []Segment
	Items    int
	Warnings []string
}

// Options configures a Converter
type Options struct {
	Profile *Profile
	Logger  *zap.Logger
	// Workers bounds ConvertBatch concurrency (default: 4)
	Workers int
}

// Converter converts IDOC documents. It is safe for concurrent use.
type Converter struct {
	pipeline *processor.Pipeline
}

// NewConverter creates a converter with the given options
func NewConverter(opts Options) *Converter {
	return &Converter{
		pipeline: processor.NewPipeline(
			processor.WithProfile(opts.Profile),
			processor.WithLogger(opts.Logger),
			processor.WithWorkers(opts.Workers),
		),
	}
}

// NewDefaultConverter creates a converter with the default profile
func NewDefaultConverter() *Converter {
	return NewConverter(Options{})
}

// Convert reads r and converts it with the given mode
func (c *Converter) Convert(ctx context.Context, mode Mode, r io.Reader) (*ConversionResult, error) {
	return toConversion(c.pipeline.ConvertReader(ctx, mode, r))
}

// ConvertStrict converts r into an EDIFACT INVOIC interchange
func (c *Converter) ConvertStrict(ctx context.Context, r io.Reader) (*ConversionResult, error) {
	return c.Convert(ctx, ModeStrict, r)
}

// ConvertDynamic converts r into generic segments
func (c *Converter) ConvertDynamic(ctx context.Context, r io.Reader) (*ConversionResult, error) {
	return c.Convert(ctx, ModeDynamic, r)
}

// ConvertBatch converts multiple inputs concurrently. Results keep input
// order; a failed input leaves a nil result and the first failure is
// returned.
func (c *Converter) ConvertBatch(ctx context.Context, mode Mode, inputs []io.Reader) ([]*ConversionResult, error) {
	data := make([][]byte, len(inputs))
	for i, r := range inputs {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, model.NewDocumentError("read", "failed to read input", err)
		}
		data[i] = b
	}

	results, err := c.pipeline.ConvertBatch(ctx, mode, data)
	if err != nil {
		return nil, err
	}

	out := make([]*ConversionResult, len(results))
	var firstErr error
	for i, r := range results {
		conv, err := toConversion(r)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out[i] = conv
	}
	return out, firstErr
}

// Inspect summarizes an IDOC without converting it
func (c *Converter) Inspect(ctx context.Context, r io.Reader) (*Summary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewDocumentError("read", "failed to read input", err)
	}
	return c.pipeline.Inspect(ctx, data)
}

func toConversion(r *processor.Result) (*ConversionResult, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	return &ConversionResult{
		Mode:     r.Mode,
		Content:  r.Content,
		Lines:    r.Lines,
		Segments: r.Segments,
		Items:    r.Items,
		Warnings: r.Warnings,
	}, nil
}
