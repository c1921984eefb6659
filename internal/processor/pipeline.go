// Package processor runs IDOC conversions end to end: XML bytes are read
// into a document tree, mapped in strict or dynamic mode and rendered.
package processor

import (
	"bytes"
	"context"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/idoc-edi/internal/config"
	"github.com/rezonia/idoc-edi/internal/mapper"
	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/segment"
	"github.com/rezonia/idoc-edi/internal/tree"
)

// Format represents an input document format
type Format string

const (
	FormatXML     Format = "xml"
	FormatUnknown Format = "unknown"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat detects the document format from content
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}
	return FormatUnknown
}

// Result contains a conversion result
type Result struct {
	Mode     model.Mode
	Content  string
	Lines    []string
	Segments []segment.Segment
	Items    int
	Warnings []string
	Duration time.Duration
	Error    error
}

// Pipeline orchestrates IDOC conversion.
// A pipeline holds no per-document state and is safe for concurrent use.
type Pipeline struct {
	logger    *zap.Logger
	profile   *config.Profile
	treeOpts  tree.Options
	strict    *mapper.Strict
	dynamic   *mapper.Dynamic
	reconcile mapper.Reconciler
	workers   int
}

// PipelineOption configures the pipeline
type PipelineOption func(*Pipeline)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProfile sets the conversion profile
func WithProfile(profile *config.Profile) PipelineOption {
	return func(p *Pipeline) {
		if profile != nil {
			p.profile = profile
		}
	}
}

// WithWorkers bounds the number of documents ConvertBatch converts at once
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPipeline creates a new conversion pipeline
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		logger:  zap.NewNop(),
		profile: config.Default(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.treeOpts = p.profile.TreeOptions()
	p.strict = mapper.NewStrict(p.profile.StrictOptions())
	p.dynamic = mapper.NewDynamic(p.profile.DynamicOptions())
	p.reconcile = mapper.NewReconciler()
	return p
}

// Profile returns the conversion profile in use
func (p *Pipeline) Profile() *config.Profile {
	return p.profile
}

// Convert converts data with the given mode
func (p *Pipeline) Convert(ctx context.Context, mode model.Mode, data []byte) *Result {
	switch mode {
	case model.ModeStrict:
		return p.ConvertStrict(ctx, data)
	case model.ModeDynamic:
		return p.ConvertDynamic(ctx, data)
	default:
		return &Result{Mode: mode, Error: model.NewValidationError("mode", string(mode), "enum", "must be strict or dynamic")}
	}
}

// ConvertReader reads all of r and converts it with the given mode
func (p *Pipeline) ConvertReader(ctx context.Context, mode model.Mode, r io.Reader) *Result {
	data, err := io.ReadAll(r)
	if err != nil {
		return &Result{Mode: mode, Error: model.NewDocumentError("read", "failed to read input", err)}
	}
	return p.Convert(ctx, mode, data)
}

// ConvertStrict maps an INVOIC02 IDOC onto an EDIFACT INVOIC message
func (p *Pipeline) ConvertStrict(ctx context.Context, data []byte) *Result {
	start := time.Now()
	result := &Result{Mode: model.ModeStrict}

	doc, err := p.parse(ctx, data)
	if err != nil {
		return p.fail(result, err)
	}

	ic, err := p.strict.Map(doc)
	if err != nil {
		return p.fail(result, err)
	}

	content := ic.Render()
	if err := p.reconcile.Verify(p.reconcile.Grammar.Split(content)); err != nil {
		return p.fail(result, model.NewMappingError(model.ModeStrict, "trailer check failed", err))
	}

	result.Content = content
	result.Lines = ic.Lines()
	result.Segments = ic.Segments()
	result.Items = ic.Items
	result.Warnings = ic.Warnings
	result.Duration = time.Since(start)

	for _, w := range ic.Warnings {
		p.logger.Warn("partner skipped", zap.String("detail", w))
	}
	p.logger.Debug("converted document",
		zap.String("mode", string(result.Mode)),
		zap.Int("segments", len(result.Segments)),
		zap.Int("items", result.Items),
		zap.Duration("duration", result.Duration),
	)
	return result
}

// ConvertDynamic maps any document onto generic segments
func (p *Pipeline) ConvertDynamic(ctx context.Context, data []byte) *Result {
	start := time.Now()
	result := &Result{Mode: model.ModeDynamic}

	doc, err := p.parse(ctx, data)
	if err != nil {
		return p.fail(result, err)
	}

	segs, err := p.dynamic.Map(doc)
	if err != nil {
		return p.fail(result, err)
	}

	g := p.dynamic.Options().Grammar
	result.Segments = segs
	result.Lines = g.Lines(segs)
	result.Content = g.Render(segs)
	result.Duration = time.Since(start)

	p.logger.Debug("converted document",
		zap.String("mode", string(result.Mode)),
		zap.Int("segments", len(segs)),
		zap.Duration("duration", result.Duration),
	)
	return result
}

// ConvertBatch converts every input with the given mode, at most the
// configured number of workers at a time. Results keep input order. Per
// document failures are reported in each Result; the returned error is
// only set when ctx ends before the batch completes.
func (p *Pipeline) ConvertBatch(ctx context.Context, mode model.Mode, inputs [][]byte) ([]*Result, error) {
	results := make([]*Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, data := range inputs {
		i, data := i, data // per-iteration copies (go < 1.22 loop semantics)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.Convert(gctx, mode, data)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Inspect summarizes an IDOC without converting it
func (p *Pipeline) Inspect(ctx context.Context, data []byte) (*mapper.Summary, error) {
	doc, err := p.parse(ctx, data)
	if err != nil {
		return nil, err
	}
	return mapper.Summarize(doc, p.strict.Options().Anchor)
}

func (p *Pipeline) parse(ctx context.Context, data []byte) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if DetectFormat(data) != FormatXML {
		return nil, model.NewDocumentError("detect", "unsupported input format, expected XML", nil)
	}

	doc, err := tree.Parse(data, p.treeOpts)
	if err != nil {
		return nil, model.NewDocumentError("parse", "XML parsing failed", err)
	}
	return doc, nil
}

func (p *Pipeline) fail(result *Result, err error) *Result {
	p.logger.Debug("conversion failed", zap.String("mode", string(result.Mode)), zap.Error(err))
	result.Error = err
	return result
}
