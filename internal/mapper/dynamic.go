package mapper

import (
	"encoding/json"
	"strings"

	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/segment"
	"github.com/rezonia/idoc-edi/internal/tree"
)

// DynamicOptions configures schema-agnostic mapping
type DynamicOptions struct {
	Anchor string
	// Denylist names structural keys that never become segments or fields
	Denylist       []string
	Grammar        segment.Grammar
	InnerSeparator string
}

// DefaultDynamicOptions returns the generic '*'/'~' settings
func DefaultDynamicOptions() DynamicOptions {
	return DynamicOptions{
		Anchor:         "IDOC",
		Denylist:       []string{"@_BEGIN", "@_SEGMENT"},
		Grammar:        segment.Generic,
		InnerSeparator: ",",
	}
}

// Dynamic emits one generic segment per occurrence of every child of the
// anchor node, named after the child and listing its own children's values
// in source order.
type Dynamic struct {
	opts DynamicOptions
	deny map[string]struct{}
}

// NewDynamic creates a dynamic mapper
func NewDynamic(opts DynamicOptions) *Dynamic {
	deny := make(map[string]struct{}, len(opts.Denylist))
	for _, k := range opts.Denylist {
		deny[k] = struct{}{}
	}
	return &Dynamic{opts: opts, deny: deny}
}

// Options returns the mapper settings
func (m *Dynamic) Options() DynamicOptions {
	return m.opts
}

// Map converts doc into generic segments
func (m *Dynamic) Map(doc *tree.Node) ([]segment.Segment, error) {
	anchor, ok := FindAnchor(doc, m.opts.Anchor)
	if !ok {
		return nil, model.NewRootError(model.ModeDynamic, m.opts.Anchor)
	}

	// A repeated anchor maps its first occurrence
	if anchor.Kind() == tree.KindSequence {
		items := anchor.Items()
		if len(items) == 0 {
			return nil, nil
		}
		anchor = items[0]
	}

	var segs []segment.Segment
	for _, key := range m.keys(anchor) {
		child, _ := anchor.Child(key)
		for _, occ := range tree.ToSequence(child) {
			segs = append(segs, segment.New(key, m.fields(occ)...))
		}
	}
	return segs, nil
}

// Lines maps doc and assembles each segment with the configured grammar
func (m *Dynamic) Lines(doc *tree.Node) ([]string, error) {
	segs, err := m.Map(doc)
	if err != nil {
		return nil, err
	}
	return m.opts.Grammar.Lines(segs), nil
}

func (m *Dynamic) keys(n *tree.Node) []string {
	var keys []string
	for _, k := range n.Keys() {
		if _, denied := m.deny[k]; !denied {
			keys = append(keys, k)
		}
	}
	return keys
}

func (m *Dynamic) fields(n *tree.Node) []string {
	if n.Kind() != tree.KindMap {
		return []string{m.stringify(n)}
	}

	keys := m.keys(n)
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		child, _ := n.Child(k)
		fields = append(fields, m.stringify(child))
	}
	return fields
}

// stringify flattens sequences with the inner separator and renders nested
// maps structurally
func (m *Dynamic) stringify(n *tree.Node) string {
	switch n.Kind() {
	case tree.KindSequence:
		items := n.Items()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = m.stringify(item)
		}
		return strings.Join(parts, m.opts.InnerSeparator)
	case tree.KindMap:
		data, err := json.Marshal(n)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		s, _ := n.Value()
		return s
	}
}
