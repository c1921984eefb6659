package tree

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Default naming used for attributes and element text
const (
	DefaultAttributePrefix = "@_"
	DefaultTextKey         = "#text"
)

// Options controls how XML is turned into a tree
type Options struct {
	// ForceSequence lists element names that always become sequences,
	// even when the document holds a single occurrence.
	ForceSequence []string

	AttributePrefix string
	TextKey         string
	TrimValues      bool
	StripNamespaces bool
	KeepAttributes  bool
}

// DefaultOptions returns the options used for SAP INVOIC IDOC exports
func DefaultOptions() Options {
	return Options{
		ForceSequence:   []string{"E1EDKA1", "E1EDP01"},
		AttributePrefix: DefaultAttributePrefix,
		TextKey:         DefaultTextKey,
		TrimValues:      true,
		StripNamespaces: true,
		KeepAttributes:  true,
	}
}

type builder struct {
	opts   Options
	forced map[string]struct{}
}

// Parse reads an XML document into a tree.
// The returned node is a map holding the document root element under its name.
func Parse(data []byte, opts Options) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty XML document")
	}

	if opts.TextKey == "" {
		opts.TextKey = DefaultTextKey
	}

	b := &builder{opts: opts, forced: make(map[string]struct{}, len(opts.ForceSequence))}
	for _, name := range opts.ForceSequence {
		b.forced[name] = struct{}{}
	}

	return NewMap(Entry{Key: b.elementName(root), Node: b.element(root)}), nil
}

func (b *builder) elementName(el *etree.Element) string {
	if b.opts.StripNamespaces || el.Space == "" {
		return el.Tag
	}
	return el.Space + ":" + el.Tag
}

func (b *builder) attributeName(attr etree.Attr) (string, bool) {
	if b.opts.StripNamespaces {
		if attr.Space == "xmlns" || (attr.Space == "" && attr.Key == "xmlns") {
			return "", false
		}
		return b.opts.AttributePrefix + attr.Key, true
	}
	if attr.Space != "" {
		return b.opts.AttributePrefix + attr.Space + ":" + attr.Key, true
	}
	return b.opts.AttributePrefix + attr.Key, true
}

func (b *builder) text(el *etree.Element) string {
	var sb strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	if b.opts.TrimValues {
		return strings.TrimSpace(sb.String())
	}
	return sb.String()
}

func (b *builder) element(el *etree.Element) *Node {
	var entries []Entry

	if b.opts.KeepAttributes {
		for _, attr := range el.Attr {
			name, ok := b.attributeName(attr)
			if !ok {
				continue
			}
			value := attr.Value
			if b.opts.TrimValues {
				value = strings.TrimSpace(value)
			}
			entries = append(entries, Entry{Key: name, Node: Text(value)})
		}
	}

	// Group children by name, keeping first-occurrence order
	var order []string
	groups := make(map[string][]*Node)
	for _, child := range el.ChildElements() {
		name := b.elementName(child)
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], b.element(child))
	}

	for _, name := range order {
		nodes := groups[name]
		_, forced := b.forced[name]
		if forced || len(nodes) > 1 {
			entries = append(entries, Entry{Key: name, Node: NewSequence(nodes...)})
			continue
		}
		entries = append(entries, Entry{Key: name, Node: nodes[0]})
	}

	text := b.text(el)
	if len(entries) == 0 {
		return Text(text)
	}

	n := NewMap(entries...)
	if text != "" {
		n.withText(b.opts.TextKey, text)
	}
	return n
}
