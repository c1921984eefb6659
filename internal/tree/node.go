// Package tree holds the read-only document tree the mappers walk.
//
// A node is one of three kinds: a text leaf, a mapping from element or
// attribute name to child node, or an ordered sequence of sibling nodes that
// share one tag name. Nodes are built once by Parse (or the constructors in
// this file) and never mutated afterwards, so a tree can be shared freely
// between goroutines.
package tree

import (
	"bytes"
	"encoding/json"
)

// Kind identifies the shape of a node
type Kind int

const (
	KindText Kind = iota
	KindMap
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMap:
		return "map"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Node is a single element of the document tree
type Node struct {
	kind     Kind
	text     string
	hasText  bool
	keys     []string
	children map[string]*Node
	items    []*Node
}

// Entry is a named child used to build a map node
type Entry struct {
	Key  string
	Node *Node
}

// Text creates a text leaf
func Text(s string) *Node {
	return &Node{kind: KindText, text: s, hasText: true}
}

// NewMap creates a map node with children in the given order.
// A repeated key keeps its first position and its last value.
func NewMap(entries ...Entry) *Node {
	n := &Node{kind: KindMap, children: make(map[string]*Node, len(entries))}
	for _, e := range entries {
		if _, exists := n.children[e.Key]; !exists {
			n.keys = append(n.keys, e.Key)
		}
		n.children[e.Key] = e.Node
	}
	return n
}

// NewSequence creates a sequence node
func NewSequence(items ...*Node) *Node {
	cp := make([]*Node, len(items))
	copy(cp, items)
	return &Node{kind: KindSequence, items: cp}
}

// withText attaches element text to a map node under textKey
func (n *Node) withText(textKey, s string) *Node {
	n.text = s
	n.hasText = true
	if _, exists := n.children[textKey]; !exists {
		n.keys = append(n.keys, textKey)
	}
	n.children[textKey] = Text(s)
	return n
}

// Kind returns the node kind. A nil node reports KindText.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindText
	}
	return n.kind
}

// IsLeaf reports whether the node is a text leaf
func (n *Node) IsLeaf() bool {
	return n != nil && n.kind == KindText
}

// Keys returns the child names of a map node in document order
func (n *Node) Keys() []string {
	if n == nil || n.kind != KindMap {
		return nil
	}
	keys := make([]string, len(n.keys))
	copy(keys, n.keys)
	return keys
}

// Child returns the named child of a map node
func (n *Node) Child(key string) (*Node, bool) {
	if n == nil || n.kind != KindMap {
		return nil, false
	}
	c, ok := n.children[key]
	return c, ok
}

// Items returns the elements of a sequence node
func (n *Node) Items() []*Node {
	if n == nil || n.kind != KindSequence {
		return nil
	}
	items := make([]*Node, len(n.items))
	copy(items, n.items)
	return items
}

// Len returns the number of children (map) or elements (sequence)
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case KindMap:
		return len(n.keys)
	case KindSequence:
		return len(n.items)
	default:
		return 0
	}
}

// Value returns the text carried by the node.
// Map nodes carry the text of their element, sequences that of their first element.
func (n *Node) Value() (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.kind {
	case KindText:
		return n.text, true
	case KindMap:
		return n.text, n.hasText
	case KindSequence:
		if len(n.items) == 0 {
			return "", false
		}
		return n.items[0].Value()
	default:
		return "", false
	}
}

// ToSequence coerces a node that may be singular or repeated into a slice.
// A nil node yields an empty slice.
func ToSequence(n *Node) []*Node {
	if n == nil {
		return nil
	}
	if n.kind == KindSequence {
		return n.Items()
	}
	return []*Node{n}
}

// MarshalJSON renders the node structurally, keeping map key order
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	switch n.kind {
	case KindMap:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := n.children[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		s, err := json.Marshal(n.text)
		if err != nil {
			return err
		}
		buf.Write(s)
	}
	return nil
}
