package tree

import (
	"strconv"
	"strings"
)

// PathSeparator separates the steps of a field path
const PathSeparator = "."

// Lookup resolves a dotted path relative to n.
//
// A named step applied to a sequence descends into its first element, so
// callers need not know whether a tag is repeated. A numeric step selects a
// sequence element by zero-based index. An empty path resolves to n itself.
func Lookup(n *Node, path string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	if path == "" {
		return n, true
	}

	cur := n
	for _, step := range strings.Split(path, PathSeparator) {
		cur = cur.step(step)
		if cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func (n *Node) step(key string) *Node {
	if n == nil || key == "" {
		return nil
	}

	switch n.kind {
	case KindMap:
		return n.children[key]
	case KindSequence:
		if i, err := strconv.Atoi(key); err == nil {
			if i < 0 || i >= len(n.items) {
				return nil
			}
			return n.items[i]
		}
		if len(n.items) == 0 {
			return nil
		}
		return n.items[0].step(key)
	default:
		return nil
	}
}

// Extract returns the text found at path, or def when the path does not
// resolve, resolves to an empty value, or ends on a node without text.
// It never fails: absent fields are routine in partially populated documents.
func Extract(n *Node, path, def string) string {
	v, ok := Lookup(n, path)
	if !ok {
		return def
	}
	s, ok := v.Value()
	if !ok || s == "" {
		return def
	}
	return s
}

// Find returns the first element of the sequence at path whose field
// equals value. Both a singular and a repeated node at path are searched.
func Find(n *Node, path, field, value string) (*Node, bool) {
	v, ok := Lookup(n, path)
	if !ok {
		return nil, false
	}
	for _, item := range ToSequence(v) {
		if Extract(item, field, "") == value {
			return item, true
		}
	}
	return nil, false
}
