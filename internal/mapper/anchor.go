// Package mapper turns IDOC document trees into segment sequences.
//
// Strict maps the INVOIC02 IDOC onto a fixed EDIFACT INVOIC D.07A message.
// Dynamic maps any document onto generic segments named after its elements.
// Both are pure: they read the tree, allocate their own output and keep no
// state between calls, so one mapper may serve concurrent conversions.
package mapper

import (
	"github.com/rezonia/idoc-edi/internal/tree"
)

// FindAnchor resolves the record container at path.
// The path is tried against the document first and then below each
// top-level element, so both <IDOC> and <INVOIC02><IDOC> roots resolve.
func FindAnchor(doc *tree.Node, path string) (*tree.Node, bool) {
	if path == "" {
		return nil, false
	}
	if n, ok := tree.Lookup(doc, path); ok {
		return n, true
	}
	for _, key := range doc.Keys() {
		root, _ := doc.Child(key)
		if n, ok := tree.Lookup(root, path); ok {
			return n, true
		}
	}
	return nil, false
}
