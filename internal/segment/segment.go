// Package segment models delimited B2B segments and assembles them into text.
package segment

import (
	"strings"
	"unicode/utf8"
)

// Grammar holds the delimiters of an output syntax
type Grammar struct {
	FieldSeparator     string
	ComponentSeparator string
	Terminator         string
	// Release marks the next character as literal text. Empty disables
	// escaping.
	Release   string
	LineBreak string
}

// EDIFACT is the grammar of the strict INVOIC message
var EDIFACT = Grammar{
	FieldSeparator:     "+",
	ComponentSeparator: ":",
	Terminator:         "'",
	Release:            "?",
	LineBreak:          "\n",
}

// Generic is the grammar of dynamically mapped documents
var Generic = Grammar{
	FieldSeparator: "*",
	Terminator:     "~",
	LineBreak:      "\n",
}

// Segment is one output record. Field order is significant and empty
// fields keep their position.
type Segment struct {
	Tag    string
	Fields []string
}

// New creates a segment
func New(tag string, fields ...string) Segment {
	return Segment{Tag: tag, Fields: fields}
}

// Assemble renders seg as tag, separator-joined fields and terminator.
// A segment without fields renders as tag and terminator only.
func (g Grammar) Assemble(seg Segment) string {
	var sb strings.Builder
	sb.WriteString(seg.Tag)
	for _, f := range seg.Fields {
		sb.WriteString(g.FieldSeparator)
		sb.WriteString(f)
	}
	sb.WriteString(g.Terminator)
	return sb.String()
}

// Composite joins sub-fields occupying one field position
func (g Grammar) Composite(parts ...string) string {
	return strings.Join(parts, g.ComponentSeparator)
}

// Escape prefixes every delimiter and release character in s with the
// release character, so s renders as a single field value.
func (g Grammar) Escape(s string) string {
	if g.Release == "" || !strings.ContainsAny(s, g.delimiters()) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for _, r := range s {
		if strings.ContainsRune(g.delimiters(), r) {
			sb.WriteString(g.Release)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (g Grammar) delimiters() string {
	return g.FieldSeparator + g.ComponentSeparator + g.Terminator + g.Release
}

// Lines assembles every segment
func (g Grammar) Lines(segs []Segment) []string {
	lines := make([]string, len(segs))
	for i, s := range segs {
		lines[i] = g.Assemble(s)
	}
	return lines
}

// Render assembles every segment and joins the lines with the line break
func (g Grammar) Render(segs []Segment) string {
	return strings.Join(g.Lines(segs), g.LineBreak)
}

// Split breaks rendered text back into segments. Blank lines are skipped.
// Composite fields are kept whole and released delimiters stay escaped, so
// assembling the result reproduces the text.
func (g Grammar) Split(text string) []Segment {
	var segs []Segment
	for _, raw := range g.cut(text, g.Terminator) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		parts := g.cut(line, g.FieldSeparator)
		segs = append(segs, Segment{Tag: parts[0], Fields: parts[1:]})
	}
	return segs
}

// cut slices s around sep, ignoring occurrences preceded by the release
// character.
func (g Grammar) cut(s, sep string) []string {
	if g.Release == "" || sep == "" {
		return strings.Split(s, sep)
	}

	var parts []string
	start := 0
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], g.Release):
			i += len(g.Release)
			if i < len(s) {
				_, size := utf8.DecodeRuneInString(s[i:])
				i += size
			}
		case strings.HasPrefix(s[i:], sep):
			parts = append(parts, s[start:i])
			i += len(sep)
			start = i
		default:
			i++
		}
	}
	return append(parts, s[start:])
}

// Count returns how many segments carry tag
func Count(segs []Segment, tag string) int {
	n := 0
	for _, s := range segs {
		if s.Tag == tag {
			n++
		}
	}
	return n
}

// Index returns the position of the first segment carrying tag, or -1
func Index(segs []Segment, tag string) int {
	for i, s := range segs {
		if s.Tag == tag {
			return i
		}
	}
	return -1
}
