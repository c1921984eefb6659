package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/segment"
)

// Tags the reconciler counts and emits
const (
	TagInterchangeHeader  = "UNB"
	TagMessageHeader      = "UNH"
	TagLineItem           = "LIN"
	TagControlTotal       = "CNT"
	TagMessageTrailer     = "UNT"
	TagInterchangeTrailer = "UNZ"
)

// controlQualifierLines is the CNT qualifier for "number of line items"
const controlQualifierLines = "2"

// Reconciler derives trailer counts from segments that were actually emitted
type Reconciler struct {
	Grammar segment.Grammar
}

// NewReconciler creates a reconciler for the EDIFACT grammar
func NewReconciler() Reconciler {
	return Reconciler{Grammar: segment.EDIFACT}
}

// ControlTotal builds the CNT segment from the LIN segments in body
func (r Reconciler) ControlTotal(body []segment.Segment) segment.Segment {
	n := segment.Count(body, TagLineItem)
	return segment.New(TagControlTotal, r.Grammar.Composite(controlQualifierLines, strconv.Itoa(n)))
}

// CloseMessage appends the UNT trailer. Its count covers every segment from
// UNH through UNT itself; without a UNH the whole body is counted.
func (r Reconciler) CloseMessage(body []segment.Segment) []segment.Segment {
	start := segment.Index(body, TagMessageHeader)
	if start < 0 {
		start = 0
	}
	n := strconv.Itoa(len(body) - start + 1)

	out := make([]segment.Segment, 0, len(body)+1)
	out = append(out, body...)
	return append(out, segment.New(TagMessageTrailer, r.Grammar.Composite(n, n)))
}

// CloseInterchange builds the UNZ trailer for the given number of messages
func (r Reconciler) CloseInterchange(messages int, controlRef string) segment.Segment {
	return segment.New(TagInterchangeTrailer, strconv.Itoa(messages), r.Grammar.Composite("1", r.Grammar.Escape(controlRef)))
}

// Verify checks the trailer counts of an emitted segment sequence:
// each UNT must match the size of its message, each CNT the LIN segments
// preceding it, and UNZ the number of messages.
func (r Reconciler) Verify(segs []segment.Segment) error {
	messages := 0
	start := -1
	lines := 0

	for i, s := range segs {
		switch s.Tag {
		case TagMessageHeader:
			messages++
			start = i
			lines = 0
		case TagLineItem:
			lines++
		case TagControlTotal:
			declared, err := r.declaredCount(s, 1)
			if err != nil {
				return err
			}
			if declared != lines {
				return countMismatch(TagControlTotal, declared, lines)
			}
		case TagMessageTrailer:
			if start < 0 {
				return model.NewValidationError(TagMessageTrailer, nil, "order", "trailer without message header")
			}
			declared, err := r.declaredCount(s, 0)
			if err != nil {
				return err
			}
			if actual := i - start + 1; declared != actual {
				return countMismatch(TagMessageTrailer, declared, actual)
			}
			start = -1
		case TagInterchangeTrailer:
			if len(s.Fields) == 0 {
				return model.NewValidationError(TagInterchangeTrailer, nil, "required", "missing message count")
			}
			declared, err := strconv.Atoi(s.Fields[0])
			if err != nil {
				return model.NewValidationError(TagInterchangeTrailer, s.Fields[0], "numeric", "message count is not a number")
			}
			if declared != messages {
				return countMismatch(TagInterchangeTrailer, declared, messages)
			}
		}
	}

	if start >= 0 {
		return model.NewValidationError(TagMessageTrailer, nil, "required", "message is not closed")
	}
	return nil
}

// declaredCount reads component idx of the first field of s
func (r Reconciler) declaredCount(s segment.Segment, idx int) (int, error) {
	if len(s.Fields) == 0 {
		return 0, model.NewValidationError(s.Tag, nil, "required", "missing count")
	}
	parts := strings.Split(s.Fields[0], r.Grammar.ComponentSeparator)
	if idx >= len(parts) {
		return 0, model.NewValidationError(s.Tag, s.Fields[0], "required", "missing count")
	}
	n, err := strconv.Atoi(parts[idx])
	if err != nil {
		return 0, model.NewValidationError(s.Tag, parts[idx], "numeric", "count is not a number")
	}
	return n, nil
}

func countMismatch(tag string, declared, actual int) error {
	return model.NewValidationError(tag, declared, "count", fmt.Sprintf("declares %d but %d were emitted", declared, actual))
}
