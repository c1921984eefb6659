package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/idoc-edi/internal/mapper"
	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/segment"
)

func body(linItems int) []segment.Segment {
	segs := []segment.Segment{
		segment.New("UNB", "UNOC:3"),
		segment.New("UNH", "INVOIC:D:07A:UN:GA0131"),
		segment.New("BGM", "380:1", "9"),
	}
	for i := 1; i <= linItems; i++ {
		segs = append(segs, segment.New("LIN", ":1"), segment.New("QTY", "47::1,00:PCE"))
	}
	return segs
}

func TestReconciler_ControlTotal(t *testing.T) {
	r := mapper.NewReconciler()

	assert.Equal(t, segment.New("CNT", "2:0"), r.ControlTotal(body(0)))
	assert.Equal(t, segment.New("CNT", "2:3"), r.ControlTotal(body(3)))
}

func TestReconciler_CloseMessage(t *testing.T) {
	r := mapper.NewReconciler()

	segs := r.CloseMessage(body(2))
	// UNH, BGM, 2 x (LIN, QTY), UNT
	assert.Equal(t, segment.New("UNT", "7:7"), segs[len(segs)-1])
	assert.Len(t, segs, len(body(2))+1)

	noHeader := r.CloseMessage([]segment.Segment{segment.New("BGM")})
	assert.Equal(t, segment.New("UNT", "2:2"), noHeader[1])
}

func TestReconciler_CloseMessageDoesNotAlias(t *testing.T) {
	r := mapper.NewReconciler()
	in := make([]segment.Segment, 2, 10)
	in[0] = segment.New("UNH")
	in[1] = segment.New("BGM")

	out := r.CloseMessage(in)
	out[0].Tag = "XXX"
	assert.Equal(t, "UNH", in[0].Tag)
}

func TestReconciler_CloseInterchange(t *testing.T) {
	r := mapper.NewReconciler()
	assert.Equal(t, "UNZ+1+1:2569'", r.Grammar.Assemble(r.CloseInterchange(1, "2569")))
}

func closed(items int) []segment.Segment {
	r := mapper.NewReconciler()
	segs := body(items)
	segs = append(segs, r.ControlTotal(segs))
	segs = r.CloseMessage(segs)
	return append(segs, r.CloseInterchange(1, "2569"))
}

func TestReconciler_Verify(t *testing.T) {
	r := mapper.NewReconciler()

	for _, n := range []int{0, 1, 5} {
		require.NoError(t, r.Verify(closed(n)))
	}

	tests := []struct {
		name   string
		mutate func([]segment.Segment) []segment.Segment
		tag    string
		rule   string
	}{
		{
			name: "unt too small",
			mutate: func(s []segment.Segment) []segment.Segment {
				s[len(s)-2] = segment.New("UNT", "3:3")
				return s
			},
			tag:  "UNT",
			rule: "count",
		},
		{
			name: "cnt mismatch",
			mutate: func(s []segment.Segment) []segment.Segment {
				for i := range s {
					if s[i].Tag == "CNT" {
						s[i] = segment.New("CNT", "2:9")
					}
				}
				return s
			},
			tag:  "CNT",
			rule: "count",
		},
		{
			name: "unz counts two messages",
			mutate: func(s []segment.Segment) []segment.Segment {
				s[len(s)-1] = segment.New("UNZ", "2", "1:2569")
				return s
			},
			tag:  "UNZ",
			rule: "count",
		},
		{
			name: "non numeric count",
			mutate: func(s []segment.Segment) []segment.Segment {
				s[len(s)-2] = segment.New("UNT", "x:x")
				return s
			},
			tag:  "UNT",
			rule: "numeric",
		},
		{
			name: "unclosed message",
			mutate: func(s []segment.Segment) []segment.Segment {
				return s[:len(s)-2]
			},
			tag:  "UNT",
			rule: "required",
		},
		{
			name: "trailer without header",
			mutate: func(s []segment.Segment) []segment.Segment {
				return s[len(s)-2:]
			},
			tag:  "UNT",
			rule: "order",
		},
		{
			name: "empty cnt",
			mutate: func(s []segment.Segment) []segment.Segment {
				for i := range s {
					if s[i].Tag == "CNT" {
						s[i] = segment.New("CNT")
					}
				}
				return s
			},
			tag:  "CNT",
			rule: "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Verify(tt.mutate(closed(2)))
			require.Error(t, err)

			var vErr *model.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.tag, vErr.Field)
			assert.Equal(t, tt.rule, vErr.Rule)
		})
	}
}

func TestReconciler_VerifyRenderedText(t *testing.T) {
	r := mapper.NewReconciler()
	text := r.Grammar.Render(closed(3))

	require.NoError(t, r.Verify(r.Grammar.Split(text)))
}
