package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/idoc-edi/internal/mapper"
	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/segment"
	"github.com/rezonia/idoc-edi/internal/tree"
)

func mapDynamic(t *testing.T, xml string) []string {
	t.Helper()
	lines, err := mapper.NewDynamic(mapper.DefaultDynamicOptions()).Lines(parse(t, xml))
	require.NoError(t, err)
	return lines
}

func TestDynamic_ScalarAndRepeatedChildren(t *testing.T) {
	lines := mapDynamic(t, `<IDOC BEGIN="1">
		<DOCNUM>0000000042</DOCNUM>
		<REC SEGMENT="1"><A>1</A><B>x</B></REC>
		<REC SEGMENT="1"><A>2</A><B>y</B></REC>
		<REC SEGMENT="1"><A>3</A><B>z</B></REC>
	</IDOC>`)

	assert.Equal(t, []string{
		"DOCNUM*0000000042~",
		"REC*1*x~",
		"REC*2*y~",
		"REC*3*z~",
	}, lines)
}

func TestDynamic_KeepsSourceKeyOrderAndEmptyFields(t *testing.T) {
	lines := mapDynamic(t, `<IDOC><E1EDK01><ZETA>z</ZETA><ALPHA/><MID>m</MID></E1EDK01></IDOC>`)
	assert.Equal(t, []string{"E1EDK01*z**m~"}, lines)
}

func TestDynamic_FlattensNestedValues(t *testing.T) {
	lines := mapDynamic(t, `<IDOC>
		<E1EDP01 SEGMENT="1">
			<IDTNR>MAT-1</IDTNR>
			<TAG>a</TAG>
			<TAG>b</TAG>
			<E1EDK05 SEGMENT="1"><KRATE>9.5</KRATE></E1EDK05>
		</E1EDP01>
	</IDOC>`)

	require.Len(t, lines, 1)
	assert.Equal(t, `E1EDP01*MAT-1*a,b*{"@_SEGMENT":"1","KRATE":"9.5"}~`, lines[0])
}

func TestDynamic_ForcedSequenceOfOne(t *testing.T) {
	// E1EDKA1 is always a sequence, a single partner still yields one segment
	lines := mapDynamic(t, `<IDOC><E1EDKA1><PARVW>RS</PARVW><PARTN>1</PARTN></E1EDKA1></IDOC>`)
	assert.Equal(t, []string{"E1EDKA1*RS*1~"}, lines)
}

func TestDynamic_AttributesAndText(t *testing.T) {
	lines := mapDynamic(t, `<IDOC><AMOUNT currency="EUR">12.5</AMOUNT></IDOC>`)
	assert.Equal(t, []string{"AMOUNT*EUR*12.5~"}, lines)
}

func TestDynamic_Denylist(t *testing.T) {
	opts := mapper.DefaultDynamicOptions()
	opts.Denylist = append(opts.Denylist, "EDI_DC40", "SNDPOR")

	lines, err := mapper.NewDynamic(opts).Lines(parse(t, `<IDOC BEGIN="1">
		<EDI_DC40 SEGMENT="1"><DOCNUM>1</DOCNUM></EDI_DC40>
		<E1EDK01 SEGMENT="1"><SNDPOR>X</SNDPOR><BELNR>7</BELNR></E1EDK01>
	</IDOC>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"E1EDK01*7~"}, lines)
}

func TestDynamic_CustomGrammar(t *testing.T) {
	opts := mapper.DefaultDynamicOptions()
	opts.Grammar = segment.Grammar{FieldSeparator: "|", Terminator: ";"}
	opts.InnerSeparator = "/"

	lines, err := mapper.NewDynamic(opts).Lines(parse(t, `<IDOC><R><V>1</V><V>2</V><W>3</W></R></IDOC>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"R|1/2|3;"}, lines)
	assert.Equal(t, "/", mapper.NewDynamic(opts).Options().InnerSeparator)
}

func TestDynamic_Segments(t *testing.T) {
	segs, err := mapper.NewDynamic(mapper.DefaultDynamicOptions()).Map(parse(t, `<IDOC><R><V>1</V></R></IDOC>`))
	require.NoError(t, err)
	assert.Equal(t, []segment.Segment{segment.New("R", "1")}, segs)
}

func TestDynamic_MissingAnchor(t *testing.T) {
	_, err := mapper.NewDynamic(mapper.DefaultDynamicOptions()).Lines(parse(t, `<Invoice><No>1</No></Invoice>`))
	require.ErrorIs(t, err, model.ErrUnrecognizedRoot)

	var rootErr *model.RootError
	require.ErrorAs(t, err, &rootErr)
	assert.Equal(t, model.ModeDynamic, rootErr.Mode)
}

func TestDynamic_WrappedAndCustomAnchor(t *testing.T) {
	lines := mapDynamic(t, `<INVOIC02><IDOC><R><V>1</V></R></IDOC></INVOIC02>`)
	assert.Equal(t, []string{"R*1~"}, lines)

	opts := mapper.DefaultDynamicOptions()
	opts.Anchor = "Envelope.Body"
	lines, err := mapper.NewDynamic(opts).Lines(parse(t, `<Envelope><Body><Row><C>1</C></Row><Row><C>2</C></Row></Body></Envelope>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Row*1~", "Row*2~"}, lines)
}

func TestDynamic_EmptySequenceAnchor(t *testing.T) {
	doc := tree.NewMap(tree.Entry{Key: "IDOC", Node: tree.NewSequence()})
	lines, err := mapper.NewDynamic(mapper.DefaultDynamicOptions()).Lines(doc)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestDynamic_Golden(t *testing.T) {
	lines := mapDynamic(t, string(readTestFile(t, "invoic02.xml")))

	require.Len(t, lines, 11)
	assert.Equal(t, "EDI_DC40*SAPPRD*EDIGATE*2024-03-07*13:45:01~", lines[0])
	assert.Equal(t, "E1EDK01*90001234*2024-03-07*EUR*IT01234567890~", lines[1])
	assert.Equal(t, "E1EDKA1*RS*100200*Acme Logistics*Via Roma 1*Milano*20121*IT*ORG-77~", lines[2])
	assert.Equal(t, "E1EDKA1*RE*100300*Corso Italia 5*Torino**IT~", lines[3])
	assert.Equal(t, "E1EDS01*183.03*33.03*BANK-42~", lines[10])
}

func TestFindAnchor(t *testing.T) {
	doc := parse(t, `<A><B><C>1</C></B></A>`)

	n, ok := mapper.FindAnchor(doc, "A.B")
	require.True(t, ok)
	assert.Equal(t, "1", tree.Extract(n, "C", ""))

	n, ok = mapper.FindAnchor(doc, "B")
	require.True(t, ok)
	assert.Equal(t, "1", tree.Extract(n, "C", ""))

	_, ok = mapper.FindAnchor(doc, "")
	assert.False(t, ok)

	_, ok = mapper.FindAnchor(doc, "Z")
	assert.False(t, ok)
}
