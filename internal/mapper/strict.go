package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rezonia/idoc-edi/internal/format"
	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/segment"
	"github.com/rezonia/idoc-edi/internal/tree"
)

// Partner role codes (E1EDKA1-PARVW) that produce NAD groups
const (
	RoleShipTo = "RS"
	RoleBillTo = "RE"
)

// MessageType identifies the INVOIC directory and association code
const MessageType = "INVOIC:D:07A:UN:GA0131"

// StrictOptions configures the INVOIC mapping
type StrictOptions struct {
	Anchor           string
	ControlReference string
	Currency         string
	// UnitOverride replaces the sourced MENEE quantity unit when set
	UnitOverride     string
	DueDateQualifier string
	Number           format.NumberFormat
}

// DefaultStrictOptions returns the canonical INVOIC settings
func DefaultStrictOptions() StrictOptions {
	return StrictOptions{
		Anchor:           "IDOC",
		ControlReference: "2569",
		Currency:         "EUR",
		DueDateQualifier: "026",
		Number:           format.DefaultNumberFormat(),
	}
}

// Interchange is a mapped INVOIC: the UNB envelope, one message from UNH
// through UNT and the UNZ envelope trailer.
type Interchange struct {
	Header   segment.Segment
	Message  []segment.Segment
	Trailer  segment.Segment
	Items    int
	Warnings []string
}

// Segments returns every segment in emission order
func (ic *Interchange) Segments() []segment.Segment {
	segs := make([]segment.Segment, 0, len(ic.Message)+2)
	segs = append(segs, ic.Header)
	segs = append(segs, ic.Message...)
	return append(segs, ic.Trailer)
}

// Lines assembles every segment with the EDIFACT grammar
func (ic *Interchange) Lines() []string {
	return segment.EDIFACT.Lines(ic.Segments())
}

// Render returns the newline-joined message text
func (ic *Interchange) Render() string {
	return segment.EDIFACT.Render(ic.Segments())
}

// Strict maps INVOIC02 IDOCs onto EDIFACT INVOIC messages
type Strict struct {
	opts      StrictOptions
	g         segment.Grammar
	reconcile Reconciler
}

// NewStrict creates a strict mapper
func NewStrict(opts StrictOptions) *Strict {
	return &Strict{
		opts:      opts,
		g:         segment.EDIFACT,
		reconcile: NewReconciler(),
	}
}

// Options returns the mapper settings
func (m *Strict) Options() StrictOptions {
	return m.opts
}

// document is the per-call view over one IDOC
type document struct {
	g    segment.Grammar
	idoc *tree.Node
	due  *tree.Node
}

// field returns the raw scalar at path
func (d document) field(path string) string {
	return tree.Extract(d.idoc, path, "")
}

// text returns the scalar at path escaped for the message grammar
func (d document) text(path string) string {
	return d.g.Escape(d.field(path))
}

// Map converts doc into an interchange. Absent fields degrade to empty or
// zero values; only a missing anchor fails.
func (m *Strict) Map(doc *tree.Node) (*Interchange, error) {
	idoc, ok := FindAnchor(doc, m.opts.Anchor)
	if !ok {
		return nil, model.NewRootError(model.ModeStrict, m.opts.Anchor)
	}

	d := document{g: m.g, idoc: idoc}
	d.due, _ = tree.Find(idoc, "E1EDK03", "IDDAT", m.opts.DueDateQualifier)

	ic := &Interchange{Header: m.envelopeOpen(d)}

	body := []segment.Segment{m.messageHeader()}
	body = append(body, m.documentHeader(d)...)

	partners, warnings := m.partners(d)
	body = append(body, partners...)
	ic.Warnings = warnings

	body = append(body, m.payment(d)...)

	for i, item := range tree.ToSequence(m.lookup(d, "E1EDP01")) {
		body = append(body, m.lineItem(d, ProjectLineItem(item, i+1))...)
		ic.Items++
	}

	body = append(body, m.totals(d, body)...)

	ic.Message = m.reconcile.CloseMessage(body)
	ic.Trailer = m.reconcile.CloseInterchange(1, m.opts.ControlReference)
	return ic, nil
}

func (m *Strict) lookup(d document, path string) *tree.Node {
	n, _ := tree.Lookup(d.idoc, path)
	return n
}

func (m *Strict) num(s string) string {
	return m.g.Escape(m.opts.Number.Format(s))
}

func (m *Strict) amount(qualifier, value string) segment.Segment {
	return segment.New("MOA", m.g.Composite(qualifier, m.num(value), m.g.Escape(m.opts.Currency)))
}

func (m *Strict) date(qualifier, value string) segment.Segment {
	return segment.New("DTM", m.g.Composite(qualifier, m.g.Escape(format.Date(value)), "102"))
}

func (m *Strict) extract(p *tree.Node, path string) string {
	return m.g.Escape(tree.Extract(p, path, ""))
}

func (m *Strict) envelopeOpen(d document) segment.Segment {
	return segment.New(TagInterchangeHeader,
		m.g.Composite("UNOC", "3"),
		m.g.Composite(d.text("EDI_DC40.SNDPOR"), "92"),
		m.g.Composite(d.text("EDI_DC40.RCVPOR"), "91"),
		m.g.Escape(format.Date(d.field("EDI_DC40.CREDAT"))+format.Time(d.field("EDI_DC40.CRETIM"))),
		m.g.Escape(m.opts.ControlReference),
	)
}

func (m *Strict) messageHeader() segment.Segment {
	return segment.New(TagMessageHeader, MessageType)
}

func (m *Strict) documentHeader(d document) []segment.Segment {
	return []segment.Segment{
		segment.New("BGM", m.g.Composite("380", d.text("E1EDK01.BELNR")), "9"),
		m.date("137", d.field("E1EDK01.BLDAT")),
		m.date("1", d.field("E1EDK02.DATUM")),
		segment.New("FTX", m.g.Composite("TXD", d.text("E1EDK18.ZTERM_TXT"))),
		segment.New("GEI", "PM", "::272"),
	}
}

// partners emits the NAD groups in source order. Roles other than ship-to
// and bill-to are skipped and reported as warnings.
func (m *Strict) partners(d document) ([]segment.Segment, []string) {
	var segs []segment.Segment
	var warnings []string

	vatID := d.text("E1EDK01.KUNDEUINR")
	for i, p := range tree.ToSequence(m.lookup(d, "E1EDKA1")) {
		role := tree.Extract(p, "PARVW", "")
		switch role {
		case RoleShipTo:
			segs = append(segs,
				m.nameAndAddress("ST", p),
				segment.New("RFF", m.g.Composite("VA", m.extract(p, "PAORG"))),
			)
		case RoleBillTo:
			segs = append(segs,
				m.nameAndAddress("BY", p),
				segment.New("RFF", m.g.Composite("VA", vatID)),
				segment.New("RFF", m.g.Composite("XA", vatID)),
			)
		default:
			warnings = append(warnings, fmt.Sprintf("partner %d: role %q not mapped", i+1, role))
		}
	}
	return segs, warnings
}

// nameAndAddress builds NAD. Address parts fill consecutive positions after
// an empty name field; blank parts are dropped, and with no parts at all
// one empty position is kept.
func (m *Strict) nameAndAddress(qualifier string, p *tree.Node) segment.Segment {
	fields := []string{
		qualifier,
		m.g.Composite("", m.extract(p, "PARTN"), "", "92"),
		"",
	}

	var address []string
	for _, key := range []string{"STRAS", "ORT1", "PSTLZ", "LAND1"} {
		if v := tree.Extract(p, key, ""); strings.TrimSpace(v) != "" {
			address = append(address, m.g.Escape(v))
		}
	}
	if len(address) == 0 {
		address = []string{""}
	}

	return segment.New("NAD", append(fields, address...)...)
}

func (m *Strict) payment(d document) []segment.Segment {
	due := tree.Extract(d.due, "DATUM", "")
	return []segment.Segment{
		segment.New("CUX", m.g.Composite("2", "", d.text("E1EDK01.WAERK"), "4")),
		m.date("134", due),
		segment.New("PYT", "1", "", m.g.Composite("", "2"), "D", "30"),
		m.date("171", due),
		segment.New("FII", "BF", m.g.Composite("", d.text("E1EDS01.KNUMV"))),
	}
}

func (m *Strict) lineItem(d document, li LineItem) []segment.Segment {
	unit := li.Unit
	if m.opts.UnitOverride != "" {
		unit = m.opts.UnitOverride
	}
	esc := m.g.Escape

	return []segment.Segment{
		segment.New("LIN", m.g.Composite("", strconv.Itoa(li.Position)), "", m.g.Composite(esc(li.MaterialID), "IN")),
		segment.New("IMD", "", "", "1:", "", m.g.Composite("11", "", "272", esc(li.Description))),
		segment.New("QTY", m.g.Composite("47", "", m.num(li.Quantity), esc(unit))),
		segment.New("ALI", m.g.Composite("", esc(li.Origin))),
		m.amount("203", li.Net()),
		segment.New("PRI", m.g.Composite("AAA", m.num(li.UnitPrice), "", esc(li.PriceUnit), "1")),
		segment.New("RFF", m.g.Composite("ON", "", esc(li.OrderRef))),
		segment.New("RFF", m.g.Composite("AAK", esc(li.TaxRate))),
		m.date("171", tree.Extract(d.due, "DATUM", "")),
		m.tax(),
		m.amount("125", li.TaxAmount),
	}
}

func (m *Strict) tax() segment.Segment {
	return segment.New("TAX", m.g.Composite("7", "VAT"), "", "", m.g.Composite("", "", "", "0"))
}

// totals emits the control total and the summary amounts. The control
// total is counted from the line segments already in body.
func (m *Strict) totals(d document, body []segment.Segment) []segment.Segment {
	total := d.field("E1EDS01.SUMME")
	taxBase := d.field("E1EDS01.BTWR")

	return []segment.Segment{
		m.reconcile.ControlTotal(body),
		m.amount("77", total),
		m.amount("125", taxBase),
		m.amount("176", "0"),
		m.amount("79", total),
		m.amount("403", "0"),
		m.tax(),
		m.amount("124", "0"),
		m.amount("125", taxBase),
	}
}
