package mapper

import (
	"github.com/rezonia/idoc-edi/internal/tree"
)

// LineItem is the flat projection of one E1EDP01 element
type LineItem struct {
	Position    int // 1-based, in source order
	ItemNumber  string
	MaterialID  string
	Description string
	Quantity    string
	Unit        string
	Origin      string
	OrderRef    string
	Rate        string
	PriceUnit   string
	UnitPrice   string
	TaxCode     string
	NetAmount   string
	TaxAmount   string
	TaxRate     string
}

// ProjectLineItem reads the fields the INVOIC line group needs
func ProjectLineItem(item *tree.Node, position int) LineItem {
	f := func(path string) string { return tree.Extract(item, path, "") }

	return LineItem{
		Position:    position,
		ItemNumber:  f("POSEX"),
		MaterialID:  f("IDTNR"),
		Description: f("KTEXT"),
		Quantity:    f("MENGE"),
		Unit:        f("MENEE"),
		Origin:      f("HERKL"),
		OrderRef:    f("XABLN"),
		Rate:        f("E1EDK05.KRATE"),
		PriceUnit:   f("E1EDK05.MEAUN"),
		UnitPrice:   f("E1EDK05.UPRBS"),
		TaxCode:     f("E1EDP19.TAXCD"),
		NetAmount:   f("E1EDP19.NETWR"),
		TaxAmount:   f("E1EDP19.MWSBT"),
		TaxRate:     f("E1EDP04.MSATZ"),
	}
}

// Net returns the item net amount, falling back to the condition rate
func (li LineItem) Net() string {
	if li.NetAmount != "" {
		return li.NetAmount
	}
	return li.Rate
}
