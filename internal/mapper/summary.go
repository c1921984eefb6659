package mapper

import (
	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/tree"
)

// Summary describes an IDOC without converting it
type Summary struct {
	Root           string   `json:"root"`
	Anchor         string   `json:"anchor"`
	DocumentNumber string   `json:"document_number"`
	Currency       string   `json:"currency"`
	PartnerRoles   []string `json:"partner_roles"`
	MappedRoles    []string `json:"mapped_roles"`
	LineItems      int      `json:"line_items"`
	Segments       []string `json:"segments"`
}

// Summarize reports the root element, the partner roles and the number of
// line items found below the anchor at path.
func Summarize(doc *tree.Node, path string) (*Summary, error) {
	idoc, ok := FindAnchor(doc, path)
	if !ok {
		return nil, model.NewRootError(model.ModeStrict, path)
	}

	s := &Summary{
		Anchor:         path,
		DocumentNumber: tree.Extract(idoc, "E1EDK01.BELNR", ""),
		Currency:       tree.Extract(idoc, "E1EDK01.WAERK", ""),
		PartnerRoles:   []string{},
		MappedRoles:    []string{},
		Segments:       []string{},
	}
	if keys := doc.Keys(); len(keys) > 0 {
		s.Root = keys[0]
	}

	partners, _ := tree.Lookup(idoc, "E1EDKA1")
	for _, p := range tree.ToSequence(partners) {
		role := tree.Extract(p, "PARVW", "")
		s.PartnerRoles = append(s.PartnerRoles, role)
		if role == RoleShipTo || role == RoleBillTo {
			s.MappedRoles = append(s.MappedRoles, role)
		}
	}

	items, _ := tree.Lookup(idoc, "E1EDP01")
	s.LineItems = len(tree.ToSequence(items))

	if idoc.Kind() == tree.KindMap {
		s.Segments = append(s.Segments, idoc.Keys()...)
	}
	return s, nil
}
