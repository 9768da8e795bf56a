package variant

import (
	"go-inventory-stock/internal/model"
)

// Entry is one row of a classified catalog. Every variant row is a Variant; its
// Parent ref always carries the parent ID, and the parent name only when the parent
// is in the same list. A Parent is a product with at least one variant in the list.
type Entry interface {
	Product() *model.Product
	Stockable() bool
	entry()
}

// Ref points at a related product without carrying the whole record.
type Ref struct {
	ID   model.ID `json:"id"`
	Name string   `json:"name"`
}

type Standalone struct {
	P model.Product
}

type Parent struct {
	P        model.Product
	Children []Ref
}

type Variant struct {
	P      model.Product
	Parent Ref
}

func (s *Standalone) Product() *model.Product { return &s.P }
func (p *Parent) Product() *model.Product     { return &p.P }
func (v *Variant) Product() *model.Product    { return &v.P }

func (*Standalone) Stockable() bool { return true }
func (*Parent) Stockable() bool     { return false }
func (*Variant) Stockable() bool    { return true }

func (*Standalone) entry() {}
func (*Parent) entry()     {}
func (*Variant) entry()    {}

// Classify tags every product in a flat list. Input order is kept; children of a
// parent are listed in variant-name order.
func Classify(products []model.Product) []Entry {
	byID := make(map[model.ID]*model.Product, len(products))
	children := make(map[model.ID][]model.Product)
	for i := range products {
		p := &products[i]
		byID[p.ID] = p
		if p.IsVariant && p.ParentProductID != nil {
			children[*p.ParentProductID] = append(children[*p.ParentProductID], *p)
		}
	}

	entries := make([]Entry, 0, len(products))
	for _, p := range products {
		switch {
		case p.IsVariant && p.ParentProductID != nil:
			ref := Ref{ID: *p.ParentProductID}
			if parent, ok := byID[*p.ParentProductID]; ok {
				ref.Name = parent.Name
			}
			entries = append(entries, &Variant{P: p, Parent: ref})
		case len(children[p.ID]) > 0:
			kids := children[p.ID]
			SortByVariantName(kids)
			refs := make([]Ref, len(kids))
			for i, k := range kids {
				refs[i] = Ref{ID: k.ID, Name: k.VariantLabel()}
			}
			entries = append(entries, &Parent{P: p, Children: refs})
		default:
			entries = append(entries, &Standalone{P: p})
		}
	}
	return entries
}
