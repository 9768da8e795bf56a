package variant

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go-inventory-stock/internal/model"
)

// Finder lists the variants owned by a parent within a branch.
type Finder interface {
	FindVariants(ctx context.Context, branchID, parentID model.ID) ([]model.Product, error)
}

// Resolution is either a direct adjustment target or a list the caller must pick from.
type Resolution struct {
	Direct  *model.Product  `json:"direct,omitempty"`
	Choices []model.Product `json:"choices,omitempty"`
}

func (r Resolution) NeedsSelection() bool {
	return r.Direct == nil
}

type Resolver struct {
	finder Finder
}

func NewResolver(finder Finder) *Resolver {
	return &Resolver{finder: finder}
}

// Resolve decides whether product can be adjusted directly. A product with variants
// is never a target itself; its variants are returned ordered by variant name.
// Results are not cached.
func (r *Resolver) Resolve(ctx context.Context, branchID model.ID, product *model.Product) (Resolution, error) {
	variants, err := r.finder.FindVariants(ctx, branchID, product.ID)
	if err != nil {
		return Resolution{}, fmt.Errorf("find variants of %s: %w", product.ID, err)
	}
	if len(variants) == 0 {
		target := *product
		return Resolution{Direct: &target}, nil
	}
	SortByVariantName(variants)
	return Resolution{Choices: variants}, nil
}

// SortByVariantName orders by variant label (byte-wise, case-sensitive), then id.
func SortByVariantName(products []model.Product) {
	slices.SortStableFunc(products, func(a, b model.Product) int {
		if c := cmp.Compare(a.VariantLabel(), b.VariantLabel()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
