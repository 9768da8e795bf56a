// Package entry drives the two ways a user reaches an adjustment: typing a search
// term and picking a product, or scanning a barcode.
package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-inventory-stock/internal/catalog"
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/internal/service"
	"go-inventory-stock/internal/variant"

	"go.uber.org/zap"
)

var ErrEmptyTerm = errors.New("search term is empty")

// Catalog is the cached product list searched by manual entry.
type Catalog interface {
	LoadAll(ctx context.Context, branchID model.ID) (catalog.Result, error)
}

// Products are the authoritative lookups used by scan and selection.
type Products interface {
	FindByID(ctx context.Context, branchID, id model.ID) (*model.Product, error)
	FindBySKU(ctx context.Context, branchID model.ID, sku string) (*model.Product, error)
}

// CreateDraft seeds a new-product form when nothing matched.
type CreateDraft struct {
	Name string `json:"name,omitempty"`
	SKU  string `json:"sku,omitempty"`
}

type SearchResult struct {
	Matches []model.Product `json:"matches"`
	Stale   bool            `json:"stale"`
	Draft   *CreateDraft    `json:"draft,omitempty"`
}

// Target is what an entry step led to: a product that can be adjusted, a list of
// variants to choose from, or a draft for a product that does not exist yet.
type Target struct {
	Direct  *model.Product  `json:"direct,omitempty"`
	Choices []model.Product `json:"choices,omitempty"`
	Draft   *CreateDraft    `json:"draft,omitempty"`
}

type Flow struct {
	catalog  Catalog
	products Products
	resolver *variant.Resolver
	stock    service.StockService
	log      *zap.Logger
}

func NewFlow(cat Catalog, products Products, resolver *variant.Resolver, stock service.StockService, log *zap.Logger) *Flow {
	return &Flow{catalog: cat, products: products, resolver: resolver, stock: stock, log: log}
}

// Search matches term case-insensitively against display name and SKU of the
// cached catalog.
func (f *Flow) Search(ctx context.Context, branchID model.ID, term string) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	res, err := f.catalog.LoadAll(ctx, branchID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	out := &SearchResult{Matches: []model.Product{}, Stale: res.Stale}
	for _, p := range res.Products {
		if strings.Contains(strings.ToLower(p.DisplayName()), needle) ||
			strings.Contains(strings.ToLower(p.SKU), needle) {
			out.Matches = append(out.Matches, p)
		}
	}
	if len(out.Matches) == 0 {
		out.Draft = &CreateDraft{Name: term}
	}
	return out, nil
}

// Scan looks a barcode up by exact SKU. A scanned SKU names one concrete product,
// so the variant resolver is not consulted.
func (f *Flow) Scan(ctx context.Context, branchID model.ID, sku string) (*Target, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, ErrEmptyTerm
	}
	p, err := f.products.FindBySKU(ctx, branchID, sku)
	if errors.Is(err, repository.ErrNotFound) {
		f.log.Debug("scanned SKU not found", zap.String("branch_id", branchID.String()), zap.String("sku", sku))
		return &Target{Draft: &CreateDraft{SKU: sku}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", sku, err)
	}
	return &Target{Direct: p}, nil
}

// Select loads a product picked from search results and resolves its variants.
func (f *Flow) Select(ctx context.Context, branchID model.ID, rawID string) (*Target, error) {
	id, err := model.ParseID(rawID)
	if err != nil {
		return nil, service.ErrInvalidReference
	}
	p, err := f.products.FindByID(ctx, branchID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, service.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	res, err := f.resolver.Resolve(ctx, branchID, p)
	if err != nil {
		return nil, err
	}
	return &Target{Direct: res.Direct, Choices: res.Choices}, nil
}

// Submit hands the confirmed adjustment to the engine.
func (f *Flow) Submit(ctx context.Context, req service.AdjustRequest, actor service.Actor) (*service.AdjustResult, error) {
	return f.stock.Adjust(ctx, req, actor)
}
