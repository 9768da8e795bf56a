package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/internal/ws"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for the postgres repositories. WithinTx holds
// the store lock for the whole unit of work and restores a snapshot on error.
type memStore struct {
	mu       sync.Mutex
	products map[model.ID]model.Product
	txs      []model.StockTransaction

	failAppend      error
	failSetQuantity error
	// beforeSetQuantity runs inside the unit of work, after the audit insert.
	beforeSetQuantity func(s *memStore)
}

func newMemStore(products ...model.Product) *memStore {
	s := &memStore{products: make(map[model.ID]model.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) product(id model.ID) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *memStore) transactions() []model.StockTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs)
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx repository.StockTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make(map[model.ID]model.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	txs := slices.Clone(s.txs)

	if err := fn(&memTx{s}); err != nil {
		s.products = products
		s.txs = txs
		return err
	}
	return nil
}

type memTx struct {
	s *memStore
}

func (t *memTx) LockProduct(ctx context.Context, branchID, id model.ID) (*model.Product, error) {
	p, ok := t.s.products[id]
	if !ok || p.BranchID != branchID {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (t *memTx) CountVariants(ctx context.Context, branchID, parentID model.ID) (int64, error) {
	var n int64
	for _, p := range t.s.products {
		if p.BranchID == branchID && p.ParentProductID != nil && *p.ParentProductID == parentID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) FindByIdempotencyKey(ctx context.Context, branchID model.ID, key string) (*model.StockTransaction, error) {
	for _, tx := range t.s.txs {
		if tx.BranchID == branchID && tx.IdempotencyKey != nil && *tx.IdempotencyKey == key {
			found := tx
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *memTx) CreateProduct(ctx context.Context, product *model.Product) error {
	if product.ID.IsZero() {
		product.ID = model.NewID()
	}
	t.s.products[product.ID] = *product
	return nil
}

func (t *memTx) AppendTransaction(ctx context.Context, tx *model.StockTransaction) error {
	if t.s.failAppend != nil {
		return t.s.failAppend
	}
	if tx.ID.IsZero() {
		tx.ID = model.NewID()
	}
	t.s.txs = append(t.s.txs, *tx)
	return nil
}

func (t *memTx) SetQuantity(ctx context.Context, id model.ID, quantity int, updatedBy string, at time.Time) error {
	if t.s.beforeSetQuantity != nil {
		t.s.beforeSetQuantity(t.s)
	}
	if t.s.failSetQuantity != nil {
		return t.s.failSetQuantity
	}
	p, ok := t.s.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.QuantityInStock = quantity
	p.UpdatedBy = updatedBy
	p.UpdatedAt = at
	t.s.products[id] = p
	return nil
}

// ProductRepository

func (s *memStore) branchProducts(branchID model.ID) []model.Product {
	var out []model.Product
	for _, p := range s.products {
		if p.BranchID == branchID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b model.Product) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

func (s *memStore) FindPage(ctx context.Context, branchID model.ID, offset, limit int) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.branchProducts(branchID)
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (s *memStore) CountByBranch(ctx context.Context, branchID model.ID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.branchProducts(branchID))), nil
}

func (s *memStore) FindByID(ctx context.Context, branchID, id model.ID) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.BranchID != branchID {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *memStore) FindBySKU(ctx context.Context, branchID model.ID, sku string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.branchProducts(branchID) {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memStore) FindVariants(ctx context.Context, branchID, parentID model.ID) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Product
	for _, p := range s.branchProducts(branchID) {
		if p.ParentProductID != nil && *p.ParentProductID == parentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) UpdateInfo(ctx context.Context, product *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[product.ID]
	if !ok || p.BranchID != product.BranchID {
		return repository.ErrNotFound
	}
	qty := p.QuantityInStock
	p = *product
	p.QuantityInStock = qty
	s.products[p.ID] = p
	return nil
}

func (s *memStore) Delete(ctx context.Context, branchID, id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.BranchID != branchID {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	s.txs = slices.DeleteFunc(s.txs, func(t model.StockTransaction) bool { return t.ProductID == id })
	return nil
}

// TransactionRepository

func (s *memStore) FindAll(ctx context.Context, branchID model.ID, productID *model.ID, limit int) ([]model.StockTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StockTransaction
	for i := len(s.txs) - 1; i >= 0; i-- {
		t := s.txs[i]
		if t.BranchID != branchID || (productID != nil && t.ProductID != *productID) {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) LedgerBalances(ctx context.Context, branchID model.ID) ([]model.LedgerBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byProduct := make(map[model.ID]*model.LedgerBalance)
	var order []model.ID
	for _, t := range s.txs {
		if t.BranchID != branchID {
			continue
		}
		b, ok := byProduct[t.ProductID]
		if !ok {
			b = &model.LedgerBalance{ProductID: t.ProductID}
			byProduct[t.ProductID] = b
			order = append(order, t.ProductID)
		}
		if t.TransactionType == model.TxOutgoing {
			b.Outgoing += t.Quantity
		} else {
			b.Incoming += t.Quantity
		}
	}
	out := make([]model.LedgerBalance, 0, len(order))
	for _, id := range order {
		out = append(out, *byProduct[id])
	}
	return out, nil
}

func (s *memStore) GetStockMovement(ctx context.Context, branchID model.ID, startDate, endDate time.Time) ([]repository.StockMovementData, error) {
	return nil, nil
}

func (s *memStore) GetDashboardStats(ctx context.Context, branchID model.ID) (*repository.DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats repository.DashboardStats
	for _, p := range s.branchProducts(branchID) {
		stats.TotalProducts++
		if p.QuantityInStock <= p.MinimumStockLevel {
			stats.LowStockCount++
		}
		stats.TotalValuation = stats.TotalValuation.Add(p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.QuantityInStock))))
	}
	return &stats, nil
}

// memTxRepo satisfies TransactionRepository.FindByID, which clashes by name with
// the product finder on memStore.
type memTxRepo struct {
	*memStore
}

func (r memTxRepo) FindByID(ctx context.Context, branchID, id model.ID) (*model.StockTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs {
		if t.ID == id && t.BranchID == branchID {
			found := t
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

// recorder captures invalidations and published events.
type recorder struct {
	mu          sync.Mutex
	invalidated []model.ID
	events      []ws.Event
}

func (r *recorder) Invalidate(branchID model.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, branchID)
}

func (r *recorder) Publish(ev ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invalidated), len(r.events)
}

var errBackend = errors.New("backend unavailable")

func ptr[T any](v T) *T { return &v }

func testProduct(id, name string, qty int) model.Product {
	p := model.Product{
		BranchID:          "b1",
		SKU:               "SKU-" + id,
		Name:              name,
		QuantityInStock:   qty,
		MinimumStockLevel: 2,
		PurchasePrice:     decimal.NewFromInt(10),
		SalePrice:         decimal.NewFromInt(15),
		Status:            model.ProductActive,
	}
	p.ID = model.ID(id)
	return p
}

func testVariant(parentID, id, variantName string, qty int) model.Product {
	p := testProduct(id, "Shirt", qty)
	p.IsVariant = true
	p.ParentProductID = ptr(model.ID(parentID))
	p.VariantName = ptr(variantName)
	return p
}

type nopSession struct{}

func (nopSession) RefreshSession(ctx context.Context) error { return nil }
