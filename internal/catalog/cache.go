// Package catalog keeps recently loaded product pages per branch in memory.
//
// Results are eventually consistent: every mutation path invalidates the branch,
// and realtime events invalidate it again through a throttle, but a reader may
// still see a page fetched just before a write landed.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/ws"

	"go.uber.org/zap"
)

var ErrInvalidPage = errors.New("page must be zero or positive")

// Source is the backing store query surface used by the cache.
type Source interface {
	FindPage(ctx context.Context, branchID model.ID, offset, limit int) ([]model.Product, error)
	CountByBranch(ctx context.Context, branchID model.ID) (int64, error)
}

// SessionRefresher re-establishes the store session before a retry.
type SessionRefresher interface {
	RefreshSession(ctx context.Context) error
}

type Options struct {
	PageSize             int
	TTL                  time.Duration
	InvalidationInterval time.Duration
}

// Result is one page of products. Stale is set when the store returned an
// unexplained empty page and the previous contents were served instead.
type Result struct {
	Products  []model.Product `json:"products"`
	Stale     bool            `json:"stale"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type pageKey struct {
	branch model.ID
	page   int
}

type entry struct {
	products  []model.Product
	fetchedAt time.Time
	valid     bool
}

type Cache struct {
	source   Source
	session  SessionRefresher
	log      *zap.Logger
	pageSize int
	ttl      time.Duration
	now      func() time.Time
	throttle *Throttle

	mu          sync.Mutex
	entries     map[pageKey]*entry
	generations map[model.ID]uint64
}

func New(source Source, session SessionRefresher, log *zap.Logger, opts Options) *Cache {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.InvalidationInterval <= 0 {
		opts.InvalidationInterval = time.Second
	}
	return &Cache{
		source:      source,
		session:     session,
		log:         log,
		pageSize:    opts.PageSize,
		ttl:         opts.TTL,
		now:         time.Now,
		throttle:    NewThrottle(opts.InvalidationInterval),
		entries:     make(map[pageKey]*entry),
		generations: make(map[model.ID]uint64),
	}
}

func (c *Cache) PageSize() int { return c.pageSize }

// Load returns one page of the branch catalog ordered by name.
func (c *Cache) Load(ctx context.Context, branchID model.ID, page int) (Result, error) {
	if page < 0 {
		return Result{}, ErrInvalidPage
	}
	key := pageKey{branch: branchID, page: page}

	c.mu.Lock()
	prev := c.entries[key]
	if prev != nil && c.fresh(prev) {
		res := Result{Products: slices.Clone(prev.products), FetchedAt: prev.fetchedAt}
		c.mu.Unlock()
		return res, nil
	}
	gen := c.generations[branchID]
	var prevProducts []model.Product
	var prevFetched time.Time
	if prev != nil {
		prevProducts = prev.products
		prevFetched = prev.fetchedAt
	}
	c.mu.Unlock()

	products, err := c.fetch(ctx, branchID, page)
	if err != nil {
		return Result{}, err
	}

	if len(products) == 0 && len(prevProducts) > 0 && c.suspectEmpty(ctx, branchID, page) {
		if err := c.session.RefreshSession(ctx); err != nil {
			c.log.Warn("session refresh before catalog retry failed",
				zap.String("branch_id", branchID.String()), zap.Error(err))
		}
		products, err = c.fetch(ctx, branchID, page)
		if err != nil {
			return Result{}, err
		}
		if len(products) == 0 {
			c.log.Warn("catalog returned empty page despite existing products, serving previous page",
				zap.String("branch_id", branchID.String()),
				zap.Int("page", page),
				zap.Int("previous_count", len(prevProducts)),
				zap.Time("previous_fetched_at", prevFetched))
			return Result{Products: slices.Clone(prevProducts), Stale: true, FetchedAt: prevFetched}, nil
		}
	}

	fetchedAt := c.now()
	c.mu.Lock()
	c.entries[key] = &entry{
		products:  products,
		fetchedAt: fetchedAt,
		valid:     c.generations[branchID] == gen,
	}
	c.mu.Unlock()

	return Result{Products: slices.Clone(products), FetchedAt: fetchedAt}, nil
}

// LoadAll walks the pages of a branch until a short page.
func (c *Cache) LoadAll(ctx context.Context, branchID model.ID) (Result, error) {
	var all Result
	for page := 0; ; page++ {
		res, err := c.Load(ctx, branchID, page)
		if err != nil {
			return Result{}, err
		}
		all.Products = append(all.Products, res.Products...)
		all.Stale = all.Stale || res.Stale
		if all.FetchedAt.IsZero() || res.FetchedAt.Before(all.FetchedAt) {
			all.FetchedAt = res.FetchedAt
		}
		if len(res.Products) < c.pageSize {
			return all, nil
		}
	}
}

// Invalidate marks every cached page of the branch for refetch.
func (c *Cache) Invalidate(branchID model.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[branchID]++
	for key, e := range c.entries {
		if key.branch == branchID {
			e.valid = false
		}
	}
}

// Watch invalidates branches named by product and transaction change events,
// at most once per invalidation interval per branch, until ctx ends or the feed closes.
func (c *Cache) Watch(ctx context.Context, events <-chan ws.Event) {
	defer c.throttle.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Table != ws.TableProducts && ev.Table != ws.TableTransactions {
				continue
			}
			branch := ev.BranchID
			c.throttle.Do(branch, func() { c.Invalidate(branch) })
		}
	}
}

func (c *Cache) fresh(e *entry) bool {
	if !e.valid {
		return false
	}
	return c.ttl <= 0 || c.now().Sub(e.fetchedAt) < c.ttl
}

func (c *Cache) fetch(ctx context.Context, branchID model.ID, page int) ([]model.Product, error) {
	products, err := c.source.FindPage(ctx, branchID, page*c.pageSize, c.pageSize)
	if err != nil {
		return nil, fmt.Errorf("load products for branch %s: %w", branchID, err)
	}
	return products, nil
}

// suspectEmpty asks an independent count query whether the branch still has
// products at or past the page offset. A page past the end of a shrunk catalog is
// legitimately empty.
func (c *Cache) suspectEmpty(ctx context.Context, branchID model.ID, page int) bool {
	n, err := c.source.CountByBranch(ctx, branchID)
	if err != nil {
		c.log.Warn("product count hint failed, trusting empty page",
			zap.String("branch_id", branchID.String()), zap.Error(err))
		return false
	}
	return n > int64(page*c.pageSize)
}
