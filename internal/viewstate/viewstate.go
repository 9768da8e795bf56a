// Package viewstate owns the saved state of list views (search, stock filter,
// hidden columns, selection). Everything that reads or writes that state goes
// through Normalize so stored and shared states look the same.
package viewstate

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go-inventory-stock/internal/model"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
	maxSearchLen    = 100
)

// Views that can be saved.
const (
	ViewProducts     = "products"
	ViewTransactions = "transactions"
)

var (
	ErrUnknownView = errors.New("unknown view")
	ErrInvalid     = errors.New("invalid view state")
)

var columnName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,39}$`)

func KnownView(view string) bool {
	return view == ViewProducts || view == ViewTransactions
}

func Default() model.ViewPrefs {
	return model.ViewPrefs{
		HiddenColumns: []string{},
		SelectedIDs:   []model.ID{},
		PageSize:      DefaultPageSize,
	}
}

// Normalize validates prefs and returns them in canonical form: trimmed search,
// sorted unique columns, unique selection in first-seen order.
func Normalize(p model.ViewPrefs) (model.ViewPrefs, error) {
	out := Default()

	out.Search = strings.TrimSpace(p.Search)
	if len(out.Search) > maxSearchLen {
		return out, fmt.Errorf("%w: search longer than %d characters", ErrInvalid, maxSearchLen)
	}

	switch p.StockLevel {
	case "", model.StockIn, model.StockLow, model.StockEmpty:
		out.StockLevel = p.StockLevel
	default:
		return out, fmt.Errorf("%w: stock level %q", ErrInvalid, p.StockLevel)
	}

	switch {
	case p.PageSize == 0:
	case p.PageSize < 0 || p.PageSize > MaxPageSize:
		return out, fmt.Errorf("%w: page size must be between 1 and %d", ErrInvalid, MaxPageSize)
	default:
		out.PageSize = p.PageSize
	}

	for _, c := range p.HiddenColumns {
		c = strings.TrimSpace(c)
		if !columnName.MatchString(c) {
			return out, fmt.Errorf("%w: column %q", ErrInvalid, c)
		}
		out.HiddenColumns = append(out.HiddenColumns, c)
	}
	slices.Sort(out.HiddenColumns)
	out.HiddenColumns = slices.Compact(out.HiddenColumns)

	seen := make(map[model.ID]bool, len(p.SelectedIDs))
	for _, raw := range p.SelectedIDs {
		id, err := model.ParseID(string(raw))
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		out.SelectedIDs = append(out.SelectedIDs, id)
	}

	return out, nil
}

// Encode packs prefs into a URL-safe token for sharing a view.
func Encode(p model.ViewPrefs) (string, error) {
	n, err := Normalize(p)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func Decode(token string) (model.ViewPrefs, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var p model.ViewPrefs
	if err := json.Unmarshal(b, &p); err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Normalize(p)
}

// Apply filters products by the search term and stock level of prefs. Order is kept.
func Apply(products []model.Product, p model.ViewPrefs) []model.Product {
	needle := strings.ToLower(strings.TrimSpace(p.Search))
	out := make([]model.Product, 0, len(products))
	for _, prod := range products {
		if p.StockLevel != "" && prod.StockLevel() != p.StockLevel {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(prod.DisplayName()), needle) &&
			!strings.Contains(strings.ToLower(prod.SKU), needle) {
			continue
		}
		out = append(out, prod)
	}
	return out
}
