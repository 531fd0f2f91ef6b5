// Package memory implements the repository interfaces in process. It enforces
// the same uniqueness rules as the PostgreSQL schema and backs local runs and
// behaviour tests.
package memory

import (
	"sort"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// DB is the shared state behind every in-memory repository.
type DB struct {
	mu sync.RWMutex

	categories map[string]domain.Category // by id
	products   map[string]domain.Product  // by id
	users      map[string]domain.User     // by id
	customers  map[string]domain.Customer // by id
	carts      map[string]domain.Cart     // by id
	lines      []domain.CartProduct       // insertion order
	orders     []domain.Order             // insertion order
}

// NewDB returns an empty store.
func NewDB() *DB {
	return &DB{
		categories: make(map[string]domain.Category),
		products:   make(map[string]domain.Product),
		users:      make(map[string]domain.User),
		customers:  make(map[string]domain.Customer),
		carts:      make(map[string]domain.Cart),
	}
}

func window[T any](items []T, page repository.Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return append([]T{}, items[page.Offset:end]...)
}

// withCategory attaches a copy of the product's category. Callers hold mu.
func (db *DB) withCategory(p domain.Product) domain.Product {
	if c, ok := db.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	return p
}

// sortedProducts returns products ordered by category name, then title.
// Callers hold mu.
func (db *DB) sortedProducts(filter func(domain.Product) bool) []domain.Product {
	out := []domain.Product{}
	for _, p := range db.products {
		if filter == nil || filter(p) {
			out = append(out, db.withCategory(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].Category, out[j].Category
		if ci != nil && cj != nil && ci.Name != cj.Name {
			return ci.Name < cj.Name
		}
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out
}
