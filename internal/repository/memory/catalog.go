package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CategoryRepository implements repository.CategoryRepository in memory.
type CategoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a category repository over db.
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(_ context.Context, c *domain.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.categories {
		if existing.Slug == c.Slug {
			return apperrors.AlreadyExists("category", "slug", c.Slug)
		}
	}
	r.db.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepository) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, c := range r.db.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("category", slug)
}

func (r *CategoryRepository) List(_ context.Context, page repository.Page) ([]domain.Category, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	all := make([]domain.Category, 0, len(r.db.categories))
	for _, c := range r.db.categories {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return window(all, page), len(all), nil
}

func (r *CategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.GetBySlug(ctx, slug)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// ProductRepository implements repository.ProductRepository in memory.
type ProductRepository struct {
	db *DB
}

// NewProductRepository creates a product repository over db.
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.categories[p.CategoryID]; !ok {
		return apperrors.NotFound("category", p.CategoryID)
	}
	for _, existing := range r.db.products {
		if existing.Slug == p.Slug {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
	}
	stored := *p
	stored.Category = nil
	r.db.products[p.ID] = stored
	return nil
}

func (r *ProductRepository) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.products {
		if p.Slug == slug {
			out := r.db.withCategory(p)
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("product", slug)
}

func (r *ProductRepository) List(_ context.Context, page repository.Page) ([]domain.Product, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	all := r.db.sortedProducts(nil)
	return window(all, page), len(all), nil
}

func (r *ProductRepository) ListByCategory(_ context.Context, categoryID string) ([]domain.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.db.sortedProducts(func(p domain.Product) bool {
		return p.CategoryID == categoryID
	}), nil
}

func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.GetBySlug(ctx, slug)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *ProductRepository) UpdatePrice(_ context.Context, p *domain.Product, price decimal.Decimal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.products[p.ID]
	if !ok {
		return apperrors.NotFound("product", p.Slug)
	}
	stored.Price = price
	r.db.products[p.ID] = stored
	return nil
}
