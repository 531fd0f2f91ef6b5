package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	query := `
		INSERT INTO categories (id, name, slug, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	ctx, end := database.TraceQuery(ctx, "categories.Create", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query, c.ID, c.Name, c.Slug, c.ImageURL, c.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "slug", c.Slug)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetBySlug retrieves a category by its slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (_ *domain.Category, err error) {
	query := `SELECT id, name, slug, image_url, created_at FROM categories WHERE slug = $1`

	ctx, end := database.TraceQuery(ctx, "categories.GetBySlug", query)
	defer func() { end(err) }()

	var c domain.Category
	err = r.pool.QueryRow(ctx, query, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.ImageURL, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("category", slug)
		}
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return &c, nil
}

// List returns one page of categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context, page repository.Page) (_ []domain.Category, _ int, err error) {
	query := `
		SELECT id, name, slug, image_url, created_at
		FROM categories
		ORDER BY name, id
		LIMIT $1 OFFSET $2`

	ctx, end := database.TraceQuery(ctx, "categories.List", query)
	defer func() { end(err) }()

	var total int
	if err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, page.Limit)
	for rows.Next() {
		var c domain.Category
		if err = rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, total, nil
}

// SlugExists reports whether a category already uses slug.
func (r *CategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return slugExists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug)
}

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productSelect = `
		SELECT p.id, p.category_id, p.title, p.slug, p.description, p.image_url,
			p.price::text, p.created_at,
			c.name, c.slug, c.image_url, c.created_at
		FROM products p
		JOIN categories c ON c.id = p.category_id`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		c     domain.Category
		price string
	)
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.Title, &p.Slug, &p.Description, &p.ImageURL,
		&price, &p.CreatedAt,
		&c.Name, &c.Slug, &c.ImageURL, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	c.ID = p.CategoryID
	p.Category = &c
	return &p, nil
}

// Create inserts a product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	query := `
		INSERT INTO products (id, category_id, title, slug, description, image_url, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	ctx, end := database.TraceQuery(ctx, "products.Create", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.CategoryID,
		p.Title,
		p.Slug,
		p.Description,
		p.ImageURL,
		p.Price.StringFixed(2),
		p.CreatedAt,
	)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		case database.IsForeignKeyViolation(err):
			return apperrors.NotFound("category", p.CategoryID)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetBySlug retrieves a product and its category by the product slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (_ *domain.Product, err error) {
	query := productSelect + ` WHERE p.slug = $1`

	ctx, end := database.TraceQuery(ctx, "products.GetBySlug", query)
	defer func() { end(err) }()

	p, err := scanProduct(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", slug)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return p, nil
}

// List returns one page of products ordered by category name, then title.
func (r *ProductRepository) List(ctx context.Context, page repository.Page) (_ []domain.Product, _ int, err error) {
	query := productSelect + `
		ORDER BY c.name, p.title, p.id
		LIMIT $1 OFFSET $2`

	ctx, end := database.TraceQuery(ctx, "products.List", query)
	defer func() { end(err) }()

	var total int
	if err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	products, err := r.query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListByCategory returns all products of a category ordered by title.
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID string) (_ []domain.Product, err error) {
	query := productSelect + `
		WHERE p.category_id = $1
		ORDER BY p.title, p.id`

	ctx, end := database.TraceQuery(ctx, "products.ListByCategory", query)
	defer func() { end(err) }()

	return r.query(ctx, query, categoryID)
}

// UpdatePrice sets a product's price.
func (r *ProductRepository) UpdatePrice(ctx context.Context, p *domain.Product, price decimal.Decimal) (err error) {
	query := `UPDATE products SET price = $2 WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "products.UpdatePrice", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, p.ID, price.StringFixed(2))
	if err != nil {
		return fmt.Errorf("update product price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.Slug)
	}
	return nil
}

func (r *ProductRepository) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// SlugExists reports whether a product already uses slug.
func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return slugExists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`, slug)
}

func slugExists(ctx context.Context, db database.DBTX, query, slug string) (bool, error) {
	var exists bool
	if err := db.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return exists, nil
}
