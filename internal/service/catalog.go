package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
	"github.com/utafrali/storefront/pkg/validator"
)

// CreateCategoryInput holds the parameters for creating a category. An
// empty Slug is generated from Name.
type CreateCategoryInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Slug     string `json:"slug" validate:"omitempty,max=255"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// CreateProductInput holds the parameters for creating a product. An empty
// Slug is generated from Title.
type CreateProductInput struct {
	CategorySlug string          `json:"category" validate:"required"`
	Title        string          `json:"title" validate:"required,max=255"`
	Slug         string          `json:"slug" validate:"omitempty,max=255"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"image_url" validate:"omitempty,url"`
	Price        decimal.Decimal `json:"price"`
}

// CategoryWithProducts is a category detail view.
type CategoryWithProducts struct {
	Category *domain.Category
	Products []domain.Product
}

// CatalogService implements read access to the catalog and its
// maintenance operations.
type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	pageSize   int
	logger     *slog.Logger
}

// NewCatalogService creates a new catalog service. Listings are paged by
// pageSize.
func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	pageSize int,
	logger *slog.Logger,
) *CatalogService {
	if pageSize < 1 {
		pageSize = pagination.DefaultPerPage
	}
	return &CatalogService{
		categories: categories,
		products:   products,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// PageSize returns the fixed listing page size.
func (s *CatalogService) PageSize() int {
	return s.pageSize
}

// ListCategories returns one page of categories.
func (s *CatalogService) ListCategories(ctx context.Context, params pagination.Params) (pagination.Result[domain.Category], error) {
	params = pagination.NewParams(params.Page, s.pageSize)
	categories, total, err := s.categories.List(ctx, repository.Page{Offset: params.Offset, Limit: params.PerPage})
	if err != nil {
		return pagination.Result[domain.Category]{}, fmt.Errorf("list categories: %w", err)
	}
	return pagination.NewResult(categories, total, params), nil
}

// ListProducts returns one page of products.
func (s *CatalogService) ListProducts(ctx context.Context, params pagination.Params) (pagination.Result[domain.Product], error) {
	params = pagination.NewParams(params.Page, s.pageSize)
	products, total, err := s.products.List(ctx, repository.Page{Offset: params.Offset, Limit: params.PerPage})
	if err != nil {
		return pagination.Result[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.NewResult(products, total, params), nil
}

// GetCategory returns a category and all of its products.
func (s *CatalogService) GetCategory(ctx context.Context, categorySlug string) (*CategoryWithProducts, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	products, err := s.products.ListByCategory(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("list category products: %w", err)
	}
	return &CategoryWithProducts{Category: category, Products: products}, nil
}

// GetProduct returns a product with its category.
func (s *CatalogService) GetProduct(ctx context.Context, productSlug string) (*domain.Product, error) {
	product, err := s.products.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// CreateCategory validates and stores a new category.
func (s *CatalogService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	categorySlug, err := s.resolveSlug(ctx, input.Slug, input.Name, s.categories.SlugExists)
	if err != nil {
		return nil, err
	}

	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Slug:      categorySlug,
		ImageURL:  input.ImageURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)
	return category, nil
}

// CreateProduct validates and stores a new product in an existing category.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	if !domain.ValidPrice(input.Price) {
		return nil, errInvalidPrice()
	}

	category, err := s.categories.GetBySlug(ctx, input.CategorySlug)
	if err != nil {
		return nil, fmt.Errorf("get product category: %w", err)
	}

	productSlug, err := s.resolveSlug(ctx, input.Slug, input.Title, s.products.SlugExists)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.New().String(),
		CategoryID:  category.ID,
		Category:    category,
		Title:       input.Title,
		Slug:        productSlug,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Price:       input.Price,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
		slog.String("price", product.Price.StringFixed(2)),
	)
	return product, nil
}

// UpdateProductPrice sets a product's price. Lines already in carts keep the
// price they were saved with until their quantity changes.
func (s *CatalogService) UpdateProductPrice(ctx context.Context, productSlug string, price decimal.Decimal) (*domain.Product, error) {
	if !domain.ValidPrice(price) {
		return nil, errInvalidPrice()
	}

	product, err := s.products.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := s.products.UpdatePrice(ctx, product, price); err != nil {
		return nil, fmt.Errorf("update product price: %w", err)
	}

	s.logger.InfoContext(ctx, "product price changed",
		slog.String("product_id", product.ID),
		slog.String("old_price", product.Price.StringFixed(2)),
		slog.String("price", price.StringFixed(2)),
	)
	product.Price = price
	return product, nil
}

func errInvalidPrice() error {
	return apperrors.InvalidInput(fmt.Sprintf("price must be positive, at most %s, with at most two decimal places", domain.MaxPrice.StringFixed(2)))
}

// resolveSlug checks an explicit slug, or derives a free one from name.
func (s *CatalogService) resolveSlug(ctx context.Context, explicit, name string, exists slug.ExistsFunc) (string, error) {
	if explicit != "" {
		if !slug.Valid(explicit) {
			return "", apperrors.InvalidInput(fmt.Sprintf("slug %q is not in canonical form", explicit))
		}
		return explicit, nil
	}
	if slug.Generate(name) == "" {
		return "", apperrors.InvalidInput(fmt.Sprintf("cannot derive a slug from %q", name))
	}
	generated, err := slug.Unique(ctx, name, exists)
	if err != nil {
		return "", fmt.Errorf("generate slug: %w", err)
	}
	return generated, nil
}
