package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products in the catalog.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a sellable catalog item. Price has two decimal places.
type Product struct {
	ID          string          `json:"id"`
	CategoryID  string          `json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MaxPrice is the largest accepted product price. A full line of
// MaxLineQty units stays well inside the stored amount precision.
var MaxPrice = decimal.RequireFromString("999999.99")

// ValidPrice reports whether p is a positive amount of at most MaxPrice with
// at most two decimal places.
func ValidPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThanOrEqual(MaxPrice) && p.Equal(p.Round(2))
}
