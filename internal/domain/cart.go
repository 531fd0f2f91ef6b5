package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line quantity bounds.
const (
	MinLineQty = 1
	MaxLineQty = 100
)

// Cart is a customer's collection of line items. An open cart (InOrder
// false) is mutable; once ordered it is kept only as history.
type Cart struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customer_id"`
	Lines            []CartProduct   `json:"products"`
	NumberOfProducts int             `json:"number_of_products"`
	FinalPrice       decimal.Decimal `json:"final_price"`
	InOrder          bool            `json:"in_order"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CartProduct is one product entry in a cart.
type CartProduct struct {
	ID         string          `json:"id"`
	CartID     string          `json:"cart_id"`
	ProductID  string          `json:"product_id"`
	CustomerID string          `json:"customer_id"`
	Product    *Product        `json:"product,omitempty"`
	Qty        int             `json:"qty"`
	FinalPrice decimal.Decimal `json:"final_price"`
}

// NewCart returns an empty open cart.
func NewCart(id, customerID string, now time.Time) *Cart {
	return &Cart{
		ID:         id,
		CustomerID: customerID,
		FinalPrice: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewCartProduct returns a line with quantity one, priced at the product's
// current price.
func NewCartProduct(id string, cart *Cart, customer *Customer, product *Product) *CartProduct {
	line := &CartProduct{
		ID:         id,
		CartID:     cart.ID,
		ProductID:  product.ID,
		CustomerID: customer.ID,
		Product:    product,
		Qty:        MinLineQty,
	}
	line.Reprice(product.Price)
	return line
}

// Reprice sets FinalPrice to Qty x price. It is not called when a product
// price changes later, so stored lines keep the price they were saved with.
func (l *CartProduct) Reprice(price decimal.Decimal) {
	l.FinalPrice = price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// ValidQty reports whether qty is an acceptable line quantity.
func ValidQty(qty int) bool {
	return qty >= MinLineQty && qty <= MaxLineQty
}

// MaxCartPrice is the largest cart total the store can hold.
var MaxCartPrice = decimal.RequireFromString("999999999999.99")

// Totals are a cart's derived aggregates.
type Totals struct {
	FinalPrice       decimal.Decimal
	NumberOfProducts int
}

// CalculateTotals sums line prices and quantities. No lines give zero.
func CalculateTotals(lines []CartProduct) Totals {
	t := Totals{FinalPrice: decimal.Zero}
	for _, l := range lines {
		t.FinalPrice = t.FinalPrice.Add(l.FinalPrice)
		t.NumberOfProducts += l.Qty
	}
	return t
}

// WithinLimit reports whether the total fits the stored cart amount.
func (t Totals) WithinLimit() bool {
	return t.FinalPrice.LessThanOrEqual(MaxCartPrice)
}

// Apply stores t on the cart.
func (c *Cart) Apply(t Totals, now time.Time) {
	c.FinalPrice = t.FinalPrice
	c.NumberOfProducts = t.NumberOfProducts
	c.UpdatedAt = now
}

// HasProduct reports whether productID is one of the cart's lines.
func (c *Cart) HasProduct(productID string) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return true
		}
	}
	return false
}
