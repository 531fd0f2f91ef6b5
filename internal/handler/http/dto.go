package http

import (
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/pagination"
)

// Money values are rendered as strings with two decimal places.

type categoryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url,omitempty"`
}

type categoryDetailResponse struct {
	categoryResponse
	Products []productResponse `json:"products"`
}

type productResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url,omitempty"`
	Price       string            `json:"price"`
	Category    *categoryResponse `json:"category,omitempty"`
	InCart      *bool             `json:"in_cart,omitempty"`
}

type cartLineResponse struct {
	ID         string           `json:"id"`
	Product    *productResponse `json:"product,omitempty"`
	Qty        int              `json:"qty"`
	FinalPrice string           `json:"final_price"`
}

type cartResponse struct {
	ID               string             `json:"id"`
	Products         []cartLineResponse `json:"products"`
	NumberOfProducts int                `json:"number_of_products"`
	FinalPrice       string             `json:"final_price"`
	InOrder          bool               `json:"in_order"`
}

type customerResponse struct {
	ID      string `json:"id"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type orderResponse struct {
	ID         string        `json:"id"`
	Number     int           `json:"number,omitempty"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	Phone      string        `json:"phone"`
	Address    string        `json:"address"`
	Status     string        `json:"status"`
	BuyingType string        `json:"buying_type"`
	Comment    string        `json:"comment"`
	OrderDate  string        `json:"order_date"`
	CreatedAt  time.Time     `json:"created_at"`
	Cart       *cartResponse `json:"cart,omitempty"`
}

type sessionResponse struct {
	User        userResponse      `json:"user"`
	Customer    *customerResponse `json:"customer,omitempty"`
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
}

type checkoutResponse struct {
	Cart     cartResponse     `json:"cart"`
	Customer customerResponse `json:"customer"`
}

type profileResponse struct {
	User     userResponse     `json:"user"`
	Customer customerResponse `json:"customer"`
	Orders   []orderResponse  `json:"orders"`
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		Slug:     c.Slug,
		ImageURL: c.ImageURL,
	}
}

func toProductResponse(p *domain.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price.StringFixed(2),
	}
	if p.Category != nil {
		c := toCategoryResponse(p.Category)
		resp.Category = &c
	}
	return resp
}

func toCategoryDetailResponse(d *service.CategoryWithProducts) categoryDetailResponse {
	products := make([]productResponse, len(d.Products))
	for i := range d.Products {
		products[i] = toProductResponse(&d.Products[i])
	}
	return categoryDetailResponse{
		categoryResponse: toCategoryResponse(d.Category),
		Products:         products,
	}
}

func toCartResponse(c *domain.Cart) cartResponse {
	lines := make([]cartLineResponse, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = cartLineResponse{
			ID:         l.ID,
			Qty:        l.Qty,
			FinalPrice: l.FinalPrice.StringFixed(2),
		}
		if l.Product != nil {
			p := toProductResponse(l.Product)
			lines[i].Product = &p
		}
	}
	return cartResponse{
		ID:               c.ID,
		Products:         lines,
		NumberOfProducts: c.NumberOfProducts,
		FinalPrice:       c.FinalPrice.StringFixed(2),
		InOrder:          c.InOrder,
	}
}

func toCustomerResponse(c *domain.Customer) customerResponse {
	return customerResponse{
		ID:      c.ID,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func toOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		ID:         o.ID,
		Number:     o.Number,
		FirstName:  o.FirstName,
		LastName:   o.LastName,
		Phone:      o.Phone,
		Address:    o.Address,
		Status:     string(o.Status),
		BuyingType: string(o.BuyingType),
		Comment:    o.Comment,
		OrderDate:  o.OrderDate.Format(domain.OrderDateLayout),
		CreatedAt:  o.CreatedAt,
	}
	if o.Cart != nil {
		c := toCartResponse(o.Cart)
		resp.Cart = &c
	}
	return resp
}

func toSessionResponse(s *service.Session) sessionResponse {
	resp := sessionResponse{
		User:        toUserResponse(s.User),
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
	}
	if s.Customer != nil {
		c := toCustomerResponse(s.Customer)
		resp.Customer = &c
	}
	return resp
}

// mapPage converts the items of a listing page, keeping its metadata.
func mapPage[T, R any](page pagination.Result[T], convert func(*T) R) pagination.Result[R] {
	out := pagination.Result[R]{
		Data:       make([]R, len(page.Data)),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}
	for i := range page.Data {
		out.Data[i] = convert(&page.Data[i])
	}
	return out
}
