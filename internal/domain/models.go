package domain

import (
	"encoding/json"
	"time"
)

// Size is a named price variant of a product.
type Size struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Product is a catalog entry. Category is the joined category name and is
// never persisted on the product row.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Images      []string  `json:"images"`
	CategoryID  string    `json:"category_id,omitempty"`
	Category    string    `json:"category,omitempty"`
	Subcategory string    `json:"subcategory,omitempty"`
	Sizes       []Size    `json:"sizes,omitempty"`
	Badge       string    `json:"badge,omitempty"`
	InStock     bool      `json:"in_stock"`
	Featured    bool      `json:"featured"`
	NewArrival  bool      `json:"new_arrival"`
	Festival    bool      `json:"festival"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromPrice is the price shown as "from": the first size, else the base price.
func (p *Product) FromPrice() float64 {
	if len(p.Sizes) > 0 {
		return p.Sizes[0].Price
	}
	return p.Price
}

// MarshalJSON adds the derived from_price.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		FromPrice float64 `json:"from_price"`
	}{product(p), p.FromPrice()})
}

// MinPrice is the cheapest variant price, else the base price.
func (p *Product) MinPrice() float64 {
	if len(p.Sizes) == 0 {
		return p.Price
	}
	min := p.Sizes[0].Price
	for _, s := range p.Sizes[1:] {
		if s.Price < min {
			min = s.Price
		}
	}
	return min
}

// SizePrice looks up a size variant by name.
func (p *Product) SizePrice(name string) (float64, bool) {
	for _, s := range p.Sizes {
		if s.Name == name {
			return s.Price, true
		}
	}
	return 0, false
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category    string
	Subcategory string
	Search      string
	Featured    *bool
	NewArrival  *bool
	Festival    *bool
	InStock     *bool
	Limit       int
	Offset      int
}

// Category groups products.
type Category struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Image         string    `json:"image,omitempty"`
	Subcategories []string  `json:"subcategories"`
	CreatedAt     time.Time `json:"created_at"`
}

// Review is a shopper's rating of a product.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session scopes a cart to a browser via an opaque cookie token.
type Session struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem is one line of a session cart. UnitPrice is the snapshot taken
// when the line was first added; Product carries live catalog data.
type CartItem struct {
	ID        string    `json:"id"`
	SessionID string    `json:"-"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	SizeName  string    `json:"size,omitempty"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cart is the derived view of a session's line items.
type Cart struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  float64    `json:"subtotal"`
}

// Order is a placed order. Items are snapshots and never follow later
// catalog edits.
type Order struct {
	ID            string      `json:"id"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	CustomerEmail string      `json:"customer_email,omitempty"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is one snapshot line of an order.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	SizeName    string  `json:"size,omitempty"`
}

// Message is a contact-form submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Body      string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Promo is a homepage banner or a social media post.
type Promo struct {
	ID           string    `json:"id"`
	Kind         PromoKind `json:"-"`
	MediaURL     string    `json:"media_url"`
	Title        string    `json:"title,omitempty"`
	Link         string    `json:"link,omitempty"`
	Platform     string    `json:"platform,omitempty"`
	Active       bool      `json:"active"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Products       int                 `json:"products"`
	Categories     int                 `json:"categories"`
	Orders         map[OrderStatus]int `json:"orders"`
	UnreadMessages int                 `json:"unread_messages"`
	Revenue        float64             `json:"revenue"`
}
