package domain

// ProductRequest creates or partially updates a product. Nil fields are left
// untouched on update.
type ProductRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Images      *[]string `json:"images"`
	CategoryID  *string   `json:"category_id"`
	Subcategory *string   `json:"subcategory"`
	Sizes       *[]Size   `json:"sizes"`
	Badge       *string   `json:"badge"`
	InStock     *bool     `json:"in_stock"`
	Featured    *bool     `json:"featured"`
	NewArrival  *bool     `json:"new_arrival"`
	Festival    *bool     `json:"festival"`
}

// CategoryRequest creates or partially updates a category.
type CategoryRequest struct {
	Name          *string   `json:"name"`
	Slug          *string   `json:"slug"`
	Image         *string   `json:"image"`
	Subcategories *[]string `json:"subcategories"`
}

// ReviewRequest submits a product review.
type ReviewRequest struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CartAddRequest adds a product to the session cart.
type CartAddRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

// CartUpdateRequest sets a line quantity; zero or less removes the line.
// Quantity is required.
type CartUpdateRequest struct {
	Quantity *int `json:"quantity"`
}

// OrderLineRequest is one requested order line.
type OrderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

// Customer identifies who placed an order.
type Customer struct {
	Name  string `json:"customer_name"`
	Phone string `json:"customer_phone"`
	Email string `json:"customer_email"`
}

// OrderCreateRequest places an order. Total is advisory; the stored total is
// always recomputed from the snapshot lines.
type OrderCreateRequest struct {
	Customer
	Items []OrderLineRequest `json:"items"`
	Total *float64           `json:"total"`
}

// OrderUpdateRequest partially updates an order.
type OrderUpdateRequest struct {
	Status        *OrderStatus `json:"status"`
	CustomerName  *string      `json:"customer_name"`
	CustomerPhone *string      `json:"customer_phone"`
	CustomerEmail *string      `json:"customer_email"`
}

// CheckoutRequest turns the session cart into an order.
type CheckoutRequest struct {
	Customer
}

// CheckoutResult is the order plus the messaging handoff.
type CheckoutResult struct {
	Order       *Order `json:"order"`
	Summary     string `json:"summary"`
	WhatsAppURL string `json:"whatsapp_url"`
}

// MessageRequest creates or partially updates a contact message.
type MessageRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Body  *string `json:"message"`
	Read  *bool   `json:"read"`
}

// PromoRequest creates or partially updates a banner or social post.
type PromoRequest struct {
	MediaURL     *string `json:"media_url"`
	Title        *string `json:"title"`
	Link         *string `json:"link"`
	Platform     *string `json:"platform"`
	Active       *bool   `json:"active"`
	DisplayOrder *int    `json:"display_order"`
}
