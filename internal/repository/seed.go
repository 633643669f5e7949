package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/giftchoice/storefront/internal/domain"
)

type seedProduct struct {
	category string
	product  domain.Product
}

var seedCategories = []domain.Category{
	{Name: "Gift Boxes", Subcategories: []string{"hampers", "chocolate-boxes"}},
	{Name: "Flowers", Subcategories: []string{"bouquets", "roses"}},
	{Name: "Personalised", Subcategories: []string{"mugs", "frames"}},
	{Name: "Festive", Subcategories: []string{"diwali", "rakhi"}},
	{Name: "Accessories", Subcategories: []string{"wallets", "watches"}},
}

var seedProducts = []seedProduct{
	{"Gift Boxes", domain.Product{Name: "Birthday Chocolate Hamper", Description: "Assorted chocolates and a birthday card in a keepsake box", Price: 899, Badge: "Bestseller", Featured: true}},
	{"Gift Boxes", domain.Product{Name: "Mini Treat Box", Description: "Cookies, truffles and a scented candle", Price: 449, NewArrival: true}},
	{"Flowers", domain.Product{Name: "Red Rose Bouquet", Description: "Twelve fresh red roses for anniversaries and love notes", Price: 599,
		Sizes: []domain.Size{{Name: "6 Roses", Price: 399}, {Name: "12 Roses", Price: 599}, {Name: "24 Roses", Price: 1099}}}},
	{"Personalised", domain.Product{Name: "Photo Mug for Mom", Description: "Ceramic mug printed with your photo and name", Price: 349, Badge: "Personalised"}},
	{"Personalised", domain.Product{Name: "Couple Photo Frame", Description: "Wooden frame engraved for anniversary or wedding gifting", Price: 749, Featured: true}},
	{"Festive", domain.Product{Name: "Diwali Diya Hamper", Description: "Handpainted diyas with dry fruits and sweets", Price: 1299, Festival: true, Featured: true}},
	{"Festive", domain.Product{Name: "Rakhi Sweets Combo", Description: "Designer rakhi with a box of sweets for your brother", Price: 499, Festival: true}},
	{"Accessories", domain.Product{Name: "Leather Wallet for Men", Description: "Genuine leather wallet, a classic gift for dad or husband", Price: 1199}},
	{"Accessories", domain.Product{Name: "Gift Card", Description: "Let them choose, digital gift card delivered by email", Price: 1000,
		Sizes: []domain.Size{{Name: "₹500", Price: 500}, {Name: "₹1000", Price: 1000}, {Name: "₹2000", Price: 2000}}}},
	{"Accessories", domain.Product{Name: "Classic Analog Watch", Description: "Minimal steel watch for him", Price: 2499, Badge: "Premium"}},
}

var seedBanners = []domain.Promo{
	{MediaURL: "/images/banners/festive.jpg", Title: "Festive gifting is here", Link: "/shop?category=festive", DisplayOrder: 1},
	{MediaURL: "/images/banners/birthday.jpg", Title: "Birthday surprises under ₹999", Link: "/shop?category=gift-boxes", DisplayOrder: 2},
}

// SeedCatalog inserts a demo catalog when no products exist yet. It reports
// whether anything was inserted.
func (s *SQLStore) SeedCatalog(ctx context.Context) (bool, error) {
	var n int
	if err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	ts := now()
	categoryIDs := make(map[string]string)
	for _, c := range seedCategories {
		c := c
		existing, err := s.GetCategoryBySlug(ctx, domain.Slugify(c.Name))
		if err != nil {
			return false, err
		}
		if existing != nil {
			categoryIDs[c.Name] = existing.ID
			continue
		}
		c.ID = "cat_" + uuid.New().String()
		c.Slug = domain.Slugify(c.Name)
		c.CreatedAt = ts
		if err := s.CreateCategory(ctx, &c); err != nil {
			return false, errors.Wrapf(err, "failed to seed category %s", c.Name)
		}
		categoryIDs[c.Name] = c.ID
	}

	for i, sp := range seedProducts {
		p := sp.product
		p.ID = "prod_" + uuid.New().String()
		p.CategoryID = categoryIDs[sp.category]
		p.Images = []string{"/images/products/" + domain.Slugify(p.Name) + ".jpg"}
		p.InStock = true
		// Stagger creation times so "newest first" is stable.
		p.CreatedAt = ts.Add(-time.Duration(i) * time.Second)
		p.UpdatedAt = p.CreatedAt
		if err := s.CreateProduct(ctx, &p); err != nil {
			return false, errors.Wrapf(err, "failed to seed product %s", p.Name)
		}
	}

	for _, b := range seedBanners {
		b := b
		b.ID = "ban_" + uuid.New().String()
		b.Kind = domain.PromoKindBanner
		b.Active = true
		b.CreatedAt = ts
		if err := s.CreatePromo(ctx, &b); err != nil {
			return false, errors.Wrap(err, "failed to seed banner")
		}
	}
	return true, nil
}
