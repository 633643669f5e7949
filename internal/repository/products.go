package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/giftchoice/storefront/internal/domain"
)

const productColumns = `p.id, p.name, p.description, p.price, p.images, p.category_id, c.name, p.subcategory,
	p.sizes, p.badge, p.in_stock, p.featured, p.new_arrival, p.festival, p.created_at, p.updated_at`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

// productRow holds the nullable columns of a product scan.
type productRow struct {
	p                                       domain.Product
	images, categoryID, category            sql.NullString
	subcategory, sizes, badge               sql.NullString
	inStock, featured, newArrival, festival int
}

func (r *productRow) dest() []interface{} {
	return []interface{}{
		&r.p.ID, &r.p.Name, &r.p.Description, &r.p.Price, &r.images, &r.categoryID, &r.category, &r.subcategory,
		&r.sizes, &r.badge, &r.inStock, &r.featured, &r.newArrival, &r.festival, &r.p.CreatedAt, &r.p.UpdatedAt,
	}
}

func (r *productRow) product() (*domain.Product, error) {
	p := r.p
	p.CategoryID = r.categoryID.String
	p.Category = r.category.String
	p.Subcategory = r.subcategory.String
	p.Badge = r.badge.String
	p.InStock = r.inStock != 0
	p.Featured = r.featured != 0
	p.NewArrival = r.newArrival != 0
	p.Festival = r.festival != 0
	if err := fromJSON(r.images, &p.Images); err != nil {
		return nil, err
	}
	p.Images = nonNilStrings(p.Images)
	if err := fromJSON(r.sizes, &p.Sizes); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct creates a new product.
func (s *SQLStore) CreateProduct(ctx context.Context, p *domain.Product) error {
	images, err := toJSON(nonNilStrings(p.Images))
	if err != nil {
		return err
	}
	var sizes sql.NullString
	if len(p.Sizes) > 0 {
		raw, err := toJSON(p.Sizes)
		if err != nil {
			return err
		}
		sizes = sql.NullString{String: raw, Valid: true}
	}
	_, err = s.exec(ctx, s.db,
		`INSERT INTO products (id, name, description, price, images, category_id, subcategory, sizes, badge,
			in_stock, featured, new_arrival, festival, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, images, nullString(p.CategoryID), nullString(p.Subcategory), sizes,
		nullString(p.Badge), boolInt(p.InStock), boolInt(p.Featured), boolInt(p.NewArrival), boolInt(p.Festival),
		p.CreatedAt, p.UpdatedAt)
	return err
}

// GetProduct retrieves a product by ID with its category name.
func (s *SQLStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var r productRow
	err := s.queryRow(ctx, s.db, `SELECT `+productColumns+productFrom+` WHERE p.id = ?`, id).Scan(r.dest()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.product()
}

// ListProducts lists products newest first.
func (s *SQLStore) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + productFrom + ` WHERE 1 = 1`
	var args []interface{}

	if filter.Category != "" {
		query += ` AND (p.category_id = ? OR c.slug = ? OR LOWER(c.name) = ?)`
		args = append(args, filter.Category, filter.Category, strings.ToLower(filter.Category))
	}
	if filter.Subcategory != "" {
		query += ` AND LOWER(p.subcategory) = ?`
		args = append(args, strings.ToLower(filter.Subcategory))
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query += ` AND (LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)`
		args = append(args, like, like)
	}
	flags := []struct {
		column string
		value  *bool
	}{
		{"p.featured", filter.Featured},
		{"p.new_arrival", filter.NewArrival},
		{"p.festival", filter.Festival},
		{"p.in_stock", filter.InStock},
	}
	for _, f := range flags {
		if f.value != nil {
			query += ` AND ` + f.column + ` = ?`
			args = append(args, boolInt(*f.value))
		}
	}

	query += ` ORDER BY p.created_at DESC, p.id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var r productRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		p, err := r.product()
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// UpdateProduct writes the supplied fields and bumps updated_at.
func (s *SQLStore) UpdateProduct(ctx context.Context, id string, req *domain.ProductRequest) (bool, error) {
	b := &updateBuilder{}
	if req.Name != nil {
		b.set("name", *req.Name)
	}
	if req.Description != nil {
		b.set("description", *req.Description)
	}
	if req.Price != nil {
		b.set("price", *req.Price)
	}
	if req.Images != nil {
		images, err := toJSON(nonNilStrings(*req.Images))
		if err != nil {
			return false, err
		}
		b.set("images", images)
	}
	if req.CategoryID != nil {
		b.set("category_id", nullString(*req.CategoryID))
	}
	if req.Subcategory != nil {
		b.set("subcategory", nullString(*req.Subcategory))
	}
	if req.Sizes != nil {
		var sizes sql.NullString
		if len(*req.Sizes) > 0 {
			raw, err := toJSON(*req.Sizes)
			if err != nil {
				return false, err
			}
			sizes = sql.NullString{String: raw, Valid: true}
		}
		b.set("sizes", sizes)
	}
	if req.Badge != nil {
		b.set("badge", nullString(*req.Badge))
	}
	if req.InStock != nil {
		b.set("in_stock", boolInt(*req.InStock))
	}
	if req.Featured != nil {
		b.set("featured", boolInt(*req.Featured))
	}
	if req.NewArrival != nil {
		b.set("new_arrival", boolInt(*req.NewArrival))
	}
	if req.Festival != nil {
		b.set("festival", boolInt(*req.Festival))
	}
	if !b.empty() {
		b.set("updated_at", now())
	}
	return s.applyUpdate(ctx, b, "products", "id = ?", id)
}

// DeleteProduct deletes a product. Cart lines and reviews go with it; order
// lines are snapshots and stay.
func (s *SQLStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx, s.db, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}
