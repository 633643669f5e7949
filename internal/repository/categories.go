package repository

import (
	"context"
	"database/sql"

	"github.com/giftchoice/storefront/internal/domain"
)

const categoryColumns = `id, name, slug, image, subcategories, created_at`

// CreateCategory creates a new category.
func (s *SQLStore) CreateCategory(ctx context.Context, category *domain.Category) error {
	subs, err := toJSON(nonNilStrings(category.Subcategories))
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, s.db,
		`INSERT INTO categories (id, name, slug, image, subcategories, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Slug, nullString(category.Image), subs, category.CreatedAt)
	return err
}

// GetCategory retrieves a category by ID.
func (s *SQLStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.getCategory(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
}

// GetCategoryBySlug retrieves a category by slug.
func (s *SQLStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.getCategory(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
}

func (s *SQLStore) getCategory(ctx context.Context, query string, arg string) (*domain.Category, error) {
	category, err := scanCategory(s.queryRow(ctx, s.db, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lists all categories by name.
func (s *SQLStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

// UpdateCategory writes the supplied fields.
func (s *SQLStore) UpdateCategory(ctx context.Context, id string, req *domain.CategoryRequest) (bool, error) {
	b := &updateBuilder{}
	if req.Name != nil {
		b.set("name", *req.Name)
	}
	if req.Slug != nil {
		b.set("slug", *req.Slug)
	}
	if req.Image != nil {
		b.set("image", nullString(*req.Image))
	}
	if req.Subcategories != nil {
		subs, err := toJSON(nonNilStrings(*req.Subcategories))
		if err != nil {
			return false, err
		}
		b.set("subcategories", subs)
	}
	return s.applyUpdate(ctx, b, "categories", "id = ?", id)
}

// DeleteCategory deletes a category. Products keep existing with no category.
func (s *SQLStore) DeleteCategory(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx, s.db, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var c domain.Category
	var image, subs sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &image, &subs, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Image = image.String
	if err := fromJSON(subs, &c.Subcategories); err != nil {
		return nil, err
	}
	c.Subcategories = nonNilStrings(c.Subcategories)
	return &c, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
