package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/giftchoice/storefront/internal/domain"
)

// CreateCategory stores a category. The slug is derived from the name when
// not given and must be unique.
func (s *Service) CreateCategory(ctx context.Context, req *domain.CategoryRequest) (*domain.Category, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, domain.Required("name")
	}
	name := strings.TrimSpace(*req.Name)

	slug := domain.Slugify(name)
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slug = domain.Slugify(*req.Slug)
	}
	if slug == "" {
		return nil, domain.Invalid("slug", "slug must contain letters or digits")
	}
	if err := s.ensureSlugFree(ctx, slug, ""); err != nil {
		return nil, err
	}

	c := &domain.Category{
		ID:            newID("cat_"),
		Name:          name,
		Slug:          slug,
		Subcategories: []string{},
		CreatedAt:     timeNow(),
	}
	if req.Image != nil {
		c.Image = *req.Image
	}
	if req.Subcategories != nil {
		c.Subcategories = *req.Subcategories
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, errors.Wrap(err, "failed to create category")
	}
	return c, nil
}

func (s *Service) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return errors.Wrap(err, "failed to check slug")
	}
	if existing != nil && existing.ID != selfID {
		return domain.Invalid("slug", "slug %s is already used", slug)
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	return categories, nil
}

// GetCategory looks a category up by id, then by slug.
func (s *Service) GetCategory(ctx context.Context, idOrSlug string) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, idOrSlug)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get category")
	}
	if c == nil {
		c, err = s.store.GetCategoryBySlug(ctx, idOrSlug)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get category")
		}
	}
	if c == nil {
		return nil, domain.NotFound("category", idOrSlug)
	}
	return c, nil
}

// UpdateCategory applies a partial update. Renaming without a slug
// re-derives the slug from the new name.
func (s *Service) UpdateCategory(ctx context.Context, id string, req *domain.CategoryRequest) (*domain.Category, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.Invalid("name", "name must not be empty")
		}
		req.Name = &name
		if req.Slug == nil {
			req.Slug = &name
		}
	}
	if req.Slug != nil {
		slug := domain.Slugify(*req.Slug)
		if slug == "" {
			return nil, domain.Invalid("slug", "slug must contain letters or digits")
		}
		if err := s.ensureSlugFree(ctx, slug, id); err != nil {
			return nil, err
		}
		req.Slug = &slug
	}

	ok, err := s.store.UpdateCategory(ctx, id, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update category")
	}
	if !ok {
		return nil, domain.NotFound("category", id)
	}
	// Product documents embed the category name.
	if req.Name != nil {
		s.flushProducts(ctx)
	}
	return s.GetCategory(ctx, id)
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	ok, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete category")
	}
	if !ok {
		return domain.NotFound("category", id)
	}
	s.flushProducts(ctx)
	return nil
}
