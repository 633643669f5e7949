package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/logging"
)

func (s *Service) CreateProduct(ctx context.Context, req *domain.ProductRequest) (*domain.Product, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, domain.Required("name")
	}
	if req.Price == nil {
		return nil, domain.Required("price")
	}
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	now := timeNow()
	p := &domain.Product{
		ID:        newID("prod_"),
		Name:      strings.TrimSpace(*req.Name),
		Price:     *req.Price,
		InStock:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Images != nil {
		p.Images = *req.Images
	}
	if req.CategoryID != nil {
		p.CategoryID = *req.CategoryID
	}
	if req.Subcategory != nil {
		p.Subcategory = *req.Subcategory
	}
	if req.Sizes != nil {
		p.Sizes = *req.Sizes
	}
	if req.Badge != nil {
		p.Badge = *req.Badge
	}
	if req.InStock != nil {
		p.InStock = *req.InStock
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	if req.NewArrival != nil {
		p.NewArrival = *req.NewArrival
	}
	if req.Festival != nil {
		p.Festival = *req.Festival
	}

	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *Service) validateProduct(ctx context.Context, req *domain.ProductRequest) error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return domain.Invalid("name", "name must not be empty")
	}
	if req.Price != nil && *req.Price < 0 {
		return domain.Invalid("price", "price must not be negative")
	}
	if req.Sizes != nil {
		seen := make(map[string]bool)
		for _, size := range *req.Sizes {
			if strings.TrimSpace(size.Name) == "" {
				return domain.Invalid("sizes", "size name is required")
			}
			if size.Price < 0 {
				return domain.Invalid("sizes", "size %s has a negative price", size.Name)
			}
			if seen[size.Name] {
				return domain.Invalid("sizes", "duplicate size %s", size.Name)
			}
			seen[size.Name] = true
		}
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		category, err := s.store.GetCategory(ctx, *req.CategoryID)
		if err != nil {
			return errors.Wrap(err, "failed to get category")
		}
		if category == nil {
			return domain.Invalid("category_id", "category %s does not exist", *req.CategoryID)
		}
	}
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, _, err := s.GetProductCached(ctx, id)
	return p, err
}

// GetProductCached reads through the product cache and reports whether the
// cache served the product. Cache failures only cost a database round trip.
func (s *Service) GetProductCached(ctx context.Context, id string) (*domain.Product, bool, error) {
	log := logging.FromContext(ctx)
	if cached, err := s.cache.Get(ctx, id); err != nil {
		log.WithError(err).Warn("product cache read failed")
	} else if cached != nil {
		return cached, true, nil
	}

	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get product")
	}
	if p == nil {
		return nil, false, domain.NotFound("product", id)
	}
	if err := s.cache.Set(ctx, p); err != nil {
		log.WithError(err).Warn("product cache write failed")
	}
	return p, false, nil
}

func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, domain.Invalid("limit", "limit and offset must not be negative")
	}
	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	return products, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req *domain.ProductRequest) (*domain.Product, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	ok, err := s.store.UpdateProduct(ctx, id, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update product")
	}
	if !ok {
		return nil, domain.NotFound("product", id)
	}
	s.evict(ctx, id)
	return s.GetProduct(ctx, id)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	ok, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete product")
	}
	if !ok {
		return domain.NotFound("product", id)
	}
	s.evict(ctx, id)
	return nil
}

func (s *Service) evict(ctx context.Context, ids ...string) {
	if err := s.cache.Delete(ctx, ids...); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("product cache eviction failed")
	}
}

func (s *Service) flushProducts(ctx context.Context) {
	if err := s.cache.Flush(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("product cache flush failed")
	}
}
