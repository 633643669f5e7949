package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/giftchoice/storefront/internal/domain"
)

var promoPrefix = map[domain.PromoKind]string{
	domain.PromoKindBanner: "ban_",
	domain.PromoKindSocial: "post_",
}

func promoName(kind domain.PromoKind) string {
	if kind == domain.PromoKindSocial {
		return "social post"
	}
	return "banner"
}

// CreatePromo stores a banner or social post. New entries are active unless
// the request says otherwise.
func (s *Service) CreatePromo(ctx context.Context, kind domain.PromoKind, req *domain.PromoRequest) (*domain.Promo, error) {
	if req.MediaURL == nil || strings.TrimSpace(*req.MediaURL) == "" {
		return nil, domain.Required("media_url")
	}
	promo := &domain.Promo{
		ID:        newID(promoPrefix[kind]),
		Kind:      kind,
		MediaURL:  strings.TrimSpace(*req.MediaURL),
		Active:    true,
		CreatedAt: timeNow(),
	}
	if req.Title != nil {
		promo.Title = *req.Title
	}
	if req.Link != nil {
		promo.Link = *req.Link
	}
	if req.Platform != nil {
		promo.Platform = *req.Platform
	}
	if req.Active != nil {
		promo.Active = *req.Active
	}
	if req.DisplayOrder != nil {
		promo.DisplayOrder = *req.DisplayOrder
	}
	if err := s.store.CreatePromo(ctx, promo); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", promoName(kind))
	}
	return promo, nil
}

func (s *Service) GetPromo(ctx context.Context, kind domain.PromoKind, id string) (*domain.Promo, error) {
	promo, err := s.store.GetPromo(ctx, kind, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", promoName(kind))
	}
	if promo == nil {
		return nil, domain.NotFound(promoName(kind), id)
	}
	return promo, nil
}

func (s *Service) ListPromos(ctx context.Context, kind domain.PromoKind, active *bool) ([]domain.Promo, error) {
	promos, err := s.store.ListPromos(ctx, kind, active)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %ss", promoName(kind))
	}
	return promos, nil
}

func (s *Service) UpdatePromo(ctx context.Context, kind domain.PromoKind, id string, req *domain.PromoRequest) (*domain.Promo, error) {
	if req.MediaURL != nil && strings.TrimSpace(*req.MediaURL) == "" {
		return nil, domain.Invalid("media_url", "media_url must not be empty")
	}
	ok, err := s.store.UpdatePromo(ctx, kind, id, req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update %s", promoName(kind))
	}
	if !ok {
		return nil, domain.NotFound(promoName(kind), id)
	}
	return s.GetPromo(ctx, kind, id)
}

func (s *Service) DeletePromo(ctx context.Context, kind domain.PromoKind, id string) error {
	ok, err := s.store.DeletePromo(ctx, kind, id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete %s", promoName(kind))
	}
	if !ok {
		return domain.NotFound(promoName(kind), id)
	}
	return nil
}
