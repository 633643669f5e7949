package repository

import (
	"context"
	"database/sql"

	"github.com/giftchoice/storefront/internal/domain"
	"github.com/pkg/errors"
)

const promoColumns = `id, media_url, title, link, platform, active, display_order, created_at`

// promoTable maps a promo kind to its table. Table names never come from
// user input.
func promoTable(kind domain.PromoKind) (string, error) {
	switch kind {
	case domain.PromoKindBanner:
		return "banners", nil
	case domain.PromoKindSocial:
		return "social_posts", nil
	default:
		return "", errors.Errorf("unknown promo kind %q", kind)
	}
}

// CreatePromo stores a banner or social post.
func (s *SQLStore) CreatePromo(ctx context.Context, promo *domain.Promo) error {
	table, err := promoTable(promo.Kind)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, s.db,
		`INSERT INTO `+table+` (`+promoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		promo.ID, promo.MediaURL, nullString(promo.Title), nullString(promo.Link), nullString(promo.Platform),
		boolInt(promo.Active), promo.DisplayOrder, promo.CreatedAt)
	return err
}

// GetPromo retrieves a banner or social post by ID.
func (s *SQLStore) GetPromo(ctx context.Context, kind domain.PromoKind, id string) (*domain.Promo, error) {
	table, err := promoTable(kind)
	if err != nil {
		return nil, err
	}
	promo, err := scanPromo(s.queryRow(ctx, s.db, `SELECT `+promoColumns+` FROM `+table+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	promo.Kind = kind
	return promo, nil
}

// ListPromos lists by display order, newest first among equal orders.
func (s *SQLStore) ListPromos(ctx context.Context, kind domain.PromoKind, active *bool) ([]domain.Promo, error) {
	table, err := promoTable(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + promoColumns + ` FROM ` + table
	var args []interface{}
	if active != nil {
		query += ` WHERE active = ?`
		args = append(args, boolInt(*active))
	}
	query += ` ORDER BY display_order ASC, created_at DESC, id ASC`

	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	promos := []domain.Promo{}
	for rows.Next() {
		promo, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		promo.Kind = kind
		promos = append(promos, *promo)
	}
	return promos, rows.Err()
}

// UpdatePromo writes the supplied fields.
func (s *SQLStore) UpdatePromo(ctx context.Context, kind domain.PromoKind, id string, req *domain.PromoRequest) (bool, error) {
	table, err := promoTable(kind)
	if err != nil {
		return false, err
	}
	b := &updateBuilder{}
	if req.MediaURL != nil {
		b.set("media_url", *req.MediaURL)
	}
	if req.Title != nil {
		b.set("title", nullString(*req.Title))
	}
	if req.Link != nil {
		b.set("link", nullString(*req.Link))
	}
	if req.Platform != nil {
		b.set("platform", nullString(*req.Platform))
	}
	if req.Active != nil {
		b.set("active", boolInt(*req.Active))
	}
	if req.DisplayOrder != nil {
		b.set("display_order", *req.DisplayOrder)
	}
	return s.applyUpdate(ctx, b, table, "id = ?", id)
}

// DeletePromo deletes a banner or social post.
func (s *SQLStore) DeletePromo(ctx context.Context, kind domain.PromoKind, id string) (bool, error) {
	table, err := promoTable(kind)
	if err != nil {
		return false, err
	}
	res, err := s.exec(ctx, s.db, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

func scanPromo(row rowScanner) (*domain.Promo, error) {
	var p domain.Promo
	var title, link, platform sql.NullString
	var active int
	if err := row.Scan(&p.ID, &p.MediaURL, &title, &link, &platform, &active, &p.DisplayOrder, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Title = title.String
	p.Link = link.String
	p.Platform = platform.String
	p.Active = active != 0
	return &p, nil
}
