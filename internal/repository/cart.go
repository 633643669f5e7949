package repository

import (
	"context"
	"database/sql"

	"github.com/giftchoice/storefront/internal/domain"
)

// CreateSession creates a new session.
func (s *SQLStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO sessions (id, expires_at, created_at) VALUES (?, ?, ?)`,
		session.ID, session.ExpiresAt, session.CreatedAt)
	return err
}

// GetSession retrieves a session by ID.
func (s *SQLStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := s.queryRow(ctx, s.db,
		`SELECT id, expires_at, created_at FROM sessions WHERE id = ?`, id).
		Scan(&session.ID, &session.ExpiresAt, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetOrCreateSession returns the stored session with session.ID, creating it
// from session when absent.
func (s *SQLStore) GetOrCreateSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	existing, err := s.GetSession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if err := s.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpsertCartItem inserts a line or, when the (session, product, size) line
// already exists, adds the quantity to it in the same statement. The stored
// unit price of an existing line is kept.
func (s *SQLStore) UpsertCartItem(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO cart_items (id, session_id, product_id, quantity, size_name, unit_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, product_id, size_name)
		DO UPDATE SET quantity = cart_items.quantity + excluded.quantity, updated_at = excluded.updated_at`,
		item.ID, item.SessionID, item.ProductID, item.Quantity, item.SizeName, item.UnitPrice, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var got domain.CartItem
	err = s.queryRow(ctx, s.db,
		`SELECT id, session_id, product_id, quantity, size_name, unit_price, created_at, updated_at
		FROM cart_items WHERE session_id = ? AND product_id = ? AND size_name = ?`,
		item.SessionID, item.ProductID, item.SizeName).
		Scan(&got.ID, &got.SessionID, &got.ProductID, &got.Quantity, &got.SizeName, &got.UnitPrice, &got.CreatedAt, &got.UpdatedAt)
	if err != nil {
		return nil, err
	}
	got.LineTotal = domain.LineTotal(got.UnitPrice, got.Quantity).InexactFloat64()
	return &got, nil
}

// GetCartItems lists a session's lines joined with live product data.
func (s *SQLStore) GetCartItems(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT ci.id, ci.session_id, ci.product_id, ci.quantity, ci.size_name, ci.unit_price, ci.created_at, ci.updated_at,
			`+productColumns+`
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE ci.session_id = ?
		ORDER BY ci.created_at ASC, ci.id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var it domain.CartItem
		var r productRow
		dest := append([]interface{}{
			&it.ID, &it.SessionID, &it.ProductID, &it.Quantity, &it.SizeName, &it.UnitPrice, &it.CreatedAt, &it.UpdatedAt,
		}, r.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		p, err := r.product()
		if err != nil {
			return nil, err
		}
		it.Product = p
		it.LineTotal = domain.LineTotal(it.UnitPrice, it.Quantity).InexactFloat64()
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateCartItemQuantity sets the quantity of a line owned by sessionID.
func (s *SQLStore) UpdateCartItemQuantity(ctx context.Context, sessionID, itemID string, quantity int) (bool, error) {
	res, err := s.exec(ctx, s.db,
		`UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ? AND session_id = ?`,
		quantity, now(), itemID, sessionID)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

// DeleteCartItem deletes a line owned by sessionID. Lines of other sessions
// are never touched.
func (s *SQLStore) DeleteCartItem(ctx context.Context, sessionID, itemID string) (bool, error) {
	res, err := s.exec(ctx, s.db, `DELETE FROM cart_items WHERE id = ? AND session_id = ?`, itemID, sessionID)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

// ClearCart deletes every line of a session.
func (s *SQLStore) ClearCart(ctx context.Context, sessionID string) (int64, error) {
	res, err := s.exec(ctx, s.db, `DELETE FROM cart_items WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
