package repository

import (
	"context"
	"database/sql"

	"github.com/giftchoice/storefront/internal/domain"
)

// Stats summarises the catalog, orders and inbox for the admin dashboard.
func (s *SQLStore) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{Orders: make(map[domain.OrderStatus]int)}
	for _, st := range domain.OrderStatuses {
		stats.Orders[st] = 0
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM products`, &stats.Products},
		{`SELECT COUNT(*) FROM categories`, &stats.Categories},
		{`SELECT COUNT(*) FROM messages WHERE is_read = 0`, &stats.UnreadMessages},
	}
	for _, c := range counts {
		if err := s.queryRow(ctx, s.db, c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	rows, err := s.query(ctx, s.db, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.Orders[domain.OrderStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	var revenue sql.NullFloat64
	if err := s.queryRow(ctx, s.db,
		`SELECT SUM(total) FROM orders WHERE status <> ?`, domain.OrderStatusCancelled).Scan(&revenue); err != nil {
		return nil, err
	}
	stats.Revenue = revenue.Float64
	return stats, nil
}
