package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/giftchoice/storefront/internal/domain"
	"github.com/pkg/errors"
)

const orderColumns = `id, customer_name, customer_phone, customer_email, total, status, created_at, updated_at`

// CreateOrder inserts the order and all of its lines in one transaction.
func (s *SQLStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.insertOrder(ctx, tx, order)
	})
}

// CheckoutCart inserts the order and removes the ordered cart lines in one
// transaction. Only lines still matching their snapshot (id and quantity)
// are removed, so a line added or changed meanwhile stays in the cart.
func (s *SQLStore) CheckoutCart(ctx context.Context, sessionID string, order *domain.Order, lines []domain.CartItem) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.insertOrder(ctx, tx, order); err != nil {
			return err
		}
		for _, line := range lines {
			_, err := s.exec(ctx, tx,
				`DELETE FROM cart_items WHERE id = ? AND session_id = ? AND quantity = ?`,
				line.ID, sessionID, line.Quantity)
			if err != nil {
				return errors.Wrapf(err, "failed to remove cart line %s", line.ID)
			}
		}
		return nil
	})
}

func (s *SQLStore) insertOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	_, err := s.exec(ctx, tx,
		`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.CustomerName, order.CustomerPhone, nullString(order.CustomerEmail), order.Total,
		order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to insert order")
	}
	for i, it := range order.Items {
		_, err := s.exec(ctx, tx,
			`INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, size_name, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, order.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, nullString(it.SizeName), i)
		if err != nil {
			return errors.Wrapf(err, "failed to insert order item %d", i)
		}
	}
	return nil
}

// GetOrder retrieves an order with its lines.
func (s *SQLStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(s.queryRow(ctx, s.db, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items, err := s.orderItems(ctx, `WHERE oi.order_id = ?`, id)
	if err != nil {
		return nil, err
	}
	order.Items = nonNilItems(items[order.ID])
	return order, nil
}

// ListOrders lists orders newest first, optionally filtered by status.
func (s *SQLStore) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	where := ""
	var args []interface{}
	if status != "" {
		where = ` WHERE status = ?`
		args = append(args, status)
	}

	rows, err := s.query(ctx, s.db, `SELECT `+orderColumns+` FROM orders`+where+` ORDER BY created_at DESC, id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	itemWhere := ""
	if status != "" {
		itemWhere = `WHERE o.status = ?`
	}
	items, err := s.orderItems(ctx, itemWhere, args...)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = nonNilItems(items[orders[i].ID])
	}
	return orders, nil
}

// orderItems loads lines grouped by order id.
func (s *SQLStore) orderItems(ctx context.Context, where string, args ...interface{}) (map[string][]domain.OrderItem, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.product_name, oi.quantity, oi.unit_price, oi.size_name
		FROM order_items oi JOIN orders o ON o.id = oi.order_id `+where+`
		ORDER BY oi.order_id, oi.position ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var it domain.OrderItem
		var size sql.NullString
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &size); err != nil {
			return nil, err
		}
		it.SizeName = size.String
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}

// UpdateOrder writes the supplied fields. Lines are immutable.
func (s *SQLStore) UpdateOrder(ctx context.Context, id string, req *domain.OrderUpdateRequest) (bool, error) {
	b := &updateBuilder{}
	if req.Status != nil {
		b.set("status", string(*req.Status))
	}
	if req.CustomerName != nil {
		b.set("customer_name", strings.TrimSpace(*req.CustomerName))
	}
	if req.CustomerPhone != nil {
		b.set("customer_phone", strings.TrimSpace(*req.CustomerPhone))
	}
	if req.CustomerEmail != nil {
		b.set("customer_email", nullString(strings.TrimSpace(*req.CustomerEmail)))
	}
	if !b.empty() {
		b.set("updated_at", now())
	}
	return s.applyUpdate(ctx, b, "orders", "id = ?", id)
}

// DeleteOrder deletes an order and its lines.
func (s *SQLStore) DeleteOrder(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
			return err
		}
		res, err := s.exec(ctx, tx, `DELETE FROM orders WHERE id = ?`, id)
		if err != nil {
			return err
		}
		deleted, err = rowsAffected(res)
		return err
	})
	return deleted, err
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var email sql.NullString
	var status string
	if err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &email, &o.Total, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.CustomerEmail = email.String
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func nonNilItems(v []domain.OrderItem) []domain.OrderItem {
	if v == nil {
		return []domain.OrderItem{}
	}
	return v
}
