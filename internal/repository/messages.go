package repository

import (
	"context"
	"database/sql"

	"github.com/giftchoice/storefront/internal/domain"
)

const messageColumns = `id, name, email, phone, body, is_read, created_at`

// CreateMessage stores a contact message.
func (s *SQLStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, nullString(msg.Phone), msg.Body, boolInt(msg.Read), msg.CreatedAt)
	return err
}

// GetMessage retrieves a contact message by ID.
func (s *SQLStore) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	msg, err := scanMessage(s.queryRow(ctx, s.db, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages lists contact messages newest first.
func (s *SQLStore) ListMessages(ctx context.Context, read *bool) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	var args []interface{}
	if read != nil {
		query += ` WHERE is_read = ?`
		args = append(args, boolInt(*read))
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

// UpdateMessage writes the supplied fields.
func (s *SQLStore) UpdateMessage(ctx context.Context, id string, req *domain.MessageRequest) (bool, error) {
	b := &updateBuilder{}
	if req.Name != nil {
		b.set("name", *req.Name)
	}
	if req.Email != nil {
		b.set("email", *req.Email)
	}
	if req.Phone != nil {
		b.set("phone", nullString(*req.Phone))
	}
	if req.Body != nil {
		b.set("body", *req.Body)
	}
	if req.Read != nil {
		b.set("is_read", boolInt(*req.Read))
	}
	return s.applyUpdate(ctx, b, "messages", "id = ?", id)
}

// DeleteMessage deletes a contact message.
func (s *SQLStore) DeleteMessage(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx, s.db, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	var phone sql.NullString
	var read int
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &phone, &m.Body, &read, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Phone = phone.String
	m.Read = read != 0
	return &m, nil
}
