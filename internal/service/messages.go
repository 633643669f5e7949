package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/giftchoice/storefront/internal/domain"
)

func (s *Service) CreateMessage(ctx context.Context, req *domain.MessageRequest) (*domain.Message, error) {
	msg := &domain.Message{ID: newID("msg_"), CreatedAt: timeNow()}
	if req.Name != nil {
		msg.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		msg.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		msg.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Body != nil {
		msg.Body = strings.TrimSpace(*req.Body)
	}
	switch {
	case msg.Name == "":
		return nil, domain.Required("name")
	case msg.Email == "":
		return nil, domain.Required("email")
	case !strings.Contains(msg.Email, "@"):
		return nil, domain.Invalid("email", "email is not a valid address")
	case msg.Body == "":
		return nil, domain.Required("message")
	}

	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "failed to create message")
	}
	return msg, nil
}

func (s *Service) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	msg, err := s.store.GetMessage(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get message")
	}
	if msg == nil {
		return nil, domain.NotFound("message", id)
	}
	return msg, nil
}

func (s *Service) ListMessages(ctx context.Context, read *bool) ([]domain.Message, error) {
	messages, err := s.store.ListMessages(ctx, read)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}
	return messages, nil
}

func (s *Service) UpdateMessage(ctx context.Context, id string, req *domain.MessageRequest) (*domain.Message, error) {
	ok, err := s.store.UpdateMessage(ctx, id, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update message")
	}
	if !ok {
		return nil, domain.NotFound("message", id)
	}
	return s.GetMessage(ctx, id)
}

func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	ok, err := s.store.DeleteMessage(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete message")
	}
	if !ok {
		return domain.NotFound("message", id)
	}
	return nil
}
