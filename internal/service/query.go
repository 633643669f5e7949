package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/giftchoice/storefront/internal/chatbot"
	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/search"
)

// Stats returns the admin dashboard summary.
func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stats")
	}
	return stats, nil
}

// Search runs the fuzzy search over the whole catalog.
func (s *Service) Search(ctx context.Context, query string) ([]search.Result, error) {
	if strings.TrimSpace(query) == "" {
		return []search.Result{}, nil
	}
	products, err := s.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}
	return search.Search(query, products), nil
}

// ChatTurn is one reducer step as exchanged with clients.
type ChatTurn struct {
	State   chatbot.State   `json:"state"`
	Context chatbot.Context `json:"context"`
	Output  *chatbot.Output `json:"output,omitempty"`
}

// Chat advances the assistant by one input against the in-stock catalog.
func (s *Service) Chat(ctx context.Context, state chatbot.State, chatCtx chatbot.Context, input chatbot.Input) (*ChatTurn, error) {
	switch input.Kind {
	case chatbot.InputDelay, chatbot.InputScroll, chatbot.InputOpen, chatbot.InputText, chatbot.InputIdle, chatbot.InputClose:
	default:
		return nil, domain.Invalid("input.kind", "unknown chat input %q", input.Kind)
	}

	var catalog []domain.Product
	if input.Kind == chatbot.InputText {
		inStock := true
		products, err := s.ListProducts(ctx, domain.ProductFilter{InStock: &inStock})
		if err != nil {
			return nil, err
		}
		catalog = products
	}
	next, nextCtx, out := s.bot.Reduce(state, chatCtx, input, catalog)
	return &ChatTurn{State: next, Context: nextCtx, Output: &out}, nil
}
