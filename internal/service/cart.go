package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/logging"
)

// ResolveSession returns the session for a cookie token. A missing or
// malformed token gets a fresh session; a well-formed token without a row
// gets its row back. minted reports whether the caller must set a cookie.
func (s *Service) ResolveSession(ctx context.Context, token string) (session *domain.Session, minted bool, err error) {
	if _, perr := uuid.Parse(token); perr != nil || token == "" {
		token = uuid.New().String()
		minted = true
	}
	now := timeNow()
	session, err = s.store.GetOrCreateSession(ctx, &domain.Session{
		ID:        token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to resolve session")
	}
	return session, minted, nil
}

// GetCart returns the session's lines with the item count and subtotal.
func (s *Service) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	items, err := s.store.GetCartItems(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cart")
	}
	cart := &domain.Cart{Items: items}
	subtotal := decimal.Zero
	for _, it := range items {
		cart.ItemCount += it.Quantity
		subtotal = subtotal.Add(domain.LineTotal(it.UnitPrice, it.Quantity))
	}
	cart.Subtotal = subtotal.InexactFloat64()
	return cart, nil
}

// AddToCart adds a product, merging with an existing line for the same
// product and size.
func (s *Service) AddToCart(ctx context.Context, sessionID string, req *domain.CartAddRequest) (*domain.CartItem, error) {
	if req.ProductID == "" {
		return nil, domain.Required("product_id")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		return nil, domain.Invalid("quantity", "quantity must be at least 1")
	}

	p, err := s.store.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get product")
	}
	if p == nil {
		return nil, domain.Invalid("product_id", "product %s does not exist", req.ProductID)
	}
	if !p.InStock {
		return nil, domain.Invalid("product_id", "%s is out of stock", p.Name)
	}
	price, err := unitPrice(p, req.Size)
	if err != nil {
		return nil, err
	}

	now := timeNow()
	item, err := s.store.UpsertCartItem(ctx, &domain.CartItem{
		ID:        newID("cart_"),
		SessionID: sessionID,
		ProductID: p.ID,
		Quantity:  req.Quantity,
		SizeName:  req.Size,
		UnitPrice: price,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add to cart")
	}
	item.Product = p
	s.notifyCart(ctx, sessionID)
	return item, nil
}

// unitPrice is the snapshot price for a product line: the size price when a
// size is named, else the base price.
func unitPrice(p *domain.Product, size string) (float64, error) {
	if size == "" {
		return p.Price, nil
	}
	price, ok := p.SizePrice(size)
	if !ok {
		return 0, domain.Invalid("size", "%s has no size %s", p.Name, size)
	}
	return price, nil
}

// UpdateCartItem sets a line's quantity. Zero or less removes the line.
func (s *Service) UpdateCartItem(ctx context.Context, sessionID, itemID string, req *domain.CartUpdateRequest) error {
	if req.Quantity == nil {
		return domain.Required("quantity")
	}
	quantity := *req.Quantity
	if quantity <= 0 {
		return s.RemoveCartItem(ctx, sessionID, itemID)
	}
	ok, err := s.store.UpdateCartItemQuantity(ctx, sessionID, itemID, quantity)
	if err != nil {
		return errors.Wrap(err, "failed to update cart item")
	}
	if !ok {
		return domain.NotFound("cart item", itemID)
	}
	s.notifyCart(ctx, sessionID)
	return nil
}

// RemoveCartItem deletes a line owned by the session.
func (s *Service) RemoveCartItem(ctx context.Context, sessionID, itemID string) error {
	ok, err := s.store.DeleteCartItem(ctx, sessionID, itemID)
	if err != nil {
		return errors.Wrap(err, "failed to remove cart item")
	}
	if !ok {
		return domain.NotFound("cart item", itemID)
	}
	s.notifyCart(ctx, sessionID)
	return nil
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	if _, err := s.store.ClearCart(ctx, sessionID); err != nil {
		return errors.Wrap(err, "failed to clear cart")
	}
	s.notifyCart(ctx, sessionID)
	return nil
}

func (s *Service) notifyCart(ctx context.Context, sessionID string) {
	if s.notifier == nil {
		return
	}
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("failed to count cart for notification")
		return
	}
	s.notifier.NotifyCartUpdated(sessionID, cart.ItemCount)
}
