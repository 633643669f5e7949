package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/giftchoice/storefront/internal/checkout"
	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/logging"
)

// Checkout turns the session cart into a pending order, removes the ordered
// lines in the same transaction and returns the WhatsApp handoff.
func (s *Service) Checkout(ctx context.Context, sessionID string, req *domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	if err := validateCustomer(&req.Customer); err != nil {
		return nil, err
	}
	items, err := s.store.GetCartItems(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cart")
	}
	if len(items) == 0 {
		return nil, domain.Invalid("cart", "cart is empty")
	}

	now := timeNow()
	order := &domain.Order{
		ID:            newID("ord_"),
		CustomerName:  req.Name,
		CustomerPhone: req.Phone,
		CustomerEmail: req.Email,
		Status:        domain.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, it := range items {
		name := it.ProductID
		if it.Product != nil {
			name = it.Product.Name
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:          newID("item_"),
			OrderID:     order.ID,
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			SizeName:    it.SizeName,
		})
	}
	order.Total = domain.OrderTotal(order.Items).InexactFloat64()

	if err := s.store.CheckoutCart(ctx, sessionID, order, items); err != nil {
		return nil, errors.Wrap(err, "failed to check out")
	}
	logging.FromContext(ctx).WithField("order_id", order.ID).Info("order placed from cart")
	s.notifyCart(ctx, sessionID)

	summary := checkout.Summary(s.config.StoreName, order)
	return &domain.CheckoutResult{
		Order:       order,
		Summary:     summary,
		WhatsAppURL: checkout.WhatsAppLink(s.config.WhatsAppNumber, summary),
	}, nil
}
