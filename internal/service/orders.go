package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/logging"
	"github.com/giftchoice/storefront/internal/policy"
)

func validateCustomer(c *domain.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" {
		return domain.Required("customer_name")
	}
	if c.Phone == "" {
		return domain.Required("customer_phone")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return domain.Invalid("customer_email", "customer_email is not a valid address")
	}
	return nil
}

// CreateOrder places an order from explicit lines. Names and prices are
// snapshotted from the catalog and the total is always recomputed here.
func (s *Service) CreateOrder(ctx context.Context, req *domain.OrderCreateRequest) (*domain.Order, error) {
	if err := validateCustomer(&req.Customer); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, domain.Invalid("items", "an order needs at least one item")
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
	for i, line := range req.Items {
		if line.Quantity < 1 {
			return nil, domain.Invalid("items", "item %d: quantity must be at least 1", i+1)
		}
		p, err := s.store.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get product")
		}
		if p == nil {
			return nil, domain.Invalid("items", "item %d: product %s does not exist", i+1, line.ProductID)
		}
		price, err := unitPrice(p, line.Size)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:          newID("item_"),
			OrderID:     order.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   price,
			SizeName:    line.Size,
		})
	}
	total := domain.OrderTotal(order.Items)
	order.Total = total.InexactFloat64()

	if req.Total != nil && !decimal.NewFromFloat(*req.Total).Equal(total) {
		logging.FromContext(ctx).WithFields(logrus.Fields{
			"order_id":     order.ID,
			"client_total": *req.Total,
			"total":        order.Total,
		}).Warn("ignoring client order total")
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get order")
	}
	if order == nil {
		return nil, domain.NotFound("order", id)
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, status string) ([]domain.Order, error) {
	st := domain.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, domain.Invalid("status", "unknown order status %q", status)
	}
	orders, err := s.store.ListOrders(ctx, st)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	return orders, nil
}

// UpdateOrder applies a partial update. Status changes must be known
// statuses and pass the order policy.
func (s *Service) UpdateOrder(ctx context.Context, id string, req *domain.OrderUpdateRequest) (*domain.Order, error) {
	current, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		st := domain.OrderStatus(strings.ToLower(string(*req.Status)))
		if !st.Valid() {
			return nil, domain.Invalid("status", "unknown order status %q", *req.Status)
		}
		req.Status = &st
		if s.policyEngine != nil {
			decision, err := s.policyEngine.Evaluate(ctx, policy.Transition{
				OrderID: id,
				From:    string(current.Status),
				To:      string(st),
			})
			if err != nil {
				return nil, errors.Wrap(err, "failed to evaluate order policy")
			}
			if !decision.Allow {
				return nil, domain.Invalid("status", "cannot move order from %s to %s: %s", current.Status, st, decision.Reason)
			}
		}
	}
	if req.CustomerName != nil && strings.TrimSpace(*req.CustomerName) == "" {
		return nil, domain.Invalid("customer_name", "customer_name must not be empty")
	}
	if req.CustomerPhone != nil && strings.TrimSpace(*req.CustomerPhone) == "" {
		return nil, domain.Invalid("customer_phone", "customer_phone must not be empty")
	}

	ok, err := s.store.UpdateOrder(ctx, id, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update order")
	}
	if !ok {
		return nil, domain.NotFound("order", id)
	}
	return s.GetOrder(ctx, id)
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	ok, err := s.store.DeleteOrder(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete order")
	}
	if !ok {
		return domain.NotFound("order", id)
	}
	return nil
}
