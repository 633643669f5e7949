package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/transport/session"
)

// respondCart writes the session's current cart.
func (h *Handler) respondCart(c echo.Context, sessionID string, status int) error {
	cart, err := h.service.GetCart(c.Request().Context(), sessionID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(status, cart)
}

// GET /api/cart
func (h *Handler) GetCart(c echo.Context) error {
	s, err := session.FromContext(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return h.respondCart(c, s.ID, http.StatusOK)
}

// AddToCart merges the product into the session cart.
// POST /api/cart
func (h *Handler) AddToCart(c echo.Context) error {
	s, err := session.FromContext(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var req domain.CartAddRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	if _, err := h.service.AddToCart(c.Request().Context(), s.ID, &req); err != nil {
		return h.respondError(c, err)
	}
	return h.respondCart(c, s.ID, http.StatusCreated)
}

// UpdateCartItem sets a line quantity; zero or less removes the line.
// PUT /api/cart/:id
func (h *Handler) UpdateCartItem(c echo.Context) error {
	s, err := session.FromContext(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var req domain.CartUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	if err := h.service.UpdateCartItem(c.Request().Context(), s.ID, c.Param("id"), &req); err != nil {
		return h.respondError(c, err)
	}
	return h.respondCart(c, s.ID, http.StatusOK)
}

// DELETE /api/cart/:id
func (h *Handler) RemoveCartItem(c echo.Context) error {
	s, err := session.FromContext(c)
	if err != nil {
		return h.respondError(c, err)
	}
	if err := h.service.RemoveCartItem(c.Request().Context(), s.ID, c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return h.respondCart(c, s.ID, http.StatusOK)
}

// ClearCart empties the cart; the clear flag guards against accidents.
// DELETE /api/cart?clear=true
func (h *Handler) ClearCart(c echo.Context) error {
	s, err := session.FromContext(c)
	if err != nil {
		return h.respondError(c, err)
	}
	confirm, err := boolQuery(c, "clear")
	if err != nil {
		return h.respondError(c, err)
	}
	if confirm == nil || !*confirm {
		return h.badRequest(c, "pass clear=true to empty the cart")
	}
	if err := h.service.ClearCart(c.Request().Context(), s.ID); err != nil {
		return h.respondError(c, err)
	}
	return h.respondCart(c, s.ID, http.StatusOK)
}

// Checkout places the cart as an order and returns the WhatsApp handoff.
// POST /api/checkout
func (h *Handler) Checkout(c echo.Context) error {
	s, err := session.FromContext(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var req domain.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	result, err := h.service.Checkout(c.Request().Context(), s.ID, &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}
