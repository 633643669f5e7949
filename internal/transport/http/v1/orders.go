package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giftchoice/storefront/internal/domain"
)

// GET /api/orders
func (h *Handler) ListOrders(c echo.Context) error {
	orders, err := h.service.ListOrders(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GET /api/orders/:id
func (h *Handler) GetOrder(c echo.Context) error {
	order, err := h.service.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// CreateOrder places an order from explicit lines. Any client total is
// recomputed.
// POST /api/orders
func (h *Handler) CreateOrder(c echo.Context) error {
	var req domain.OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	order, err := h.service.CreateOrder(c.Request().Context(), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// PUT /api/orders/:id
func (h *Handler) UpdateOrder(c echo.Context) error {
	var req domain.OrderUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	order, err := h.service.UpdateOrder(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// DELETE /api/orders/:id
func (h *Handler) DeleteOrder(c echo.Context) error {
	if err := h.service.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "order deleted"})
}
