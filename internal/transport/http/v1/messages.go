package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giftchoice/storefront/internal/domain"
)

// GET /api/messages
func (h *Handler) ListMessages(c echo.Context) error {
	read, err := boolQuery(c, "read")
	if err != nil {
		return h.respondError(c, err)
	}
	messages, err := h.service.ListMessages(c.Request().Context(), read)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}

// GET /api/messages/:id
func (h *Handler) GetMessage(c echo.Context) error {
	msg, err := h.service.GetMessage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// CreateMessage is the public contact form.
// POST /api/messages
func (h *Handler) CreateMessage(c echo.Context) error {
	var req domain.MessageRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	msg, err := h.service.CreateMessage(c.Request().Context(), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// PUT /api/messages/:id
func (h *Handler) UpdateMessage(c echo.Context) error {
	var req domain.MessageRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	msg, err := h.service.UpdateMessage(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// DELETE /api/messages/:id
func (h *Handler) DeleteMessage(c echo.Context) error {
	if err := h.service.DeleteMessage(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "message deleted"})
}
