package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giftchoice/storefront/internal/domain"
)

// GET /api/categories
func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.service.ListCategories(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// GetCategory accepts an id or a slug.
// GET /api/categories/:id
func (h *Handler) GetCategory(c echo.Context) error {
	category, err := h.service.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// POST /api/categories
func (h *Handler) CreateCategory(c echo.Context) error {
	var req domain.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	category, err := h.service.CreateCategory(c.Request().Context(), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}

// PUT /api/categories/:id
func (h *Handler) UpdateCategory(c echo.Context) error {
	var req domain.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	category, err := h.service.UpdateCategory(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// DELETE /api/categories/:id
func (h *Handler) DeleteCategory(c echo.Context) error {
	if err := h.service.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "category deleted"})
}
