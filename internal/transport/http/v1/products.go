package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/service"
)

// ListProducts lists products newest first.
// GET /api/products
func (h *Handler) ListProducts(c echo.Context) error {
	filter := domain.ProductFilter{
		Category:    c.QueryParam("category"),
		Subcategory: c.QueryParam("subcategory"),
		Search:      c.QueryParam("search"),
	}
	var err error
	flags := []struct {
		name string
		dest **bool
	}{
		{"featured", &filter.Featured},
		{"new_arrival", &filter.NewArrival},
		{"festival", &filter.Festival},
		{"in_stock", &filter.InStock},
	}
	for _, f := range flags {
		if *f.dest, err = boolQuery(c, f.name); err != nil {
			return h.respondError(c, err)
		}
	}
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		return h.respondError(c, err)
	}
	if filter.Offset, err = intQuery(c, "offset"); err != nil {
		return h.respondError(c, err)
	}

	products, err := h.service.ListProducts(c.Request().Context(), filter)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct returns one product through the product cache.
// GET /api/products/:id
func (h *Handler) GetProduct(c echo.Context) error {
	p, hit, err := h.service.GetProductCached(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	if hit {
		c.Response().Header().Set("X-Cache", "HIT")
	} else {
		c.Response().Header().Set("X-Cache", "MISS")
	}
	return c.JSON(http.StatusOK, p)
}

// POST /api/products
func (h *Handler) CreateProduct(c echo.Context) error {
	var req domain.ProductRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	p, err := h.service.CreateProduct(c.Request().Context(), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// PUT /api/products/:id
func (h *Handler) UpdateProduct(c echo.Context) error {
	var req domain.ProductRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	p, err := h.service.UpdateProduct(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// DELETE /api/products/:id
func (h *Handler) DeleteProduct(c echo.Context) error {
	if err := h.service.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "product deleted"})
}

// ListReviews returns a product's reviews with their count and average.
// GET /api/products/:id/reviews
func (h *Handler) ListReviews(c echo.Context) error {
	reviews, err := h.service.ListReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
		"average": service.AverageRating(reviews),
	})
}

// POST /api/products/:id/reviews
func (h *Handler) CreateReview(c echo.Context) error {
	var req domain.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	review, err := h.service.CreateReview(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, review)
}

// DELETE /api/reviews/:id
func (h *Handler) DeleteReview(c echo.Context) error {
	if err := h.service.DeleteReview(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "review deleted"})
}
