// Package v1 provides the storefront's REST handlers.
package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/giftchoice/storefront/internal/config"
	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/logging"
	"github.com/giftchoice/storefront/internal/service"
	"github.com/giftchoice/storefront/internal/transport/session"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	config  *config.Config
}

func NewHandler(service *service.Service, cfg *config.Config) *Handler {
	return &Handler{
		service: service,
		config:  cfg,
	}
}

// RegisterRoutes registers the public and admin routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	// Catalog
	api.GET("/products", h.ListProducts)
	api.POST("/products", h.CreateProduct)
	api.GET("/products/:id", h.GetProduct)
	api.PUT("/products/:id", h.UpdateProduct)
	api.DELETE("/products/:id", h.DeleteProduct)
	api.GET("/products/:id/reviews", h.ListReviews)
	api.POST("/products/:id/reviews", h.CreateReview)
	api.DELETE("/reviews/:id", h.DeleteReview)

	api.GET("/categories", h.ListCategories)
	api.POST("/categories", h.CreateCategory)
	api.GET("/categories/:id", h.GetCategory)
	api.PUT("/categories/:id", h.UpdateCategory)
	api.DELETE("/categories/:id", h.DeleteCategory)

	api.GET("/search", h.Search)

	// Session cart
	sess := session.Middleware(h.service, h.config)
	api.GET("/cart", h.GetCart, sess)
	api.POST("/cart", h.AddToCart, sess)
	api.PUT("/cart/:id", h.UpdateCartItem, sess)
	api.DELETE("/cart/:id", h.RemoveCartItem, sess)
	api.DELETE("/cart", h.ClearCart, sess)
	api.POST("/checkout", h.Checkout, sess)

	// Orders
	api.GET("/orders", h.ListOrders)
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders/:id", h.GetOrder)
	api.PUT("/orders/:id", h.UpdateOrder)
	api.DELETE("/orders/:id", h.DeleteOrder)

	// Contact inbox
	api.GET("/messages", h.ListMessages)
	api.POST("/messages", h.CreateMessage)
	api.GET("/messages/:id", h.GetMessage)
	api.PUT("/messages/:id", h.UpdateMessage)
	api.DELETE("/messages/:id", h.DeleteMessage)

	// Promotions
	h.registerPromoRoutes(api, "/banners", domain.PromoKindBanner)
	h.registerPromoRoutes(api, "/social-posts", domain.PromoKindSocial)

	api.GET("/admin/stats", h.Stats)
	api.POST("/chat", h.Chat)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"store":  h.config.StoreName,
	})
}

// respondError maps the error taxonomy onto status codes. Outside
// production every error body carries the stack recorded by pkg/errors.
func (h *Handler) respondError(c echo.Context, err error) error {
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		body := h.errorBody(err, invalid.Message)
		body["field"] = invalid.Field
		return c.JSON(http.StatusBadRequest, body)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, h.errorBody(err, err.Error()))
	}

	logging.FromContext(c.Request().Context()).WithError(err).Error("request failed")
	return c.JSON(http.StatusInternalServerError, h.errorBody(err, err.Error()))
}

func (h *Handler) errorBody(err error, message string) map[string]string {
	body := map[string]string{"error": message}
	if !h.config.Production() {
		body["stack"] = fmt.Sprintf("%+v", err)
	}
	return body
}

func (h *Handler) badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, h.errorBody(errors.New(message), message))
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.Invalid(name, "%s must be true or false", name)
	}
	return &v, nil
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid(name, "%s must be a number", name)
	}
	return v, nil
}
