package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giftchoice/storefront/internal/domain"
)

// promoHandlers serves one promo collection (banners or social posts).
type promoHandlers struct {
	h    *Handler
	kind domain.PromoKind
}

func (h *Handler) registerPromoRoutes(g *echo.Group, prefix string, kind domain.PromoKind) {
	p := &promoHandlers{h: h, kind: kind}
	g.GET(prefix, p.list)
	g.POST(prefix, p.create)
	g.GET(prefix+"/:id", p.get)
	g.PUT(prefix+"/:id", p.update)
	g.DELETE(prefix+"/:id", p.delete)
}

// GET /api/banners, GET /api/social-posts
func (p *promoHandlers) list(c echo.Context) error {
	active, err := boolQuery(c, "active")
	if err != nil {
		return p.h.respondError(c, err)
	}
	promos, err := p.h.service.ListPromos(c.Request().Context(), p.kind, active)
	if err != nil {
		return p.h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, promos)
}

func (p *promoHandlers) get(c echo.Context) error {
	promo, err := p.h.service.GetPromo(c.Request().Context(), p.kind, c.Param("id"))
	if err != nil {
		return p.h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, promo)
}

func (p *promoHandlers) create(c echo.Context) error {
	var req domain.PromoRequest
	if err := c.Bind(&req); err != nil {
		return p.h.badRequest(c, "invalid request body")
	}
	promo, err := p.h.service.CreatePromo(c.Request().Context(), p.kind, &req)
	if err != nil {
		return p.h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, promo)
}

func (p *promoHandlers) update(c echo.Context) error {
	var req domain.PromoRequest
	if err := c.Bind(&req); err != nil {
		return p.h.badRequest(c, "invalid request body")
	}
	promo, err := p.h.service.UpdatePromo(c.Request().Context(), p.kind, c.Param("id"), &req)
	if err != nil {
		return p.h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, promo)
}

func (p *promoHandlers) delete(c echo.Context) error {
	if err := p.h.service.DeletePromo(c.Request().Context(), p.kind, c.Param("id")); err != nil {
		return p.h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}
