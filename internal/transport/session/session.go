// Package session binds HTTP requests and chat sockets to a cart session
// carried in a cookie.
package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/giftchoice/storefront/internal/config"
	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/logging"
	"github.com/giftchoice/storefront/internal/service"
)

const contextKey = "cart_session"

// Cookie builds the session cookie for s.
func Cookie(cfg *config.Config, s *domain.Session) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	}
}

// Resolve reads the session cookie from r and returns its session. cookie is
// non-nil when a new token was minted and must be sent back.
func Resolve(r *http.Request, svc *service.Service, cfg *config.Config) (*domain.Session, *http.Cookie, error) {
	var token string
	if c, err := r.Cookie(cfg.SessionCookieName); err == nil {
		token = c.Value
	}
	s, minted, err := svc.ResolveSession(r.Context(), token)
	if err != nil {
		return nil, nil, err
	}
	if minted {
		return s, Cookie(cfg, s), nil
	}
	return s, nil, nil
}

// Middleware resolves the cart session for every request it wraps.
func Middleware(svc *service.Service, cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, cookie, err := Resolve(c.Request(), svc, cfg)
			if err != nil {
				logging.FromContext(c.Request().Context()).WithError(err).Error("failed to resolve cart session")
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to resolve session"})
			}
			if cookie != nil {
				c.SetCookie(cookie)
			}
			c.Set(contextKey, s)
			return next(c)
		}
	}
}

// FromContext returns the session stored by Middleware.
func FromContext(c echo.Context) (*domain.Session, error) {
	s, ok := c.Get(contextKey).(*domain.Session)
	if !ok || s == nil {
		return nil, errors.New("no cart session on request")
	}
	return s, nil
}
