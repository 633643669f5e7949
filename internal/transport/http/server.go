// Package http assembles the storefront's echo server.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/giftchoice/storefront/internal/config"
	"github.com/giftchoice/storefront/internal/logging"
	"github.com/giftchoice/storefront/internal/service"
	v1 "github.com/giftchoice/storefront/internal/transport/http/v1"
)

// NewServer creates the echo server with the REST API registered. Further
// routes (the chat socket) are added by the caller.
func NewServer(cfg *config.Config, svc *service.Service, log logrus.FieldLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(logging.ContextLogger(log))
	e.Use(logging.RequestLogger())
	e.Use(middleware.CORSWithConfig(corsConfig(cfg, log)))

	v1.NewHandler(svc, cfg).RegisterRoutes(e)

	return e
}

// corsConfig allows credentials, and with them the cart cookie, only for
// explicit origins. Browsers refuse a wildcard on credentialed requests.
func corsConfig(cfg *config.Config, log logrus.FieldLogger) middleware.CORSConfig {
	credentials := true
	for _, origin := range cfg.CORSAllowOrigins {
		if origin == "*" {
			credentials = false
			log.Warn("CORS allows any origin; cross-origin requests will not carry the cart cookie")
			break
		}
	}
	return middleware.CORSConfig{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowCredentials: credentials,
	}
}
