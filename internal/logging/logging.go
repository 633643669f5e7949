// Package logging wires logrus into the storefront.
package logging

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

type ctxKeyLog struct{}

var base logrus.FieldLogger = logrus.StandardLogger()

// New builds the process logger. Production logs are JSON.
func New(level string, production bool) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stdout
	if production {
		log.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		}
	} else {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl
	base = log
	return log
}

// FromContext returns the request-scoped logger, or the process logger.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKeyLog{}).(logrus.FieldLogger); ok {
			return l
		}
	}
	return base
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKeyLog{}, l)
}

// ContextLogger attaches a request-scoped logger carrying the request id.
func ContextLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			entry := log.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     req.Method,
				"uri":        req.RequestURI,
			})
			c.SetRequest(req.WithContext(WithLogger(req.Context(), entry)))
			return next(c)
		}
	}
}

// RequestLogger logs one line per completed request.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := FromContext(c.Request().Context()).WithFields(logrus.Fields{
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			switch {
			case v.Error != nil:
				entry.WithField("error", v.Error).Error("request failed")
			case v.Status >= 500:
				entry.Error("request completed")
			case v.Status >= 400:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}
			return nil
		},
	})
}
