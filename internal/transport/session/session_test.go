package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftchoice/storefront/internal/config"
	"github.com/giftchoice/storefront/internal/domain"
	"github.com/giftchoice/storefront/internal/service"
	"github.com/giftchoice/storefront/tests/helpers"
)

func newTestService(t *testing.T, env string) (*service.Service, *config.Config) {
	cfg := &config.Config{
		Environment:       env,
		SessionCookieName: "gc_session",
		SessionTTL:        24 * time.Hour,
		StoreName:         "GIFT CHOICE",
	}
	return service.New(helpers.NewTestStore(t), nil, nil, cfg), cfg
}

func run(t *testing.T, svc *service.Service, cfg *config.Config, req *http.Request) (*httptest.ResponseRecorder, *domain.Session) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *domain.Session
	h := Middleware(svc, cfg)(func(c echo.Context) error {
		s, err := FromContext(c)
		require.NoError(t, err)
		got = s
		return c.NoContent(http.StatusNoContent)
	})
	require.NoError(t, h(c))
	return rec, got
}

func TestMiddlewareMintsCookie(t *testing.T) {
	svc, cfg := newTestService(t, "development")

	rec, s := run(t, svc, cfg, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "gc_session", cookie.Name)
	assert.Equal(t, s.ID, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 86400, cookie.MaxAge)
}

func TestMiddlewareReusesKnownCookie(t *testing.T) {
	svc, cfg := newTestService(t, "development")
	_, first := run(t, svc, cfg, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: "gc_session", Value: first.ID})
	rec, second := run(t, svc, cfg, req)

	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, rec.Result().Cookies())
}

func TestMiddlewareReplacesMalformedCookie(t *testing.T) {
	svc, cfg := newTestService(t, "production")

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: "gc_session", Value: "../../etc"})
	rec, s := run(t, svc, cfg, req)

	assert.NotEqual(t, "../../etc", s.ID)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := FromContext(c)
	assert.Error(t, err)
}
