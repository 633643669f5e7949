package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giftchoice/storefront/internal/chatbot"
)

// Search runs the fuzzy catalog search.
// GET /api/search?q=
func (h *Handler) Search(c echo.Context) error {
	results, err := h.service.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

// GET /api/admin/stats
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

type chatRequest struct {
	State   chatbot.State   `json:"state"`
	Context chatbot.Context `json:"context"`
	Input   chatbot.Input   `json:"input"`
}

// Chat advances the assistant one step. The client keeps the state and
// context between calls.
// POST /api/chat
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	if req.State == "" {
		req.State = chatbot.StateHidden
	}
	turn, err := h.service.Chat(c.Request().Context(), req.State, req.Context, req.Input)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, turn)
}
