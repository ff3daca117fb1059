package feed

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vijender883/bookyard/app/echoServer/jwtx"
	feedsvc "github.com/vijender883/bookyard/service/feed"
)

type Controller struct {
	Pub *feedsvc.Publisher
	Log *slog.Logger
}

// GET /v1/feed
func (h *Controller) List(c echo.Context) error {
	var viewer *uuid.UUID
	if uid, err := jwtx.MemberIDFromContext(c); err == nil {
		viewer = &uid
	}

	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid limit"})
		}
		limit = n
	}

	entries, err := h.Pub.List(c.Request().Context(), viewer, limit)
	if err != nil {
		h.Log.Error("feed list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": entries})
}
