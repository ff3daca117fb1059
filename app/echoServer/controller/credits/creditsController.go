package credits

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vijender883/bookyard/access"
	"github.com/vijender883/bookyard/app/echoServer/jwtx"
	ls "github.com/vijender883/bookyard/service/ledger"
)

type Controller struct {
	Svc ls.Service
	Log *slog.Logger
}

// GET /v1/credits/balance
func (h *Controller) Balance(c echo.Context) error {
	uid, err := jwtx.MemberIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if !access.MayAct(uid, access.OpReadLedger, access.Resource{MemberID: uid}) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	bal, err := h.Svc.Balance(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("balance", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"balance": bal})
}

// GET /v1/credits/ledger
func (h *Controller) Ledger(c echo.Context) error {
	uid, err := jwtx.MemberIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if !access.MayAct(uid, access.OpReadLedger, access.Resource{MemberID: uid}) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	entries, err := h.Svc.Entries(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("ledger", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": entries})
}

// POST /v1/credits/daily-bonus
func (h *Controller) DailyBonus(c echo.Context) error {
	uid, err := jwtx.MemberIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if !access.MayAct(uid, access.OpClaimBonus, access.Resource{MemberID: uid}) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	e, err := h.Svc.ClaimDailyBonus(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, ls.ErrAlreadyClaimed) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "daily bonus already claimed"})
		}
		h.Log.Error("daily bonus", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, e)
}
