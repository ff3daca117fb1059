package reservation

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/vijender883/bookyard/access"
	"github.com/vijender883/bookyard/app/echoServer/jwtx"
	"github.com/vijender883/bookyard/model"
	rs "github.com/vijender883/bookyard/service/reservation"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/reservations
func (h *Controller) Create(c echo.Context) error {
	var req CreateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, err := jwtx.MemberIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if !access.MayAct(uid, access.OpCreateResv, access.Resource{}) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	out, err := h.Svc.Create(c.Request().Context(), uid, req.BookID, req.StartDate, req.EndDate)
	if err != nil {
		h.Log.Error("reservation create", "err", err)
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/reservations/:id/confirm
func (h *Controller) Confirm(c echo.Context) error {
	return h.doTransition(c, access.OpConfirmResv, h.Svc.Confirm)
}

// POST /v1/reservations/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	return h.doTransition(c, access.OpCancelResv, h.Svc.Cancel)
}

// POST /v1/reservations/:id/complete
func (h *Controller) Complete(c echo.Context) error {
	return h.doTransition(c, access.OpCompleteResv, h.Svc.Complete)
}

// GET /v1/reservations/my
func (h *Controller) My(c echo.Context) error {
	uid, err := jwtx.MemberIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.MyReservations(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("reservation history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// doTransition shares the lookup / gate / error plumbing of the three
// lifecycle endpoints.
func (h *Controller) doTransition(c echo.Context, op access.Operation, fn func(ctx context.Context, id int64) (*model.Reservation, error)) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.MemberIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx := c.Request().Context()
	r, err := h.Svc.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	owner, err := h.Svc.OwnerOf(ctx, r.BookID)
	if err != nil {
		return h.fail(c, err)
	}
	if !access.MayAct(uid, op, access.Resource{OwnerID: owner, BorrowerID: r.BorrowerID}) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	out, err := fn(ctx, id)
	if err != nil {
		h.Log.Error("reservation transition", "op", string(op), "id", id, "err", err)
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Controller) fail(c echo.Context, err error) error {
	switch rs.Code(err) {
	case rs.ErrUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "no copies available"})
	case rs.ErrInsufficientCredits:
		return c.JSON(http.StatusConflict, echo.Map{"message": "insufficient credits"})
	case rs.ErrInvalidTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": "reservation is not in a valid state for this action"})
	case rs.ErrInvalidWindow:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "end date must be after start date"})
	case rs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case rs.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": "conflicting update, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
