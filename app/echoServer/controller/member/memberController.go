package member

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vijender883/bookyard/access"
	"github.com/vijender883/bookyard/app/echoServer/jwtx"
	ms "github.com/vijender883/bookyard/service/member"
)

type Controller struct {
	Svc ms.Service
	V   *validator.Validate
	Log *slog.Logger
}

type SetGuardianReq struct {
	GuardianID *string `json:"guardian_id" validate:"omitempty,uuid"`
}

// GET /v1/members/me
//
// Provisions the member on first authenticated access; calling it
// again is a no-op.
func (h *Controller) Me(c echo.Context) error {
	uid, err := jwtx.MemberIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	m, err := h.Svc.Ensure(c.Request().Context(), ms.Identity{
		ID:       uid,
		Username: jwtx.UsernameFromContext(c),
		Email:    jwtx.EmailFromContext(c),
		FullName: jwtx.FullNameFromContext(c),
	})
	if err != nil {
		h.Log.Error("member ensure", "err", err)
		if errors.Is(err, ms.ErrUsernameTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "username already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, m)
}

// GET /v1/members/:id
func (h *Controller) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	m, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ms.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "member not found"})
		}
		h.Log.Error("member get", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, m)
}

// PUT /v1/members/me/guardian
func (h *Controller) SetGuardian(c echo.Context) error {
	var req SetGuardianReq
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
	if !access.MayAct(uid, access.OpSetGuardian, access.Resource{MemberID: uid}) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	var guardianID *uuid.UUID
	if req.GuardianID != nil {
		g, err := uuid.Parse(*req.GuardianID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid guardian_id"})
		}
		guardianID = &g
	}

	if err := h.Svc.SetGuardian(c.Request().Context(), uid, guardianID); err != nil {
		h.Log.Error("set guardian", "err", err)
		switch {
		case errors.Is(err, ms.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "member not found"})
		case errors.Is(err, ms.ErrGuardianNotParent):
			return c.JSON(http.StatusConflict, echo.Map{"message": "guardian must be a parent member"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "guardian updated"})
}
