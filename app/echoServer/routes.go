package echoServer

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/vijender883/bookyard/app/echoServer/controller/book"
	"github.com/vijender883/bookyard/app/echoServer/controller/credits"
	"github.com/vijender883/bookyard/app/echoServer/controller/feed"
	"github.com/vijender883/bookyard/app/echoServer/controller/member"
	"github.com/vijender883/bookyard/app/echoServer/controller/reservation"
)

type C struct {
	Book        *book.Controller
	Reservation *reservation.Controller
	Member      *member.Controller
	Credits     *credits.Controller
	Feed        *feed.Controller
	JWTSecret   string
}

func Register(e *echo.Echo, c C) {
	jwtMW := echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization:Bearer ",
	})

	// Public feed; a valid token is used when present so viewers also
	// see their own private entries, but none is required.
	optionalJWT := echojwt.WithConfig(echojwt.Config{
		SigningKey:             []byte(c.JWTSecret),
		NewClaimsFunc:          func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:            "header:Authorization:Bearer ",
		ContinueOnIgnoredError: true,
		ErrorHandler:           func(c echo.Context, err error) error { return nil },
	})
	e.GET("/v1/feed", c.Feed.List, optionalJWT)

	auth := e.Group("/v1")
	auth.Use(jwtMW)

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/:id", c.Book.Detail)
	auth.POST("/books", c.Book.Create)
	auth.PUT("/books/:id", c.Book.Update)
	auth.DELETE("/books/:id", c.Book.Delete)
	auth.GET("/categories", c.Book.Categories)

	// Reservations
	auth.POST("/reservations", c.Reservation.Create)
	auth.GET("/reservations/my", c.Reservation.My)
	auth.POST("/reservations/:id/confirm", c.Reservation.Confirm)
	auth.POST("/reservations/:id/cancel", c.Reservation.Cancel)
	auth.POST("/reservations/:id/complete", c.Reservation.Complete)

	// Members
	auth.GET("/members/me", c.Member.Me)
	auth.GET("/members/:id", c.Member.Get)
	auth.PUT("/members/me/guardian", c.Member.SetGuardian)

	// Credits
	auth.GET("/credits/balance", c.Credits.Balance)
	auth.GET("/credits/ledger", c.Credits.Ledger)
	auth.POST("/credits/daily-bonus", c.Credits.DailyBonus)
}
