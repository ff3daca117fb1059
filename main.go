// Package main bookyard API.
//
// @title           Bookyard API
// @version         1.0
// @description     Peer-to-peer book lending marketplace (listings, reservations, credits, feed).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/vijender883/bookyard/app/echoServer"
	bookctrl "github.com/vijender883/bookyard/app/echoServer/controller/book"
	creditsctrl "github.com/vijender883/bookyard/app/echoServer/controller/credits"
	feedctrl "github.com/vijender883/bookyard/app/echoServer/controller/feed"
	memberctrl "github.com/vijender883/bookyard/app/echoServer/controller/member"
	resvctrl "github.com/vijender883/bookyard/app/echoServer/controller/reservation"
	"github.com/vijender883/bookyard/app/echoServer/validation"
	"github.com/vijender883/bookyard/config"
	bookrepo "github.com/vijender883/bookyard/repository/book"
	feedrepo "github.com/vijender883/bookyard/repository/feed"
	ledgerrepo "github.com/vijender883/bookyard/repository/ledger"
	memberrepo "github.com/vijender883/bookyard/repository/member"
	resvrepo "github.com/vijender883/bookyard/repository/reservation"
	booksvc "github.com/vijender883/bookyard/service/book"
	feedsvc "github.com/vijender883/bookyard/service/feed"
	ledgersvc "github.com/vijender883/bookyard/service/ledger"
	membersvc "github.com/vijender883/bookyard/service/member"
	resvsvc "github.com/vijender883/bookyard/service/reservation"
	"github.com/vijender883/bookyard/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.MigrationsPath); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	// repos
	br := bookrepo.New(db)
	mr := memberrepo.New(db)
	lr := ledgerrepo.New(db)
	fr := feedrepo.New(db)
	rr := resvrepo.New(db)

	// services
	pub := feedsvc.NewPublisher(fr, log)
	defer pub.Close()
	ls := ledgersvc.New(lr)
	bs := booksvc.New(br, pub, ls, log)
	ms := membersvc.New(mr)
	rs := resvsvc.New(rr, pub)

	// controllers
	v := validator.New()
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	resvC := &resvctrl.Controller{Svc: rs, V: v, Log: log}
	memberC := &memberctrl.Controller{Svc: ms, V: v, Log: log}
	creditsC := &creditsctrl.Controller{Svc: ls, Log: log}
	feedC := &feedctrl.Controller{Pub: pub, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Book:        bookC,
		Reservation: resvC,
		Member:      memberC,
		Credits:     creditsC,
		Feed:        feedC,
		JWTSecret:   cfg.JWTSecret,
	})

	addr := ":" + cfg.Port
	log.Info("starting server", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
