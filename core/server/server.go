package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"go-event-cms/core/cache"
	"go-event-cms/core/config"
	"go-event-cms/core/constants"
	"go-event-cms/core/database"
	"go-event-cms/core/logger"
	"go-event-cms/core/middleware"
	"go-event-cms/modules/auth"
	"go-event-cms/modules/events"
	"go-event-cms/modules/events/gcal"
	"go-event-cms/modules/posts"
)

// Run loads configuration, connects the backing services and starts the HTTP
// server. It blocks until the listener stops.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.LogLevel)

	db, err := database.InitDB(cfg.Mongo)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer db.Close(context.Background())

	redisCache, err := cache.InitRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()
	calendarAPI, err := gcal.NewCalendarAPI(ctx, cfg.GoogleCalendar.CredentialsFile)
	if err != nil {
		return fmt.Errorf("init calendar api: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())

	authService := auth.GetService(db, redisCache)
	mw := middleware.NewMiddleware(authService)

	auth.Init(e, db, redisCache, mw)
	if err := events.Init(e, db, calendarAPI, authService, mw); err != nil {
		return fmt.Errorf("init events module: %w", err)
	}
	posts.Init(e, db, authService, mw)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server:Start", "addr", addr)
	return e.Start(addr)
}
