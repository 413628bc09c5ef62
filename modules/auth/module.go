package auth

import (
	"github.com/labstack/echo/v4"

	"go-event-cms/core/cache"
	"go-event-cms/core/database"
	"go-event-cms/core/middleware"
	"go-event-cms/modules/auth/controller"
	"go-event-cms/modules/auth/repository"
	"go-event-cms/modules/auth/router"
	"go-event-cms/modules/auth/service"
)

func Init(e *echo.Echo, db database.IDatabase, cache cache.Cache, mw *middleware.Middleware) {
	authService := GetService(db, cache)
	ctrl := controller.NewAuthController(authService)
	router.NewAuthRouter(ctrl).Setup(e, mw)
}

// GetService builds an AuthService for other modules that need the
// capability check without the HTTP surface.
func GetService(db database.IDatabase, cache cache.Cache) service.AuthServiceInterface {
	repo := repository.NewUserRepository(db)
	return service.NewAuthService(repo, cache)
}
