package router

import (
	"github.com/labstack/echo/v4"

	"go-event-cms/core/middleware"
	"go-event-cms/modules/auth/controller"
)

type AuthRouter struct {
	Controller *controller.AuthController
}

func NewAuthRouter(ctrl *controller.AuthController) *AuthRouter {
	return &AuthRouter{Controller: ctrl}
}

func (r *AuthRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	pub := e.Group("/api/v1/public/auth")
	pub.POST("/register", r.Controller.Register)
	pub.POST("/login", r.Controller.Login)
	pub.POST("/refresh", r.Controller.Refresh)
	pub.POST("/logout", r.Controller.Logout)

	priv := e.Group("/api/v1/private/auth", mw.AuthMiddleware())
	priv.GET("/me", r.Controller.Me)
}
