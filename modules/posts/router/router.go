package router

import (
	"github.com/labstack/echo/v4"

	"go-event-cms/core/constants"
	"go-event-cms/core/middleware"
	"go-event-cms/modules/posts/controller"
)

type PostRouter struct {
	Controller *controller.PostController
}

func NewPostRouter(ctrl *controller.PostController) *PostRouter {
	return &PostRouter{Controller: ctrl}
}

func (r *PostRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	pub := e.Group("/api/v1/public/posts")
	pub.GET("", r.Controller.ListPublished)
	pub.GET("/slug/:slug", r.Controller.GetBySlug)

	priv := e.Group("/api/v1/private/posts", mw.AuthMiddleware())
	priv.GET("", r.Controller.ListAll)
	edit := priv.Group("", mw.RequirePrivilege(constants.PrivilegeEdit))
	edit.POST("", r.Controller.Create)
	edit.PUT("/:id", r.Controller.Update)
	edit.DELETE("/:id", r.Controller.Delete)
}
