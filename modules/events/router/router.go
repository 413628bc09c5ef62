package router

import (
	"github.com/labstack/echo/v4"

	"go-event-cms/core/constants"
	"go-event-cms/core/middleware"
	"go-event-cms/modules/events/controller"
)

type EventRouter struct {
	Controller *controller.EventController
}

func NewEventRouter(ctrl *controller.EventController) *EventRouter {
	return &EventRouter{Controller: ctrl}
}

func (r *EventRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	pub := v1.Group("/public/events")
	pub.GET("/upcoming", r.Controller.ListUpcoming)
	pub.GET("/slug/:slug", r.Controller.GetBySlug)

	priv := v1.Group("/private/events", mw.AuthMiddleware())
	priv.GET("/:id", r.Controller.Get)
	edit := priv.Group("", mw.RequirePrivilege(constants.PrivilegeEdit))
	edit.POST("", r.Controller.Create)
	edit.PUT("/:id", r.Controller.Update)
	edit.DELETE("/:id", r.Controller.Delete)
}
