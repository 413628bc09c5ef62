package posts

import (
	"github.com/labstack/echo/v4"

	"go-event-cms/core/database"
	"go-event-cms/core/middleware"
	"go-event-cms/modules/posts/controller"
	"go-event-cms/modules/posts/repository"
	"go-event-cms/modules/posts/router"
	"go-event-cms/modules/posts/service"
)

func Init(e *echo.Echo, db database.IDatabase, authorizer service.Authorizer, mw *middleware.Middleware) {
	repo := repository.NewPostRepository(db)
	postService := service.NewPostService(repo, authorizer)
	ctrl := controller.NewPostController(postService)
	router.NewPostRouter(ctrl).Setup(e, mw)
}
