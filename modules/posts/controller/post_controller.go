package controller

import (
	"github.com/labstack/echo/v4"

	"go-event-cms/core/controller"
	"go-event-cms/core/errors"
	"go-event-cms/core/middleware"
	"go-event-cms/core/params"
	"go-event-cms/modules/posts/dto"
	"go-event-cms/modules/posts/service"
)

type PostController struct {
	controller.BaseController
	PostService service.PostServiceInterface
}

func NewPostController(postService service.PostServiceInterface) *PostController {
	return &PostController{
		BaseController: controller.NewBaseController(),
		PostService:    postService,
	}
}

func (ctrl *PostController) Create(c echo.Context) error {
	ctx := c.Request().Context()

	claims := middleware.TokenData(c)
	if claims == nil {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Authentication required")
	}

	requestData := new(dto.PostRequest)
	if err := c.Bind(requestData); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	postResponse, appErr := ctrl.PostService.CreatePost(ctx, claims.UserID, requestData)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, postResponse, "Post created")
}

func (ctrl *PostController) Update(c echo.Context) error {
	ctx := c.Request().Context()

	claims := middleware.TokenData(c)
	if claims == nil {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Authentication required")
	}

	requestData := new(dto.PostRequest)
	if err := c.Bind(requestData); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	postResponse, appErr := ctrl.PostService.UpdatePost(ctx, claims.UserID, c.Param("id"), requestData)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, postResponse, "Post updated")
}

func (ctrl *PostController) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	claims := middleware.TokenData(c)
	if claims == nil {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Authentication required")
	}

	if appErr := ctrl.PostService.DeletePost(ctx, claims.UserID, c.Param("id")); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, nil, "Post deleted")
}

func (ctrl *PostController) GetBySlug(c echo.Context) error {
	ctx := c.Request().Context()

	postResponse, appErr := ctrl.PostService.GetPostBySlug(ctx, c.Param("slug"))
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, postResponse, "Post fetched")
}

func (ctrl *PostController) ListPublished(c echo.Context) error {
	ctx := c.Request().Context()

	listResponse, appErr := ctrl.PostService.ListPublished(ctx, params.NewQueryParams(c))
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, listResponse, "Posts fetched")
}

func (ctrl *PostController) ListAll(c echo.Context) error {
	ctx := c.Request().Context()

	listResponse, appErr := ctrl.PostService.ListAll(ctx, params.NewQueryParams(c))
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, listResponse, "Posts fetched")
}
