package controller

import (
	"github.com/labstack/echo/v4"

	"go-event-cms/core/controller"
	"go-event-cms/core/errors"
	"go-event-cms/core/middleware"
	"go-event-cms/modules/auth/dto"
	"go-event-cms/modules/auth/service"
	"go-event-cms/modules/auth/validator"
)

type AuthController struct {
	controller.BaseController
	AuthService service.AuthServiceInterface
}

func NewAuthController(authService service.AuthServiceInterface) *AuthController {
	return &AuthController{
		BaseController: controller.NewBaseController(),
		AuthService:    authService,
	}
}

func (ctrl *AuthController) Register(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.RegisterRequest)
	if err := c.Bind(requestData); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateRegisterRequest(requestData)
	if validationResult.HasError() {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	tokenResponse, appErr := ctrl.AuthService.Register(ctx, requestData)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, tokenResponse, "Register success")
}

func (ctrl *AuthController) Login(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.LoginRequest)
	if err := c.Bind(requestData); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateLoginRequest(requestData)
	if validationResult.HasError() {
		return ctrl.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	tokenResponse, appErr := ctrl.AuthService.Login(ctx, requestData)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, tokenResponse, "Login success")
}

func (ctrl *AuthController) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.RefreshRequest)
	if err := c.Bind(requestData); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	tokenResponse, appErr := ctrl.AuthService.Refresh(ctx, requestData.RefreshToken)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, tokenResponse, "Token refreshed")
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.RefreshRequest)
	if err := c.Bind(requestData); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	if appErr := ctrl.AuthService.Logout(ctx, requestData.RefreshToken); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, nil, "Logout success")
}

func (ctrl *AuthController) Me(c echo.Context) error {
	ctx := c.Request().Context()

	claims := middleware.TokenData(c)
	if claims == nil {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Authentication required")
	}

	userResponse, appErr := ctrl.AuthService.GetUser(ctx, claims.UserID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, userResponse, "User fetched")
}
