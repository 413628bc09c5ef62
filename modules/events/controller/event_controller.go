package controller

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"go-event-cms/core/controller"
	"go-event-cms/core/errors"
	"go-event-cms/core/middleware"
	"go-event-cms/modules/events/dto"
	"go-event-cms/modules/events/service"
	"go-event-cms/modules/events/validator"
)

type EventController struct {
	controller.BaseController
	EventService service.EventServiceInterface
}

func NewEventController(eventService service.EventServiceInterface) *EventController {
	return &EventController{
		BaseController: controller.NewBaseController(),
		EventService:   eventService,
	}
}

func (ctrl *EventController) Create(c echo.Context) error {
	ctx := c.Request().Context()

	claims := middleware.TokenData(c)
	if claims == nil {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Authentication required")
	}

	requestData := new(dto.EventRequest)
	if err := c.Bind(requestData); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	form, validationResult := validator.ValidateEventRequest(requestData)
	if validationResult.HasError() {
		return ctrl.BadRequest(errors.ErrInvalidInput, validationResult.Message(), validationResult)
	}

	eventResponse, appErr := ctrl.EventService.CreateEvent(ctx, claims.UserID, form)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, eventResponse, "Event created")
}

func (ctrl *EventController) Update(c echo.Context) error {
	ctx := c.Request().Context()

	claims := middleware.TokenData(c)
	if claims == nil {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Authentication required")
	}

	requestData := new(dto.EventRequest)
	if err := c.Bind(requestData); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	form, validationResult := validator.ValidateEventRequest(requestData)
	if validationResult.HasError() {
		return ctrl.BadRequest(errors.ErrInvalidInput, validationResult.Message(), validationResult)
	}

	eventResponse, appErr := ctrl.EventService.UpdateEvent(ctx, claims.UserID, c.Param("id"), form)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, eventResponse, "Event updated")
}

func (ctrl *EventController) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	claims := middleware.TokenData(c)
	if claims == nil {
		return ctrl.Unauthorized(errors.ErrUnauthorized, "Authentication required")
	}

	scope := c.QueryParam("scope")
	if appErr := ctrl.EventService.DeleteEvent(ctx, claims.UserID, c.Param("id"), scope); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, nil, "Event deleted")
}

func (ctrl *EventController) Get(c echo.Context) error {
	ctx := c.Request().Context()

	eventResponse, appErr := ctrl.EventService.GetEvent(ctx, c.Param("id"))
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, eventResponse, "Event fetched")
}

func (ctrl *EventController) GetBySlug(c echo.Context) error {
	ctx := c.Request().Context()

	eventResponse, appErr := ctrl.EventService.GetEventBySlug(ctx, c.Param("slug"))
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, eventResponse, "Event fetched")
}

func (ctrl *EventController) ListUpcoming(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	eventResponses, appErr := ctrl.EventService.ListUpcoming(ctx, limit)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}

	return ctrl.SuccessResponse(c, eventResponses, "Upcoming events fetched")
}
