package events

import (
	"go-event-cms/core/config"
	"go-event-cms/core/database"
	"go-event-cms/core/middleware"
	"go-event-cms/modules/events/controller"
	"go-event-cms/modules/events/gcal"
	"go-event-cms/modules/events/repository"
	"go-event-cms/modules/events/router"
	"go-event-cms/modules/events/service"

	"github.com/labstack/echo/v4"
)

// Init wires the events module: mongo stores, repository, calendar sync
// client, service and routes. The calendar API is built by the server so a
// missing credentials file fails startup in one place.
func Init(e *echo.Echo, db database.IDatabase, api gcal.CalendarAPI, authorizer service.Authorizer, mw *middleware.Middleware) error {
	eventStore := repository.NewMongoEventStore(db.Collection("events"))
	seriesStore := repository.NewMongoSeriesStore(db.Collection("event_series"))
	repo := repository.NewEventRepository(eventStore, seriesStore)

	sync, err := gcal.NewClient(api, config.Get().GoogleCalendar, repo)
	if err != nil {
		return err
	}

	eventService := service.NewEventService(repo, sync, authorizer)
	ctrl := controller.NewEventController(eventService)
	router.NewEventRouter(ctrl).Setup(e, mw)
	return nil
}
