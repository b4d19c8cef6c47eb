package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/agendo/agendo/internal/config"
	"github.com/agendo/agendo/internal/event_bus"
	"github.com/agendo/agendo/internal/utils"
	"github.com/agendo/agendo/pkg/activity"
	"github.com/agendo/agendo/pkg/export"
	"github.com/agendo/agendo/pkg/registry"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	Registry        *registry.Registry
	CalendarService registry.Service
	CalendarHandler *registry.Handler

	ActivityService activity.Service
	ActivityHandler *activity.Handler

	CSVRenderer   *export.CSVRenderer
	ICSRenderer   *export.ICSRenderer
	ExportHandler *export.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	hours, err := cfg.Workday.Hours()
	if err != nil {
		return nil, err
	}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.Registry = registry.New(hours)
	calendarService := registry.NewService(deps.Registry, deps.EventBus)
	deps.CalendarService = calendarService
	deps.CalendarHandler = registry.NewHandler(calendarService)

	// The activity feed subscribes before the first calendar is created so
	// the startup calendar shows up in it.
	deps.ActivityService = activity.NewService(deps.EventBus, deps.Clock)
	deps.ActivityHandler = activity.NewHandler(deps.ActivityService)

	deps.CSVRenderer = export.NewCSVRenderer()
	deps.ICSRenderer = export.NewICSRenderer(deps.Clock)
	deps.ExportHandler = export.NewHandler(calendarService, deps.CSVRenderer, deps.ICSRenderer)

	if cfg.Calendar.Name != "" {
		if _, err := calendarService.CreateCalendar(context.Background(), cfg.Calendar.Name, cfg.Calendar.Timezone); err != nil {
			return nil, err
		}
		log.Infof("Created startup calendar %q in zone %s", cfg.Calendar.Name, cfg.Calendar.Timezone)
	}

	return deps, nil
}
