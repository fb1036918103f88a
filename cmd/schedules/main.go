package main

import (
	"mediops/internal/health"
	"mediops/internal/schedules/handler"
	"mediops/internal/schedules/repository"
	"mediops/internal/schedules/service"
	"mediops/internal/schedules/validator"
	"mediops/pkg/app"
	"mediops/pkg/config"
)

const ServiceName = "schedules"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Schedules service")
	scheduleService := initServices(cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		handler.NewScheduleHandler(scheduleService, cfg.Log),
		health.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ScheduleService {
	scheduleValidator := validator.NewScheduleValidator(cfg.Log)
	scheduleRepo := repository.NewMongoScheduleRepository(cfg)
	scheduleService := service.NewScheduleService(
		scheduleRepo,
		scheduleValidator,
		cfg,
	)

	cfg.Log.Info("Schedule service initialized", "database", cfg.MongoDatabaseName)
	return scheduleService
}
