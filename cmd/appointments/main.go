package main

import (
	"context"

	appointmenthandler "mediops/internal/appointments/handler"
	"mediops/internal/appointments/repository"
	"mediops/internal/appointments/service"
	"mediops/internal/appointments/validator"
	"mediops/internal/health"
	schedulerepo "mediops/internal/schedules/repository"
	"mediops/pkg/app"
	"mediops/pkg/config"
	"mediops/pkg/kafka"
	kafka_config "mediops/pkg/kafka/config"
	kafka_middleware "mediops/pkg/kafka/middleware"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	cfg.Log.Info("Starting Appointments service")

	producer, err := kafka.NewProducer(kafkaCfg, cfg.AppointmentEventsTopic, cfg.EventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware())

	appointmentService := initServices(cfg, producer)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.LifecycleTopic,
		cfg.LifecycleGroupID,
		cfg.EventsDLQTopic,
		service.NewLifecycleHandler(appointmentService, cfg.Log),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware())

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(consumerCtx); err != nil {
			cfg.Log.Error("Lifecycle consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		appointmenthandler.NewAppointmentHandler(appointmentService, cfg.Log),
		health.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.OnShutdown(func() {
		stopConsumer()
		if err := consumer.Close(); err != nil {
			cfg.Log.Warn("Failed to close Kafka consumer", "error", err)
		}
		if err := producer.Close(); err != nil {
			cfg.Log.Warn("Failed to close Kafka producer", "error", err)
		}
		appointmentService.Stop()
	})
	serverApp.Run()
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.AppointmentService {
	appointmentValidator := validator.NewAppointmentValidator(cfg.Log)
	appointmentRepo := repository.NewMongoAppointmentRepository(cfg)
	occupancyRepo := repository.NewMongoOccupancyRepository(cfg)
	patientRepo := repository.NewMongoPatientRepository(cfg)
	scheduleRepo := schedulerepo.NewMongoScheduleRepository(cfg)
	publisher := service.NewKafkaEventPublisher(producer)

	appointmentService := service.NewAppointmentService(
		appointmentRepo,
		occupancyRepo,
		patientRepo,
		scheduleRepo,
		appointmentValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Appointment service initialized", "database", cfg.MongoDatabaseName)
	return appointmentService
}
