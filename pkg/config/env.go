package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMaxNormalPatients     = "MAX_NORMAL_PATIENTS"
	EnvMaxPremiumPatients    = "MAX_PREMIUM_PATIENTS"
	EnvBookingIDAttempts     = "BOOKING_ID_ATTEMPTS"
	EnvCapacityRetryAttempts = "CAPACITY_RETRY_ATTEMPTS"

	EnvAppointmentEventsTopic = "APPOINTMENT_EVENTS_TOPIC"
	EnvLifecycleTopic         = "APPOINTMENT_LIFECYCLE_TOPIC"
	EnvLifecycleGroupID       = "APPOINTMENT_LIFECYCLE_GROUP_ID"
	EnvEventsDLQTopic         = "APPOINTMENT_EVENTS_DLQ_TOPIC"
)
