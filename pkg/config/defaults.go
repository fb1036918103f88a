package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "mediops"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	// Capacity defaults applied when an admin omits them from a schedule.
	DefaultMaxNormalPatients  = 6
	DefaultMaxPremiumPatients = 2

	// Appointment tokens collide (~26k values); bounded regeneration
	// attempts before the booking fails outward.
	DefaultBookingIDAttempts = 5

	// Attempts for the occupancy check-and-increment before giving up on
	// a contended slot bucket.
	DefaultCapacityRetryAttempts = 3

	DefaultAppointmentEventsTopic = "mediops.appointment.events"
	DefaultLifecycleTopic         = "mediops.appointment.lifecycle"
	DefaultLifecycleGroupID       = "appointments-lifecycle"
	DefaultEventsDLQTopic         = "mediops.appointment.events.dlq"
)
