package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvGatewayWebhookSecret = "GATEWAY_WEBHOOK_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMaxRoomsPerReservation = "MAX_ROOMS_PER_RESERVATION"
	EnvMaxDatesPerReservation = "MAX_DATES_PER_RESERVATION"
	EnvSlotLockTTL            = "SLOT_LOCK_TTL"

	EnvReservationEventsTopic    = "RESERVATION_EVENTS_TOPIC"
	EnvReservationEventsDLQTopic = "RESERVATION_EVENTS_DLQ_TOPIC"
	EnvPaymentEventsTopic        = "PAYMENT_EVENTS_TOPIC"
	EnvPaymentEventsDLQTopic     = "PAYMENT_EVENTS_DLQ_TOPIC"
	EnvPaymentConsumerGroup      = "PAYMENT_CONSUMER_GROUP"
)
