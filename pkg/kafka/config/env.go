package kafkaconfig

const (
	EnvKafkaBrokers  = "KAFKA_BROKERS"
	EnvKafkaClientID = "KAFKA_CLIENT_ID"

	EnvEventsMaxAttempts     = "EVENTS_MAX_ATTEMPTS"
	EnvEventsBatchTimeout    = "EVENTS_BATCH_TIMEOUT"
	EnvEventsWriteTimeout    = "EVENTS_WRITE_TIMEOUT"
	EnvEventsRequiredAcks    = "EVENTS_REQUIRED_ACKS"
	EnvEventsCompression     = "EVENTS_COMPRESSION"
	EnvEventsAutoCreateTopic = "EVENTS_AUTO_CREATE_TOPIC"
)
