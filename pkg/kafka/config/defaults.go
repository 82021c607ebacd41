package kafkaconfig

import "time"

const (
	DefaultKafkaBrokers  = "localhost:9092"
	DefaultKafkaClientID = "reservations"

	DefaultMaxAttempts     = 3
	DefaultBatchTimeout    = 10 * time.Millisecond
	DefaultWriteTimeout    = 5 * time.Second
	DefaultRequiredAcks    = AcksAll
	DefaultCompression     = "snappy"
	DefaultAutoCreateTopic = false
)

const (
	AcksAll    = "all"
	AcksLeader = "leader"
	AcksNone   = "none"
)
