package kafka

import (
	"time"
)

// Config holds Kafka producer configuration
type Config struct {
	Brokers  []string
	ClientID string

	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:  []string{"localhost:9092"},
		ClientID: "booking-service",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
	}
}

// Topics contains the freight platform topic names this service publishes to
var Topics = struct {
	BookingEvents    string
	RoutingEvents    string
	AllocationEvents string
}{
	BookingEvents:    "freight.bookings.events",
	RoutingEvents:    "freight.routing.events",
	AllocationEvents: "freight.allocations.events",
}
