package kafka

import (
	"context"
	"testing"

	kafka_config "yatranepal/pkg/kafka/config"
	"yatranepal/pkg/logger"
)

func testConfig() *kafka_config.Config {
	return &kafka_config.Config{
		Brokers:             []string{"localhost:9092"},
		ProducerMaxAttempts: 3,
		ProducerRequireAcks: -1,
		ProducerCompression: "snappy",
		ConsumerMaxRetries:  3,
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func TestNewProducer_Validation(t *testing.T) {
	log := testLogger()

	cases := []struct {
		name  string
		cfg   *kafka_config.Config
		topic string
		log   *logger.Logger
	}{
		{"nil config", nil, "events", log},
		{"no brokers", &kafka_config.Config{}, "events", log},
		{"empty topic", testConfig(), "", log},
		{"nil logger", testConfig(), "events", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewProducer(tc.cfg, tc.topic, "", tc.log); err == nil {
				t.Error("expected constructor to reject invalid input")
			}
		})
	}
}

func TestNewConsumer_Validation(t *testing.T) {
	log := testLogger()
	handler := func(ctx context.Context, msg Message) error { return nil }

	cases := []struct {
		name    string
		cfg     *kafka_config.Config
		topic   string
		groupID string
		handler MessageHandler
		log     *logger.Logger
	}{
		{"nil config", nil, "events", "group", handler, log},
		{"empty topic", testConfig(), "", "group", handler, log},
		{"empty group", testConfig(), "events", "", handler, log},
		{"nil handler", testConfig(), "events", "group", nil, log},
		{"nil logger", testConfig(), "events", "group", handler, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewConsumer(tc.cfg, tc.topic, tc.groupID, "", tc.handler, tc.log); err == nil {
				t.Error("expected constructor to reject invalid input")
			}
		})
	}
}
