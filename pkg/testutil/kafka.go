package testutil

import (
	"context"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

// KafkaContainer wraps a single-node Kafka broker for integration tests.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   []string
}

// StartKafka starts a broker and registers its termination with t.Cleanup.
func StartKafka(ctx context.Context, t *testing.T) *KafkaContainer {
	t.Helper()

	c, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		kafka.WithClusterID("dkledger-test"),
	)
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Terminate(ctx); err != nil {
			t.Logf("warning: failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := c.Brokers(ctx)
	if err != nil {
		t.Fatalf("failed to get kafka brokers: %v", err)
	}
	return &KafkaContainer{Container: c, Brokers: brokers}
}

// CreateTopics creates single-partition topics on the broker.
func (kc *KafkaContainer) CreateTopics(t *testing.T, topics ...string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", kc.Brokers[0])
	if err != nil {
		t.Fatalf("failed to dial kafka: %v", err)
	}
	defer conn.Close()

	configs := make([]kafkago.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	}
	if err := conn.CreateTopics(configs...); err != nil {
		t.Fatalf("failed to create topics %v: %v", topics, err)
	}
}
