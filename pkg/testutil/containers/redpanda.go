//go:build integration

package containers

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
)

// RedpandaContainer is a Kafka-compatible broker for the messaging tests.
type RedpandaContainer struct {
	Container testcontainers.Container
	Broker    string
}

func startRedpanda() (*RedpandaContainer, error) {
	ctx := context.Background()

	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.1.7")
	if err != nil {
		return nil, fmt.Errorf("start redpanda: %w", err)
	}
	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("redpanda seed broker: %w", err)
	}
	return &RedpandaContainer{Container: container, Broker: broker}, nil
}
