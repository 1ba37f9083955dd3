// Package kafka bootstraps the envelope topic. Producing and consuming
// live in the producer and consumer subpackages.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"parley/internal/platform/config"
)

// defaultReplication lets the broker pick its configured replication factor.
const defaultReplication int16 = -1

// EnsureTopic creates the configured topic when it does not exist yet.
func EnsureTopic(ctx context.Context, cfg config.Kafka, logger *slog.Logger) error {
	client, err := kgo.NewClient(kgo.SeedBrokers(cfg.Brokers...))
	if err != nil {
		return fmt.Errorf("kafka admin client: %w", err)
	}
	defer client.Close()

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, cfg.Partitions, defaultReplication, nil, cfg.Topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", cfg.Topic, err)
	}
	if resp.Err != nil {
		if errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create topic %s: %w", cfg.Topic, resp.Err)
	}
	logger.InfoContext(ctx, "kafka topic created",
		"topic", cfg.Topic,
		"partitions", cfg.Partitions,
	)
	return nil
}
