package producer

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"parley/internal/platform/config"
)

// Producer writes records synchronously to the configured topic.
type Producer struct {
	client *kgo.Client
	topic  string
}

func New(cfg config.Kafka, opts ...kgo.Opt) (*Producer, error) {
	base := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &Producer{client: client, topic: cfg.Topic}, nil
}

// Produce blocks until the broker acknowledged the record.
func (p *Producer) Produce(ctx context.Context, key, value []byte) error {
	if err := p.client.ProduceSync(ctx, &kgo.Record{Topic: p.topic, Key: key, Value: value}).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Producer) Close() {
	p.client.Close()
}
