//go:build integration

package kafka_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"parley/internal/platform/config"
	"parley/internal/platform/kafka"
	"parley/internal/platform/kafka/consumer"
	"parley/internal/platform/kafka/producer"
	"parley/pkg/testutil/containers"
)

type KafkaSuite struct {
	suite.Suite
	cfg    config.Kafka
	logger *slog.Logger
}

func TestKafkaSuite(t *testing.T) {
	suite.Run(t, new(KafkaSuite))
}

func (s *KafkaSuite) SetupSuite() {
	broker := containers.GetManager().GetRedpanda(s.T()).Broker
	s.cfg = config.Kafka{
		Brokers:       []string{broker},
		Topic:         "parley.envelopes.test",
		ConsumerGroup: "parley-test",
		Partitions:    1,
	}
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *KafkaSuite) TestEnsureTopicIsIdempotent() {
	ctx := context.Background()
	s.Require().NoError(kafka.EnsureTopic(ctx, s.cfg, s.logger))
	s.Require().NoError(kafka.EnsureTopic(ctx, s.cfg, s.logger))
}

func (s *KafkaSuite) TestProducedRecordReachesHandler() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(kafka.EnsureTopic(ctx, s.cfg, s.logger))

	p, err := producer.New(s.cfg)
	s.Require().NoError(err)
	defer p.Close()
	s.Require().NoError(p.Produce(ctx, []byte("did:e:bob"), []byte(`{"hello":"bob"}`)))

	received := make(chan *consumer.Message, 1)
	c, err := consumer.New(s.cfg, consumer.HandlerFunc(func(_ context.Context, msg *consumer.Message) error {
		select {
		case received <- msg:
		default:
		}
		return nil
	}), s.logger)
	s.Require().NoError(err)
	defer c.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx) }()

	select {
	case msg := <-received:
		s.Equal("did:e:bob", string(msg.Key))
		s.JSONEq(`{"hello":"bob"}`, string(msg.Value))
		s.Equal(s.cfg.Topic, msg.Topic)
	case <-ctx.Done():
		s.Fail("no record consumed")
	}
	stop()
	s.NoError(<-done)
}
