package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"parley/internal/account"
	attrmodels "parley/internal/attributes/models"
	attrservice "parley/internal/attributes/service"
	attrstore "parley/internal/attributes/store"
	"parley/internal/platform/kafka/consumer"
	"parley/internal/platform/metrics"
	"parley/internal/requests/models"
	"parley/internal/requests/processors"
	"parley/internal/requests/service"
	"parley/internal/requests/store"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/requestcontext"
)

const (
	alice id.Address = "did:e:alice"
	bob   id.Address = "did:e:bob"
	carol id.Address = "did:e:carol"
)

// bus is an in-process stand-in for the envelope topic.
type bus struct {
	mu      sync.Mutex
	records [][]byte
	err     error
}

func (b *bus) Produce(_ context.Context, _, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.records = append(b.records, value)
	return nil
}

func (b *bus) take() *consumer.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.records) == 0 {
		return nil
	}
	msg := &consumer.Message{Topic: "parley.envelopes", Value: b.records[0]}
	b.records = b.records[1:]
	return msg
}

type node struct {
	attributes *attrservice.Service
	outgoing   *service.Outgoing
	incoming   *service.Incoming
	courier    *Courier
	dispatcher *Dispatcher
	metrics    *metrics.Metrics
}

func newNode(address id.Address, b *bus, peers ...id.Address) *node {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	attributes := attrservice.New(attrstore.NewInMemory(), attrservice.WithLogger(logger))
	identity := account.NewIdentity(address)
	registry := processors.NewDefaultRegistry(processors.Dependencies{
		Attributes:    attributes,
		Identity:      identity,
		Relationships: account.NewInMemoryRelationships(peers...),
		Logger:        logger,
	})
	deps := service.Dependencies{Store: store.NewInMemory(), Registry: registry, Identity: identity}
	outgoing := service.NewOutgoing(deps, service.WithLogger(logger), service.WithMetrics(m))
	incoming := service.NewIncoming(deps, service.WithLogger(logger), service.WithMetrics(m))
	return &node{
		attributes: attributes,
		outgoing:   outgoing,
		incoming:   incoming,
		courier:    NewCourier(b, identity, outgoing, incoming, logger),
		dispatcher: NewDispatcher(identity, incoming, outgoing,
			WithDispatcherLogger(logger),
			WithDispatcherMetrics(m),
			WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC) }),
		),
		metrics: m,
	}
}

func (n *node) handled(kind Kind, outcome string) float64 {
	return testutil.ToFloat64(n.metrics.MessagesHandled.WithLabelValues(string(kind), outcome))
}

type ExchangeSuite struct {
	suite.Suite
	ctx   context.Context
	bus   *bus
	alice *node
	bob   *node
}

func TestExchangeSuite(t *testing.T) {
	suite.Run(t, new(ExchangeSuite))
}

func (s *ExchangeSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	s.bus = &bus{}
	s.alice = newNode(alice, s.bus, bob)
	s.bob = newNode(bob, s.bus, alice)
}

func (s *ExchangeSuite) deliver(to *node) {
	msg := s.bus.take()
	s.Require().NotNil(msg, "no envelope on the bus")
	s.Require().NoError(to.dispatcher.Handle(s.ctx, msg))
}

func (s *ExchangeSuite) createReadRequest() *models.Request {
	r, err := s.alice.outgoing.Create(s.ctx, service.CreateOutgoingParameters{
		Peer: bob,
		Content: models.RequestContent{Items: []models.RequestEntry{models.Leaf(models.ReadAttributeRequestItem{
			ItemBase: models.ItemBase{MustBeAccepted: true},
			Query:    attrmodels.Query{Type: attrmodels.QueryTypeIdentity, ValueType: "GivenName"},
		})}},
	})
	s.Require().NoError(err)
	return r
}

func (s *ExchangeSuite) TestRoundTripOverTheBus() {
	created := s.createReadRequest()

	sent, err := s.alice.courier.SendRequest(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, sent.Status)
	s.Require().NotNil(sent.Source)
	s.Equal(models.RequestSourceMessage, sent.Source.Type)

	s.deliver(s.bob)
	received, err := s.bob.incoming.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, received.Status)
	s.Equal(alice, received.Peer)
	s.Equal(sent.Source.Reference, received.Source.Reference)

	name, err := s.bob.attributes.CreateAttribute(s.ctx, attrmodels.Content{
		Kind: attrmodels.KindIdentity, Owner: bob, ValueType: "GivenName", Value: json.RawMessage(`"Bob"`),
	})
	s.Require().NoError(err)
	_, err = s.bob.incoming.Accept(s.ctx, models.DecideRequestParameters{
		RequestID: created.ID,
		Items:     []models.DecideItemParameters{models.AcceptItem(models.AcceptParams{AttributeID: name.ID})},
	})
	s.Require().NoError(err)

	answered, err := s.bob.courier.SendResponse(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusAnswered, answered.Status)

	s.deliver(s.alice)
	completed, err := s.alice.outgoing.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, completed.Status)
	s.Require().NotNil(completed.Response.Source)
	s.Equal(answered.Response.Source.Reference, completed.Response.Source.Reference)

	s.Equal(1.0, s.bob.handled(KindRequest, outcomeHandled))
	s.Equal(1.0, s.alice.handled(KindResponse, outcomeHandled))
}

func (s *ExchangeSuite) TestSendRequestTwiceIsRefusedBeforePublishing() {
	created := s.createReadRequest()
	_, err := s.alice.courier.SendRequest(s.ctx, created.ID)
	s.Require().NoError(err)
	s.bus.take()

	_, err = s.alice.courier.SendRequest(s.ctx, created.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.Nil(s.bus.take())
}

func (s *ExchangeSuite) TestPublishFailureLeavesDraft() {
	created := s.createReadRequest()
	s.bus.err = errors.New("broker down")

	_, err := s.alice.courier.SendRequest(s.ctx, created.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	r, err := s.alice.outgoing.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusDraft, r.Status)
}

func (s *ExchangeSuite) TestDuplicateDeliveryIsIdempotent() {
	created := s.createReadRequest()
	_, err := s.alice.courier.SendRequest(s.ctx, created.ID)
	s.Require().NoError(err)
	msg := s.bus.take()

	s.Require().NoError(s.bob.dispatcher.Handle(s.ctx, msg))
	s.Require().NoError(s.bob.dispatcher.Handle(s.ctx, msg))

	s.Equal(1.0, s.bob.handled(KindRequest, outcomeHandled))
	s.Equal(1.0, s.bob.handled(KindRequest, outcomeDuplicate))
}

func (s *ExchangeSuite) TestEnvelopesForOthersAreSkipped() {
	created := s.createReadRequest()
	_, err := s.alice.courier.SendRequest(s.ctx, created.ID)
	s.Require().NoError(err)

	carolNode := newNode(carol, s.bus)
	s.deliver(carolNode)

	s.Equal(1.0, carolNode.handled(KindRequest, outcomeSkipped))
	_, err = carolNode.incoming.Get(s.ctx, created.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ExchangeSuite) TestMalformedEnvelopeIsDropped() {
	err := s.bob.dispatcher.Handle(s.ctx, &consumer.Message{Value: []byte("not json")})
	s.NoError(err)
	s.Equal(1.0, s.bob.handled("unknown", outcomeMalformed))
}

func (s *ExchangeSuite) TestInvalidResponseFailsTheRequest() {
	created := s.createReadRequest()
	_, err := s.alice.courier.SendRequest(s.ctx, created.ID)
	s.Require().NoError(err)
	s.bus.take()

	// wrong number of items for the request
	raw, err := Encode(Envelope{
		ID: "MSG-bad", Kind: KindResponse, From: bob, To: alice,
		Response: &models.ResponseContent{Result: models.ResponseAccepted, RequestID: created.ID},
	})
	s.Require().NoError(err)
	s.Require().NoError(s.alice.dispatcher.Handle(s.ctx, &consumer.Message{Value: raw}))

	r, err := s.alice.outgoing.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusError, r.Status)
	s.NotEmpty(r.ErrorReason)
	s.Equal(1.0, s.alice.handled(KindResponse, outcomeInvalid))
}

func (s *ExchangeSuite) TestResponseFromStrangerIsIgnored() {
	created := s.createReadRequest()
	_, err := s.alice.courier.SendRequest(s.ctx, created.ID)
	s.Require().NoError(err)
	s.bus.take()

	raw, err := Encode(Envelope{
		ID: "MSG-forged", Kind: KindResponse, From: carol, To: alice,
		Response: &models.ResponseContent{
			Result:    models.ResponseRejected,
			RequestID: created.ID,
			Items:     []models.ResponseEntry{{Item: models.RejectResponseItem{}}},
		},
	})
	s.Require().NoError(err)
	s.Require().NoError(s.alice.dispatcher.Handle(s.ctx, &consumer.Message{Value: raw}))

	r, err := s.alice.outgoing.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, r.Status)
	s.Equal(1.0, s.alice.handled(KindResponse, outcomeRejected))
}
