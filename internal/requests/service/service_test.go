package service

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
	"github.com/stretchr/testify/suite"

	"parley/internal/account"
	attrmodels "parley/internal/attributes/models"
	attrservice "parley/internal/attributes/service"
	attrstore "parley/internal/attributes/store"
	"parley/internal/platform/metrics"
	"parley/internal/requests/models"
	"parley/internal/requests/processors"
	"parley/internal/requests/store"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/audit"
	auditmemory "parley/pkg/platform/audit/store/memory"
	"parley/pkg/requestcontext"
)

const (
	alice id.Address = "did:e:alice"
	bob   id.Address = "did:e:bob"
	carol id.Address = "did:e:carol"
)

// party is one engine: its own stores, identity and both controllers.
type party struct {
	address    id.Address
	attributes *attrservice.Service
	requests   *store.InMemory
	audit      *auditmemory.InMemoryStore
	outgoing   *Outgoing
	incoming   *Incoming
}

// flakyAttributes fails one CreatePeerAttribute call, counted from one.
type flakyAttributes struct {
	processors.AttributeService
	failCall int
	calls    int
}

func (f *flakyAttributes) CreatePeerAttribute(ctx context.Context, attributeID id.AttributeID, content attrmodels.Content, peer id.Address, requestRef id.RequestID) (*attrmodels.LocalAttribute, error) {
	f.calls++
	if f.calls == f.failCall {
		return nil, errors.New("transient store outage")
	}
	return f.AttributeService.CreatePeerAttribute(ctx, attributeID, content, peer, requestRef)
}

func newParty(address id.Address, peers ...id.Address) *party {
	return newPartyWith(address, nil, peers...)
}

// newPartyWith lets wrap decorate the attribute service the processors see.
func newPartyWith(address id.Address, wrap func(processors.AttributeService) processors.AttributeService, peers ...id.Address) *party {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditStore := auditmemory.NewInMemoryStore()
	publisher := audit.NewPublisher(auditStore)
	m := metrics.New(prometheus.NewRegistry())

	attributes := attrservice.New(attrstore.NewInMemory(), attrservice.WithLogger(logger), attrservice.WithAuditPublisher(publisher))
	identity := account.NewIdentity(address)
	var processorAttributes processors.AttributeService = attributes
	if wrap != nil {
		processorAttributes = wrap(attributes)
	}
	registry := processors.NewDefaultRegistry(processors.Dependencies{
		Attributes:    processorAttributes,
		Identity:      identity,
		Relationships: account.NewInMemoryRelationships(peers...),
		Logger:        logger,
	})
	requests := store.NewInMemory()
	deps := Dependencies{Store: requests, Registry: registry, Identity: identity}
	opts := []Option{WithLogger(logger), WithMetrics(m), WithAuditPublisher(publisher)}
	return &party{
		address:    address,
		attributes: attributes,
		requests:   requests,
		audit:      auditStore,
		outgoing:   NewOutgoing(deps, opts...),
		incoming:   NewIncoming(deps, opts...),
	}
}

func givenName(owner id.Address, value string) attrmodels.Content {
	return attrmodels.Content{
		Kind:      attrmodels.KindIdentity,
		Owner:     owner,
		ValueType: "GivenName",
		Value:     json.RawMessage(`"` + value + `"`),
	}
}

func readGivenName(mustBeAccepted bool) models.ReadAttributeRequestItem {
	return models.ReadAttributeRequestItem{
		ItemBase: models.ItemBase{MustBeAccepted: mustBeAccepted},
		Query:    attrmodels.Query{Type: attrmodels.QueryTypeIdentity, ValueType: "GivenName"},
	}
}

func messageSource(ref string) models.RequestSource {
	return models.RequestSource{Type: models.RequestSourceMessage, Reference: ref}
}

type ControllersSuite struct {
	suite.Suite
	ctx   context.Context
	alice *party
	bob   *party
}

func TestControllersSuite(t *testing.T) {
	suite.Run(t, new(ControllersSuite))
}

func (s *ControllersSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	s.alice = newParty(alice, bob)
	s.bob = newParty(bob, alice)
}

// receiveAtAlice delivers a request from bob to alice.
func (s *ControllersSuite) receiveAtAlice(entries ...models.RequestEntry) *models.Request {
	r, err := s.alice.incoming.Received(s.ctx, ReceivedParameters{
		Content: models.RequestContent{Items: entries},
		Source:  messageSource("MSG-in"),
		Sender:  bob,
	})
	s.Require().NoError(err)
	return r
}

func (s *ControllersSuite) TestAcceptWithForeignAttributeIsRefused() {
	foreign, err := s.alice.attributes.CreateAttribute(s.ctx, givenName(carol, "Carol"))
	s.Require().NoError(err)
	r := s.receiveAtAlice(models.Leaf(readGivenName(true)))

	params := models.DecideRequestParameters{
		RequestID: r.ID,
		Items:     []models.DecideItemParameters{models.AcceptItem(models.AcceptParams{AttributeID: foreign.ID})},
	}
	res, err := s.alice.incoming.CanAccept(s.ctx, params)
	s.Require().NoError(err)
	s.Require().True(res.IsError())
	s.Equal(processors.CodeAttributeNotOwned, res.FirstError().Code())

	_, err = s.alice.incoming.Accept(s.ctx, params)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	stored, err := s.alice.incoming.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, stored.Status)
	s.Nil(stored.Response)
}

func (s *ControllersSuite) TestIdentityCreateItemIsNeverPersisted() {
	params := CreateOutgoingParameters{
		Peer: bob,
		Content: models.RequestContent{Items: []models.RequestEntry{
			models.Leaf(models.CreateAttributeRequestItem{Attribute: givenName(bob, "Bob")}),
		}},
	}

	res, err := s.alice.outgoing.CanCreate(s.ctx, params)
	s.Require().NoError(err)
	s.Require().True(res.IsError())
	s.Equal(processors.CodeInvalidRequestItem, res.FirstError().Code())

	_, err = s.alice.outgoing.Create(s.ctx, params)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	all, err := s.alice.outgoing.List(s.ctx, models.Query{})
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ControllersSuite) TestReadRequestRoundTrip() {
	bobName, err := s.bob.attributes.CreateAttribute(s.ctx, givenName(bob, "Bob"))
	s.Require().NoError(err)

	// alice creates and sends
	created, err := s.alice.outgoing.Create(s.ctx, CreateOutgoingParameters{
		Peer:    bob,
		Content: models.RequestContent{Items: []models.RequestEntry{models.Leaf(readGivenName(true))}},
	})
	s.Require().NoError(err)
	s.Equal(models.StatusDraft, created.Status)

	_, err = s.alice.outgoing.Complete(s.ctx, CompleteOutgoingParameters{
		Response: models.ResponseContent{Result: models.ResponseAccepted, RequestID: created.ID},
		Source:   models.ResponseSource{Type: models.ResponseSourceMessage, Reference: "MSG-early"},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState), "completing a Draft must fail")

	sent, err := s.alice.outgoing.Sent(s.ctx, SentParameters{RequestID: created.ID, Source: messageSource("MSG-1"), Author: alice})
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, sent.Status)

	// bob receives, accepts and answers
	received, err := s.bob.incoming.Received(s.ctx, ReceivedParameters{Content: sent.Content, Source: messageSource("MSG-1"), Sender: alice})
	s.Require().NoError(err)
	s.Equal(created.ID, received.ID)
	s.Equal(models.StatusOpen, received.Status)

	decided, err := s.bob.incoming.Accept(s.ctx, models.DecideRequestParameters{
		RequestID: received.ID,
		Items:     []models.DecideItemParameters{models.AcceptItem(models.AcceptParams{AttributeID: bobName.ID})},
	})
	s.Require().NoError(err)
	s.Equal(models.StatusDecided, decided.Status)
	s.Require().NotNil(decided.Response)
	s.Equal(models.ResponseAccepted, decided.Response.Content.Result)

	answerSource := models.ResponseSource{Type: models.ResponseSourceMessage, Reference: "MSG-2"}
	answered, err := s.bob.incoming.Complete(s.ctx, CompleteIncomingParameters{RequestID: received.ID, Source: &answerSource})
	s.Require().NoError(err)
	s.Equal(models.StatusAnswered, answered.Status)

	// bob's shared copy carries provenance
	answer, ok := decided.Response.Content.Items[0].Item.(models.ReadAttributeAcceptResponseItem)
	s.Require().True(ok)
	copyAttr, err := s.bob.attributes.GetAttribute(s.ctx, answer.AttributeID)
	s.Require().NoError(err)
	s.Require().NotNil(copyAttr.ShareInfo)
	s.Equal(alice, copyAttr.ShareInfo.Peer)
	s.Equal(received.ID, copyAttr.ShareInfo.RequestReference)

	// alice applies the response
	completed, err := s.alice.outgoing.Complete(s.ctx, CompleteOutgoingParameters{
		Response: decided.Response.Content,
		Source:   answerSource,
		Sender:   bob,
	})
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, completed.Status)

	peerAttr, err := s.alice.attributes.GetAttribute(s.ctx, answer.AttributeID)
	s.Require().NoError(err)
	s.Equal(bob, peerAttr.Content.Owner)
	s.Equal(bob, peerAttr.ShareInfo.Peer)

	// status log ranks never decrease
	for _, r := range []*models.Request{completed, answered} {
		for i := 1; i < len(r.StatusLog); i++ {
			s.LessOrEqual(r.StatusLog[i-1].NewStatus.Rank(), r.StatusLog[i].NewStatus.Rank())
		}
	}
	s.Len(completed.StatusLog, 2)
	s.Len(answered.StatusLog, 2)

	events, err := s.alice.audit.ListByRequest(s.ctx, created.ID)
	s.Require().NoError(err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, string(audit.EventRequestCreated))
	s.Contains(actions, string(audit.EventRequestSent))
	s.Contains(actions, string(audit.EventRequestCompleted))
	s.Contains(actions, string(audit.EventPeerAttributeRecorded))
}

func (s *ControllersSuite) TestCompleteRetriesAfterPartialApply() {
	flaky := &flakyAttributes{failCall: 2}
	s.alice = newPartyWith(alice, func(a processors.AttributeService) processors.AttributeService {
		flaky.AttributeService = a
		return flaky
	}, bob)

	bobName, err := s.bob.attributes.CreateAttribute(s.ctx, givenName(bob, "Bob"))
	s.Require().NoError(err)
	created, err := s.alice.outgoing.Create(s.ctx, CreateOutgoingParameters{
		Peer: bob,
		Content: models.RequestContent{Items: []models.RequestEntry{
			models.Leaf(readGivenName(true)),
			models.Leaf(readGivenName(true)),
		}},
	})
	s.Require().NoError(err)
	sent, err := s.alice.outgoing.Sent(s.ctx, SentParameters{RequestID: created.ID, Source: messageSource("MSG-1"), Author: alice})
	s.Require().NoError(err)

	_, err = s.bob.incoming.Received(s.ctx, ReceivedParameters{Content: sent.Content, Source: messageSource("MSG-1"), Sender: alice})
	s.Require().NoError(err)
	accept := models.AcceptItem(models.AcceptParams{AttributeID: bobName.ID})
	decided, err := s.bob.incoming.Accept(s.ctx, models.DecideRequestParameters{
		RequestID: created.ID,
		Items:     []models.DecideItemParameters{accept, accept},
	})
	s.Require().NoError(err)

	params := CompleteOutgoingParameters{
		Response: decided.Response.Content,
		Source:   models.ResponseSource{Type: models.ResponseSourceMessage, Reference: "MSG-2"},
		Sender:   bob,
	}
	_, err = s.alice.outgoing.Complete(s.ctx, params)
	s.Require().Error(err)
	open, err := s.alice.outgoing.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, open.Status)

	completed, err := s.alice.outgoing.Complete(s.ctx, params)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, completed.Status)

	for _, entry := range decided.Response.Content.Items {
		answer, ok := entry.Item.(models.ReadAttributeAcceptResponseItem)
		s.Require().True(ok)
		recorded, err := s.alice.attributes.GetAttribute(s.ctx, answer.AttributeID)
		s.Require().NoError(err)
		s.Equal(created.ID, recorded.ShareInfo.RequestReference)
	}
}

func (s *ControllersSuite) TestCreate() {
	s.Run("unknown item type has no processor", func() {
		_, err := s.alice.outgoing.Create(s.ctx, CreateOutgoingParameters{
			Peer:    bob,
			Content: models.RequestContent{Items: []models.RequestEntry{models.Leaf(models.GenericRequestItem{Type: "ConsentRequestItem"})}},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeMissingProcessor))
	})

	s.Run("creation results aggregate over groups", func() {
		res, err := s.alice.outgoing.CanCreate(s.ctx, CreateOutgoingParameters{
			Peer: bob,
			Content: models.RequestContent{Items: []models.RequestEntry{
				models.Leaf(readGivenName(false)),
				models.Group("both", false,
					models.CreateAttributeRequestItem{Attribute: givenName(bob, "Bob")},
					models.ReadAttributeRequestItem{Query: attrmodels.Query{Type: attrmodels.QueryTypeIdentity}},
				),
			}},
		})
		s.Require().NoError(err)
		s.Require().True(res.IsError())
		s.Require().Len(res.Items(), 2)
		s.True(res.Items()[0].IsSuccess())
		s.Len(res.Items()[1].Items(), 2)
		s.Len(res.Errors(), 2)
	})

	s.Run("sent must be authored by us", func() {
		r, err := s.alice.outgoing.Create(s.ctx, CreateOutgoingParameters{
			Peer:    bob,
			Content: models.RequestContent{Items: []models.RequestEntry{models.Leaf(readGivenName(true))}},
		})
		s.Require().NoError(err)
		_, err = s.alice.outgoing.Sent(s.ctx, SentParameters{RequestID: r.ID, Source: messageSource("MSG"), Author: bob})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.alice.outgoing.Sent(s.ctx, SentParameters{RequestID: r.ID, Source: messageSource("MSG"), Author: alice})
		s.Require().NoError(err)
		_, err = s.alice.outgoing.Sent(s.ctx, SentParameters{RequestID: r.ID, Source: messageSource("MSG"), Author: alice})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *ControllersSuite) TestCompleteRejectsMalformedResponses() {
	r, err := s.alice.outgoing.Create(s.ctx, CreateOutgoingParameters{
		Peer:    bob,
		Content: models.RequestContent{Items: []models.RequestEntry{models.Leaf(readGivenName(true))}},
	})
	s.Require().NoError(err)
	_, err = s.alice.outgoing.Sent(s.ctx, SentParameters{RequestID: r.ID, Source: messageSource("MSG")})
	s.Require().NoError(err)
	source := models.ResponseSource{Type: models.ResponseSourceMessage, Reference: "MSG-r"}

	s.Run("item count mismatch", func() {
		_, err := s.alice.outgoing.Complete(s.ctx, CompleteOutgoingParameters{
			Response: models.ResponseContent{Result: models.ResponseAccepted, RequestID: r.ID},
			Source:   source,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("answer from a stranger", func() {
		_, err := s.alice.outgoing.Complete(s.ctx, CompleteOutgoingParameters{
			Response: models.ResponseContent{Result: models.ResponseRejected, RequestID: r.ID, Items: []models.ResponseEntry{{Item: models.RejectResponseItem{}}}},
			Source:   source,
			Sender:   carol,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("answer that does not match the query", func() {
		_, err := s.alice.outgoing.Complete(s.ctx, CompleteOutgoingParameters{
			Response: models.ResponseContent{Result: models.ResponseAccepted, RequestID: r.ID, Items: []models.ResponseEntry{{
				Item: models.ReadAttributeAcceptResponseItem{AttributeID: "ATT-x", Attribute: attrmodels.Content{
					Kind: attrmodels.KindIdentity, Owner: bob, ValueType: "Surname", Value: json.RawMessage(`"B"`),
				}},
			}}},
			Source: source,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	stored, err := s.alice.outgoing.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOpen, stored.Status)

	s.Run("rejection completes without side effects", func() {
		done, err := s.alice.outgoing.Complete(s.ctx, CompleteOutgoingParameters{
			Response: models.ResponseContent{Result: models.ResponseRejected, RequestID: r.ID, Items: []models.ResponseEntry{{Item: models.RejectResponseItem{Code: "no"}}}},
			Source:   source,
			Sender:   bob,
		})
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, done.Status)
		attrs, err := s.alice.attributes.ListAttributes(s.ctx, attrmodels.Filter{})
		s.Require().NoError(err)
		s.Empty(attrs)
	})
}

func (s *ControllersSuite) TestReceived() {
	s.Run("self-authored requests are refused", func() {
		_, err := s.alice.incoming.Received(s.ctx, ReceivedParameters{
			Content: models.RequestContent{Items: []models.RequestEntry{models.Leaf(readGivenName(true))}},
			Source:  messageSource("MSG"),
			Sender:  alice,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("duplicate delivery conflicts", func() {
		r := s.receiveAtAlice(models.Leaf(readGivenName(true)))
		_, err := s.alice.incoming.Received(s.ctx, ReceivedParameters{Content: r.Content, Source: messageSource("MSG"), Sender: bob})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("controllers do not touch each other's requests", func() {
		r := s.receiveAtAlice(models.Leaf(readGivenName(true)))
		_, err := s.alice.outgoing.Get(s.ctx, r.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		own, err := s.alice.outgoing.Create(s.ctx, CreateOutgoingParameters{
			Peer:    bob,
			Content: models.RequestContent{Items: []models.RequestEntry{models.Leaf(readGivenName(true))}},
		})
		s.Require().NoError(err)
		_, err = s.alice.incoming.Complete(s.ctx, CompleteIncomingParameters{RequestID: own.ID})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ControllersSuite) TestDecide() {
	s.Run("illegal decision trees fail before any processor runs", func() {
		r := s.receiveAtAlice(models.Leaf(readGivenName(true)))
		_, err := s.alice.incoming.Accept(s.ctx, models.DecideRequestParameters{
			RequestID: r.ID,
			Items:     []models.DecideItemParameters{models.RejectItem("", "")},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		attrs, err := s.alice.attributes.ListAttributes(s.ctx, attrmodels.Filter{})
		s.Require().NoError(err)
		s.Empty(attrs)
	})

	s.Run("reject answers every item with a rejection", func() {
		r := s.receiveAtAlice(models.Leaf(readGivenName(true)), models.Group("g", false, readGivenName(false)))
		decided, err := s.alice.incoming.Reject(s.ctx, models.DecideRequestParameters{
			RequestID: r.ID,
			Items: []models.DecideItemParameters{
				models.RejectItem("busy", "later"),
				models.DecideGroup(models.DecideRequestItemParameters{}),
			},
		})
		s.Require().NoError(err)
		s.Equal(models.StatusDecided, decided.Status)
		content := decided.Response.Content
		s.Equal(models.ResponseRejected, content.Result)
		s.Equal(models.RejectResponseItem{Code: "busy", Message: "later"}, content.Items[0].Item)
		s.Require().True(content.Items[1].IsGroup())
		s.Len(content.Items[1].Group.Items, 1)
	})

	s.Run("accept with a new attribute creates it and shares a copy", func() {
		r := s.receiveAtAlice(models.Leaf(readGivenName(true)))
		fresh := givenName(alice, "Alice")
		decided, err := s.alice.incoming.Accept(s.ctx, models.DecideRequestParameters{
			RequestID: r.ID,
			Items:     []models.DecideItemParameters{models.AcceptItem(models.AcceptParams{Attribute: &fresh})},
		})
		s.Require().NoError(err)
		answer := decided.Response.Content.Items[0].Item.(models.ReadAttributeAcceptResponseItem)
		shared, err := s.alice.attributes.ListAttributes(s.ctx, attrmodels.Filter{SharedWithPeer: bob})
		s.Require().NoError(err)
		s.Require().Len(shared, 1)
		s.Equal(answer.AttributeID, shared[0].ID)
	})

	s.Run("an expired request cannot be decided", func() {
		past := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		r, err := s.alice.incoming.Received(s.ctx, ReceivedParameters{
			Content: models.RequestContent{ExpiresAt: &past, Items: []models.RequestEntry{models.Leaf(readGivenName(false))}},
			Source:  messageSource("MSG"),
			Sender:  bob,
		})
		s.Require().NoError(err)
		_, err = s.alice.incoming.Reject(s.ctx, models.DecideRequestParameters{RequestID: r.ID, Items: []models.DecideItemParameters{models.RejectItem("", "")}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *ControllersSuite) TestPrerequisites() {
	own, err := s.alice.attributes.CreateAttribute(s.ctx, givenName(alice, "Alice"))
	s.Require().NoError(err)
	r := s.receiveAtAlice(models.Leaf(models.ShareAttributeRequestItem{AttributeID: own.ID, ShareWith: carol}))

	report, err := s.alice.incoming.CheckPrerequisites(s.ctx, r.ID)
	s.Require().NoError(err)
	s.False(report.Fulfilled)
	s.Require().Len(report.Items, 1)
	s.Equal("items[0]", report.Items[0].Path)
	s.Equal(models.TypeShareAttributeRequestItem, report.Items[0].ItemType)

	params := models.DecideRequestParameters{RequestID: r.ID, Items: []models.DecideItemParameters{models.AcceptItem(models.AcceptParams{})}}
	res, err := s.alice.incoming.CanAccept(s.ctx, params)
	s.Require().NoError(err)
	s.Equal(CodePrerequisitesNotFulfilled, res.FirstError().Code())

	rejectable, err := s.alice.incoming.CanReject(s.ctx, models.DecideRequestParameters{RequestID: r.ID, Items: []models.DecideItemParameters{models.RejectItem("", "")}})
	s.Require().NoError(err)
	s.True(rejectable.IsSuccess())
}

func (s *ControllersSuite) TestFail() {
	r := s.receiveAtAlice(models.Leaf(readGivenName(true)))

	_, err := s.alice.incoming.Fail(s.ctx, r.ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	failed, err := s.alice.incoming.Fail(s.ctx, r.ID, "peer unreachable")
	s.Require().NoError(err)
	s.Equal(models.StatusError, failed.Status)
	s.Equal("peer unreachable", failed.ErrorReason)

	_, err = s.alice.incoming.Fail(s.ctx, r.ID, "again")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ControllersSuite) TestConcurrentDecisionsOnOneRequest() {
	r := s.receiveAtAlice(models.Leaf(readGivenName(false)))
	params := models.DecideRequestParameters{RequestID: r.ID, Items: []models.DecideItemParameters{models.RejectItem("", "")}}

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.alice.incoming.Reject(s.ctx, params); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded)
	stored, err := s.alice.incoming.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Len(stored.StatusLog, 1)
}
