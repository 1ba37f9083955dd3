package messaging

import (
	"context"
	"log/slog"

	"parley/internal/requests/models"
	"parley/internal/requests/service"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/requestcontext"
)

// Producer publishes one keyed record.
type Producer interface {
	Produce(ctx context.Context, key, value []byte) error
}

type RequestSender interface {
	Get(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	Sent(ctx context.Context, params service.SentParameters) (*models.Request, error)
}

type ResponseSender interface {
	Get(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	Complete(ctx context.Context, params service.CompleteIncomingParameters) (*models.Request, error)
}

// Courier publishes our requests and responses and records the envelope
// as their source. Publishing happens before the status change, so a crash
// in between leaves the request in its prior status and a resend is safe
// for the receiver, which deduplicates by request id.
type Courier struct {
	producer Producer
	identity Identity
	outgoing RequestSender
	incoming ResponseSender
	logger   *slog.Logger
}

func NewCourier(producer Producer, identity Identity, outgoing RequestSender, incoming ResponseSender, logger *slog.Logger) *Courier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Courier{
		producer: producer,
		identity: identity,
		outgoing: outgoing,
		incoming: incoming,
		logger:   logger,
	}
}

// SendRequest publishes a Draft request to its peer and moves it to Open.
func (c *Courier) SendRequest(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	r, err := c.outgoing.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := r.CanSend(); err != nil {
		return nil, err
	}
	content := r.Content
	content.ID = r.ID
	env := Envelope{
		ID:      id.NewMessageID(),
		Kind:    KindRequest,
		From:    c.identity.Address(),
		To:      r.Peer,
		SentAt:  requestcontext.Now(ctx),
		Request: &content,
	}
	if err := c.publish(ctx, env); err != nil {
		return nil, err
	}
	return c.outgoing.Sent(ctx, service.SentParameters{
		RequestID: r.ID,
		Source:    models.RequestSource{Type: models.RequestSourceMessage, Reference: string(env.ID)},
		Author:    env.From,
	})
}

// SendResponse publishes the response of a Decided request and moves it to
// Answered.
func (c *Courier) SendResponse(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	r, err := c.incoming.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := r.CanAnswer(); err != nil {
		return nil, err
	}
	content := r.Response.Content
	env := Envelope{
		ID:       id.NewMessageID(),
		Kind:     KindResponse,
		From:     c.identity.Address(),
		To:       r.Peer,
		SentAt:   requestcontext.Now(ctx),
		Response: &content,
	}
	if err := c.publish(ctx, env); err != nil {
		return nil, err
	}
	return c.incoming.Complete(ctx, service.CompleteIncomingParameters{
		RequestID: r.ID,
		Source:    &models.ResponseSource{Type: models.ResponseSourceMessage, Reference: string(env.ID)},
	})
}

func (c *Courier) publish(ctx context.Context, env Envelope) error {
	payload, err := Encode(env)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode envelope")
	}
	if err := c.producer.Produce(ctx, []byte(env.To), payload); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to publish envelope")
	}
	c.logger.InfoContext(ctx, "envelope published",
		"message_id", env.ID,
		"kind", string(env.Kind),
		"peer", env.To,
	)
	return nil
}
