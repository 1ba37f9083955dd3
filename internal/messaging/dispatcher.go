package messaging

import (
	"context"
	"log/slog"
	"time"

	"parley/internal/platform/kafka/consumer"
	"parley/internal/platform/metrics"
	"parley/internal/requests/models"
	"parley/internal/requests/service"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/requestcontext"
)

// Outcome labels for the messages-handled counter.
const (
	outcomeHandled   = "handled"
	outcomeSkipped   = "skipped"
	outcomeDuplicate = "duplicate"
	outcomeRejected  = "rejected"
	outcomeInvalid   = "invalid"
	outcomeMalformed = "malformed"
	outcomeFailed    = "failed"
)

type Identity interface {
	IsMe(addr id.Address) bool
	Address() id.Address
}

// Receiver accepts requests peers send us.
type Receiver interface {
	Received(ctx context.Context, params service.ReceivedParameters) (*models.Request, error)
}

// Completer settles our own requests with the peer's response.
type Completer interface {
	Complete(ctx context.Context, params service.CompleteOutgoingParameters) (*models.Request, error)
	Fail(ctx context.Context, requestID id.RequestID, reason string) (*models.Request, error)
}

// Dispatcher routes consumed envelopes to the controllers.
type Dispatcher struct {
	identity Identity
	incoming Receiver
	outgoing Completer
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type DispatcherOption func(*Dispatcher)

func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithDispatcherMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(identity Identity, incoming Receiver, outgoing Completer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		identity: identity,
		incoming: incoming,
		outgoing: outgoing,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle implements consumer.Handler. Only infrastructure failures are
// returned; protocol problems are logged and counted.
func (d *Dispatcher) Handle(ctx context.Context, msg *consumer.Message) error {
	env, err := Decode(msg.Value)
	if err != nil {
		d.logger.WarnContext(ctx, "dropping malformed envelope",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		d.count("unknown", outcomeMalformed)
		return nil
	}
	if !d.identity.IsMe(env.To) {
		d.count(string(env.Kind), outcomeSkipped)
		return nil
	}

	ctx = requestcontext.WithTime(ctx, d.now().UTC())
	var outcome string
	switch env.Kind {
	case KindRequest:
		outcome, err = d.handleRequest(ctx, env)
	case KindResponse:
		outcome, err = d.handleResponse(ctx, env)
	}
	d.count(string(env.Kind), outcome)
	return err
}

func (d *Dispatcher) handleRequest(ctx context.Context, env Envelope) (string, error) {
	req, err := d.incoming.Received(ctx, service.ReceivedParameters{
		Content: *env.Request,
		Source:  models.RequestSource{Type: models.RequestSourceMessage, Reference: string(env.ID)},
		Sender:  env.From,
	})
	switch {
	case err == nil:
		d.logger.InfoContext(ctx, "request received",
			"message_id", env.ID,
			"request_id", req.ID,
			"peer", env.From,
		)
		return outcomeHandled, nil
	case dErrors.HasCode(err, dErrors.CodeConflict):
		return outcomeDuplicate, nil
	case isClientError(err):
		d.logger.WarnContext(ctx, "request envelope rejected",
			"message_id", env.ID,
			"peer", env.From,
			"error", err,
		)
		return outcomeRejected, nil
	default:
		return outcomeFailed, err
	}
}

func (d *Dispatcher) handleResponse(ctx context.Context, env Envelope) (string, error) {
	requestID := env.Response.RequestID
	_, err := d.outgoing.Complete(ctx, service.CompleteOutgoingParameters{
		Response: *env.Response,
		Source:   models.ResponseSource{Type: models.ResponseSourceMessage, Reference: string(env.ID)},
		Sender:   env.From,
	})
	switch {
	case err == nil:
		d.logger.InfoContext(ctx, "response applied",
			"message_id", env.ID,
			"request_id", requestID,
			"peer", env.From,
		)
		return outcomeHandled, nil
	case dErrors.HasCode(err, dErrors.CodeValidation):
		// The peer answered, but not with something we can apply. Park the
		// request so it does not wait forever.
		if _, failErr := d.outgoing.Fail(ctx, requestID, "invalid response: "+err.Error()); failErr != nil {
			d.logger.WarnContext(ctx, "could not mark request failed",
				"request_id", requestID,
				"error", failErr,
			)
		}
		return outcomeInvalid, nil
	case isClientError(err):
		d.logger.WarnContext(ctx, "response envelope rejected",
			"message_id", env.ID,
			"request_id", requestID,
			"peer", env.From,
			"error", err,
		)
		return outcomeRejected, nil
	default:
		return outcomeFailed, err
	}
}

func isClientError(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout:
		return false
	default:
		return true
	}
}

func (d *Dispatcher) count(kind, outcome string) {
	if d.metrics != nil {
		d.metrics.IncrementMessageHandled(kind, outcome)
	}
}
