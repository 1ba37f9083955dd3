package service

import (
	"context"
	"time"

	"parley/internal/requests/models"
	"parley/internal/requests/validation"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/audit"
	"parley/pkg/requestcontext"
)

// Outgoing drives requests we initiate: Draft -> Open -> Completed.
type Outgoing struct {
	*engine
}

func NewOutgoing(deps Dependencies, opts ...Option) *Outgoing {
	return &Outgoing{engine: newEngine(deps, "parley/requests/outgoing", opts)}
}

// CanCreate runs every item's creation check and aggregates the results so
// the caller sees all problems at once. An item type without a registered
// processor is an error, not a validation result.
func (s *Outgoing) CanCreate(ctx context.Context, params CreateOutgoingParameters) (*validation.Result, error) {
	ctx, span := s.startSpan(ctx, "outgoing.CanCreate", "")
	defer span.End()

	if err := params.Validate(); err != nil {
		return nil, spanError(span, err)
	}
	res, err := s.canCreate(ctx, params)
	if err != nil {
		return nil, spanError(span, err)
	}
	return res, nil
}

func (s *Outgoing) canCreate(ctx context.Context, params CreateOutgoingParameters) (*validation.Result, error) {
	return checkEntries(ctx, params.Content.Items, func(ctx context.Context, item models.RequestItem, _ string) (*validation.Result, error) {
		p, err := s.registry.ProcessorFor(item)
		if err != nil {
			return nil, err
		}
		return p.CanCreateOutgoingRequestItem(ctx, item, params.Peer)
	})
}

// Create validates and persists a Draft request. Nothing is stored when any
// item fails its creation check.
func (s *Outgoing) Create(ctx context.Context, params CreateOutgoingParameters) (*models.Request, error) {
	const op = "outgoing.Create"
	ctx, span := s.startSpan(ctx, op, params.Content.ID)
	defer span.End()
	defer s.observe(op, time.Now())

	if err := params.Validate(); err != nil {
		return nil, spanError(span, err)
	}
	res, err := s.canCreate(ctx, params)
	if err != nil {
		return nil, spanError(span, err)
	}
	if err := s.rejectInvalid(op, res); err != nil {
		return nil, spanError(span, err)
	}

	r, err := models.NewOutgoingRequest(params.Content, params.Peer, requestcontext.Now(ctx))
	if err != nil {
		return nil, spanError(span, err)
	}
	if err := s.insert(ctx, r, audit.EventRequestCreated, "failed to create request"); err != nil {
		return nil, spanError(span, err)
	}
	return r, nil
}

// Sent records the carrier of a Draft request and opens it.
func (s *Outgoing) Sent(ctx context.Context, params SentParameters) (*models.Request, error) {
	const op = "outgoing.Sent"
	ctx, span := s.startSpan(ctx, op, params.RequestID)
	defer span.End()
	defer s.observe(op, time.Now())

	if err := params.Validate(); err != nil {
		return nil, spanError(span, err)
	}
	if !params.Author.IsNil() && !s.identity.IsMe(params.Author) {
		return nil, spanError(span, dErrors.New(dErrors.CodeValidation, "the source of an outgoing request must be our own"))
	}
	r, err := s.mutate(ctx, params.RequestID, true, audit.EventRequestSent, func(ctx context.Context, r *models.Request) (string, error) {
		if err := r.CanSend(); err != nil {
			return "", err
		}
		r.ApplySent(params.Source, requestcontext.Now(ctx))
		return "", nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}
	return r, nil
}

// Complete applies the peer's response to an Open request. Every response
// item is checked before any is applied; side effects run before the
// status changes, so a retry after a partial failure starts from Open.
func (s *Outgoing) Complete(ctx context.Context, params CompleteOutgoingParameters) (*models.Request, error) {
	const op = "outgoing.Complete"
	requestID := params.Response.RequestID
	ctx, span := s.startSpan(ctx, op, requestID)
	defer span.End()
	defer s.observe(op, time.Now())

	if err := params.Validate(); err != nil {
		return nil, spanError(span, err)
	}
	r, err := s.mutate(ctx, requestID, true, audit.EventRequestCompleted, func(ctx context.Context, r *models.Request) (string, error) {
		if err := r.CanComplete(); err != nil {
			return "", err
		}
		if !params.Sender.IsNil() && params.Sender != r.Peer {
			return "", dErrors.Newf(dErrors.CodeForbidden, "response must come from %s", r.Peer)
		}
		if err := s.rejectInvalid(op, checkResponseShape(r.Content.Items, params.Response.Items)); err != nil {
			return "", err
		}

		res, err := s.canApply(ctx, r, params.Response.Items)
		if err != nil {
			return "", err
		}
		if err := s.rejectInvalid(op, res); err != nil {
			return "", err
		}

		err = visitResponse(ctx, r.Content.Items, params.Response.Items, func(ctx context.Context, item models.RequestItem, responseItem models.ResponseItem, _ string) error {
			return s.registry.ProcessorOrGeneric(item).ApplyIncomingResponseItem(ctx, responseItem, item, r)
		})
		if err != nil {
			return "", err
		}

		source := params.Source
		r.ApplyCompleted(models.Response{
			CreatedAt: requestcontext.Now(ctx),
			Content:   params.Response,
			Source:    &source,
		}, requestcontext.Now(ctx))
		return string(params.Response.Result), nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}
	return r, nil
}

func (s *Outgoing) canApply(ctx context.Context, r *models.Request, response []models.ResponseEntry) (*validation.Result, error) {
	results := make([]*validation.Result, 0, len(response))
	for i, entry := range r.Content.Items {
		if !entry.IsGroup() {
			res, err := s.registry.ProcessorOrGeneric(entry.Item).CanApplyIncomingResponseItem(ctx, response[i].Item, entry.Item, r)
			if err != nil {
				return nil, err
			}
			results = append(results, res)
			continue
		}
		children := make([]*validation.Result, 0, len(entry.Group.Items))
		for j, item := range entry.Group.Items {
			res, err := s.registry.ProcessorOrGeneric(item).CanApplyIncomingResponseItem(ctx, response[i].Group.Items[j], item, r)
			if err != nil {
				return nil, err
			}
			children = append(children, res)
		}
		results = append(results, validation.FromItems(children))
	}
	return validation.FromItems(results), nil
}

func (s *Outgoing) Get(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	return s.get(ctx, requestID, true)
}

// List returns own requests matching query; query.IsOwn is ignored.
func (s *Outgoing) List(ctx context.Context, query models.Query) ([]*models.Request, error) {
	return s.list(ctx, query, true)
}

// Fail parks a non-terminal own request in Error.
func (s *Outgoing) Fail(ctx context.Context, requestID id.RequestID, reason string) (*models.Request, error) {
	return s.fail(ctx, "outgoing.Fail", requestID, true, reason)
}
