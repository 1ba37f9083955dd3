package service

import (
	"context"
	"time"

	"parley/internal/requests/models"
	"parley/internal/requests/validation"
	"parley/internal/requests/validator"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/audit"
	"parley/pkg/requestcontext"
)

// CodePrerequisitesNotFulfilled marks an accepted item whose prerequisites
// do not hold.
const CodePrerequisitesNotFulfilled = "prerequisitesNotFulfilled"

// Incoming drives requests peers send us: Open -> Decided -> Answered.
type Incoming struct {
	*engine
	validator *validator.DecideRequestParametersValidator
}

func NewIncoming(deps Dependencies, opts ...Option) *Incoming {
	return &Incoming{
		engine:    newEngine(deps, "parley/requests/incoming", opts),
		validator: validator.New(),
	}
}

// Received stores a peer's request as Open. The carrier must not be ours.
// A content without an id gets a fresh one.
func (s *Incoming) Received(ctx context.Context, params ReceivedParameters) (*models.Request, error) {
	const op = "incoming.Received"
	ctx, span := s.startSpan(ctx, op, params.Content.ID)
	defer span.End()
	defer s.observe(op, time.Now())

	if err := params.Validate(); err != nil {
		return nil, spanError(span, err)
	}
	if s.identity.IsMe(params.Sender) {
		return nil, spanError(span, dErrors.New(dErrors.CodeValidation, "cannot receive a request we created ourselves"))
	}
	content := params.Content
	if content.ID.IsNil() {
		content.ID = id.NewRequestID()
	}
	r, err := models.NewIncomingRequest(content, params.Sender, params.Source, requestcontext.Now(ctx))
	if err != nil {
		return nil, spanError(span, err)
	}
	if err := s.insert(ctx, r, audit.EventRequestReceived, "failed to store received request"); err != nil {
		return nil, spanError(span, err)
	}
	return r, nil
}

// CheckPrerequisites evaluates every item's prerequisite gate without
// changing the request.
func (s *Incoming) CheckPrerequisites(ctx context.Context, requestID id.RequestID) (*PrerequisitesReport, error) {
	ctx, span := s.startSpan(ctx, "incoming.CheckPrerequisites", requestID)
	defer span.End()

	r, err := s.get(ctx, requestID, false)
	if err != nil {
		return nil, spanError(span, err)
	}
	if r.Status != models.StatusOpen {
		return nil, spanError(span, dErrors.Newf(dErrors.CodeInvalidState, "request %s is %s, not Open", r.ID, r.Status))
	}
	report := &PrerequisitesReport{RequestID: r.ID, Fulfilled: true}
	_, err = checkEntries(ctx, r.Content.Items, func(ctx context.Context, item models.RequestItem, path string) (*validation.Result, error) {
		ok, err := s.registry.ProcessorOrGeneric(item).CheckPrerequisitesOfIncomingRequestItem(ctx, item, r)
		if err != nil {
			return nil, err
		}
		report.Items = append(report.Items, ItemPrerequisite{Path: path, ItemType: item.ItemType(), Fulfilled: ok})
		report.Fulfilled = report.Fulfilled && ok
		return validation.Success(), nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}
	return report, nil
}

// CanAccept reports whether Accept with params would succeed, without
// side effects. params.Accept is forced to true.
func (s *Incoming) CanAccept(ctx context.Context, params models.DecideRequestParameters) (*validation.Result, error) {
	params.Accept = true
	return s.canDecide(ctx, "incoming.CanAccept", params)
}

// CanReject is CanAccept for a global rejection.
func (s *Incoming) CanReject(ctx context.Context, params models.DecideRequestParameters) (*validation.Result, error) {
	params.Accept = false
	return s.canDecide(ctx, "incoming.CanReject", params)
}

func (s *Incoming) canDecide(ctx context.Context, op string, params models.DecideRequestParameters) (*validation.Result, error) {
	ctx, span := s.startSpan(ctx, op, params.RequestID)
	defer span.End()

	r, err := s.get(ctx, params.RequestID, false)
	if err != nil {
		return nil, spanError(span, err)
	}
	if err := s.checkDecidable(ctx, r); err != nil {
		return nil, spanError(span, err)
	}
	res, err := s.checkDecision(ctx, params, r)
	if err != nil {
		return nil, spanError(span, err)
	}
	return res, nil
}

// Accept decides the request with a global acceptance.
func (s *Incoming) Accept(ctx context.Context, params models.DecideRequestParameters) (*models.Request, error) {
	params.Accept = true
	return s.decide(ctx, "incoming.Accept", params)
}

// Reject decides the request with a global rejection. Every item must be
// rejected as well.
func (s *Incoming) Reject(ctx context.Context, params models.DecideRequestParameters) (*models.Request, error) {
	params.Accept = false
	return s.decide(ctx, "incoming.Reject", params)
}

func (s *Incoming) decide(ctx context.Context, op string, params models.DecideRequestParameters) (*models.Request, error) {
	ctx, span := s.startSpan(ctx, op, params.RequestID)
	defer span.End()
	defer s.observe(op, time.Now())

	r, err := s.mutate(ctx, params.RequestID, false, audit.EventRequestDecided, func(ctx context.Context, r *models.Request) (string, error) {
		if err := s.checkDecidable(ctx, r); err != nil {
			return "", err
		}
		res, err := s.checkDecision(ctx, params, r)
		if err != nil {
			return "", err
		}
		if err := s.rejectInvalid(op, res); err != nil {
			return "", err
		}

		items, err := s.buildResponse(ctx, params, r)
		if err != nil {
			return "", err
		}
		result := models.ResponseRejected
		if params.Accept {
			result = models.ResponseAccepted
		}
		now := requestcontext.Now(ctx)
		r.ApplyDecided(models.Response{
			CreatedAt: now,
			Content:   models.ResponseContent{Result: result, RequestID: r.ID, Items: items},
		}, now)
		return string(result), nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}
	return r, nil
}

func (s *Incoming) checkDecidable(ctx context.Context, r *models.Request) error {
	if err := r.CanDecide(); err != nil {
		return err
	}
	if r.IsExpired(requestcontext.Now(ctx)) {
		return dErrors.Newf(dErrors.CodeInvalidState, "request %s has expired", r.ID)
	}
	return nil
}

// checkDecision runs the fail-fast tree check first and, when it passes,
// every item's processor check aggregated over the tree. Accepted items
// must also satisfy their prerequisites.
func (s *Incoming) checkDecision(ctx context.Context, params models.DecideRequestParameters, r *models.Request) (*validation.Result, error) {
	if res := s.validator.Validate(params, r); res.IsError() {
		return res, nil
	}

	results := make([]*validation.Result, 0, len(r.Content.Items))
	for i, entry := range r.Content.Items {
		if !entry.IsGroup() {
			res, err := s.checkItemDecision(ctx, entry.Item, *params.Items[i].Item, r)
			if err != nil {
				return nil, err
			}
			results = append(results, res)
			continue
		}
		children := make([]*validation.Result, 0, len(entry.Group.Items))
		for j, item := range entry.Group.Items {
			res, err := s.checkItemDecision(ctx, item, params.Items[i].Group.Items[j], r)
			if err != nil {
				return nil, err
			}
			children = append(children, res)
		}
		results = append(results, validation.FromItems(children))
	}
	return validation.FromItems(results), nil
}

func (s *Incoming) checkItemDecision(ctx context.Context, item models.RequestItem, decision models.DecideRequestItemParameters, r *models.Request) (*validation.Result, error) {
	p := s.registry.ProcessorOrGeneric(item)
	if !decision.Accept {
		return p.CanReject(ctx, item, decision, r)
	}
	ok, err := p.CheckPrerequisitesOfIncomingRequestItem(ctx, item, r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return validation.Error(CodePrerequisitesNotFulfilled, "the prerequisites of this "+item.ItemType()+" are not fulfilled"), nil
	}
	return p.CanAccept(ctx, item, decision, r)
}

// buildResponse produces the response tree. Accept side effects happen
// here, strictly in item order.
func (s *Incoming) buildResponse(ctx context.Context, params models.DecideRequestParameters, r *models.Request) ([]models.ResponseEntry, error) {
	items := make([]models.ResponseEntry, 0, len(r.Content.Items))
	for i, entry := range r.Content.Items {
		if !entry.IsGroup() {
			ri, err := s.answer(ctx, entry.Item, *params.Items[i].Item, r)
			if err != nil {
				return nil, err
			}
			items = append(items, models.ResponseEntry{Item: ri})
			continue
		}
		group := &models.ResponseItemGroup{Items: make([]models.ResponseItem, 0, len(entry.Group.Items))}
		for j, item := range entry.Group.Items {
			ri, err := s.answer(ctx, item, params.Items[i].Group.Items[j], r)
			if err != nil {
				return nil, err
			}
			group.Items = append(group.Items, ri)
		}
		items = append(items, models.ResponseEntry{Group: group})
	}
	return items, nil
}

func (s *Incoming) answer(ctx context.Context, item models.RequestItem, decision models.DecideRequestItemParameters, r *models.Request) (models.ResponseItem, error) {
	p := s.registry.ProcessorOrGeneric(item)
	var (
		ri  models.ResponseItem
		err error
	)
	if decision.Accept {
		ri, err = p.Accept(ctx, item, decision, r)
	} else {
		ri, err = p.Reject(ctx, item, decision, r)
	}
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementItemDecision(item.ItemType(), string(ri.Result()))
	}
	return ri, nil
}

// Complete marks our response to a Decided request as delivered.
func (s *Incoming) Complete(ctx context.Context, params CompleteIncomingParameters) (*models.Request, error) {
	const op = "incoming.Complete"
	ctx, span := s.startSpan(ctx, op, params.RequestID)
	defer span.End()
	defer s.observe(op, time.Now())

	if err := params.Validate(); err != nil {
		return nil, spanError(span, err)
	}
	r, err := s.mutate(ctx, params.RequestID, false, audit.EventRequestAnswered, func(ctx context.Context, r *models.Request) (string, error) {
		if err := r.CanAnswer(); err != nil {
			return "", err
		}
		r.ApplyAnswered(params.Source, requestcontext.Now(ctx))
		return "", nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}
	return r, nil
}

func (s *Incoming) Get(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	return s.get(ctx, requestID, false)
}

// List returns peer requests matching query; query.IsOwn is ignored.
func (s *Incoming) List(ctx context.Context, query models.Query) ([]*models.Request, error) {
	return s.list(ctx, query, false)
}

// Fail parks a non-terminal peer request in Error.
func (s *Incoming) Fail(ctx context.Context, requestID id.RequestID, reason string) (*models.Request, error) {
	return s.fail(ctx, "incoming.Fail", requestID, false, reason)
}
