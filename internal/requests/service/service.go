// Package service holds the two request controllers. Outgoing drives requests
// we initiate; Incoming drives requests peers send us. Both persist through
// the same Store and serialize mutations per request id.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"parley/internal/platform/metrics"
	"parley/internal/requests/lock"
	"parley/internal/requests/models"
	"parley/internal/requests/processors"
	"parley/internal/requests/validation"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/audit"
	"parley/pkg/platform/sentinel"
	"parley/pkg/requestcontext"
)

// Store persists requests of both directions. Implementations return
// sentinel errors.
type Store interface {
	Create(ctx context.Context, request *models.Request) error
	Update(ctx context.Context, request *models.Request) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	List(ctx context.Context, query models.Query) ([]*models.Request, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Identity interface {
	IsMe(addr id.Address) bool
	Address() id.Address
}

// Dependencies are required by both controllers.
type Dependencies struct {
	Store    Store
	Registry *processors.Registry
	Identity Identity
}

// Transactor runs fn in one storage transaction. Without one, each write
// stands alone.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type engine struct {
	store          Store
	transactor     Transactor
	registry       *processors.Registry
	identity       Identity
	locker         lock.Locker
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

type Option func(*engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *engine) {
		e.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(e *engine) {
		e.auditPublisher = publisher
	}
}

// WithLocker replaces the default in-process lock, e.g. with a Redis lock
// shared by several engine instances.
func WithLocker(l lock.Locker) Option {
	return func(e *engine) {
		e.locker = l
	}
}

// WithTransactor makes the request write and its audit event commit together.
func WithTransactor(t Transactor) Option {
	return func(e *engine) {
		e.transactor = t
	}
}

func newEngine(deps Dependencies, tracerName string, opts []Option) *engine {
	e := &engine{
		store:    deps.Store,
		registry: deps.Registry,
		identity: deps.Identity,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.locker == nil {
		var lockOpts []lock.ShardedOption
		if e.metrics != nil {
			lockOpts = append(lockOpts, lock.WithWaitObserver(e.metrics))
		}
		e.locker = lock.NewSharded(lockOpts...)
	}
	return e
}

func (e *engine) get(ctx context.Context, requestID id.RequestID, isOwn bool) (*models.Request, error) {
	r, err := e.store.FindByID(ctx, requestID)
	if err != nil {
		return nil, translate(err, "failed to load request")
	}
	if r.IsOwn != isOwn {
		if r.IsOwn {
			return nil, dErrors.Newf(dErrors.CodeForbidden, "request %s was created by us, not received", requestID)
		}
		return nil, dErrors.Newf(dErrors.CodeForbidden, "request %s was received from a peer, not created by us", requestID)
	}
	return r, nil
}

func (e *engine) list(ctx context.Context, query models.Query, isOwn bool) ([]*models.Request, error) {
	query.IsOwn = &isOwn
	out, err := e.store.List(ctx, query)
	if err != nil {
		return nil, translate(err, "failed to list requests")
	}
	return out, nil
}

// mutate runs fn on a fresh copy of the request while holding its lock and
// persists the result when fn succeeds. The transition is logged, counted
// and audited as action.
func (e *engine) mutate(ctx context.Context, requestID id.RequestID, isOwn bool, action audit.AuditEvent, fn func(ctx context.Context, r *models.Request) (decision string, err error)) (*models.Request, error) {
	var out *models.Request
	err := e.locker.WithLock(ctx, string(requestID), func(ctx context.Context) error {
		return e.inTx(ctx, func(ctx context.Context) error {
			r, err := e.get(ctx, requestID, isOwn)
			if err != nil {
				return err
			}
			old := r.Status
			decision, err := fn(ctx, r)
			if err != nil {
				return err
			}
			if err := e.store.Update(ctx, r); err != nil {
				return translate(err, "failed to update request")
			}
			e.recordTransition(ctx, r, old, action, decision)
			out = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// insert stores a new request and records its first status.
func (e *engine) insert(ctx context.Context, r *models.Request, action audit.AuditEvent, msg string) error {
	return e.inTx(ctx, func(ctx context.Context) error {
		if err := e.store.Create(ctx, r); err != nil {
			return translate(err, msg)
		}
		e.recordTransition(ctx, r, r.Status, action, "")
		return nil
	})
}

func (e *engine) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if e.transactor == nil {
		return fn(ctx)
	}
	return e.transactor.RunInTx(ctx, fn)
}

// fail is shared by both controllers' Fail operation.
func (e *engine) fail(ctx context.Context, op string, requestID id.RequestID, isOwn bool, reason string) (*models.Request, error) {
	ctx, span := e.startSpan(ctx, op, requestID)
	defer span.End()
	defer e.observe(op, time.Now())

	if reason == "" {
		return nil, spanError(span, dErrors.New(dErrors.CodeInvalidInput, "reason is required"))
	}
	r, err := e.mutate(ctx, requestID, isOwn, audit.EventRequestFailed, func(ctx context.Context, r *models.Request) (string, error) {
		if err := r.CanFail(); err != nil {
			return "", err
		}
		r.ApplyFailed(reason, requestcontext.Now(ctx))
		return "", nil
	})
	if err != nil {
		return nil, spanError(span, err)
	}
	return r, nil
}

func (e *engine) recordTransition(ctx context.Context, r *models.Request, old models.Status, action audit.AuditEvent, decision string) {
	e.logger.InfoContext(ctx, string(action),
		"request_id", r.ID,
		"peer", r.Peer,
		"direction", r.Direction(),
		"old_status", old,
		"status", r.Status,
		"log_type", "audit",
	)
	if e.metrics != nil {
		e.metrics.IncrementTransition(r.Direction(), string(r.Status))
	}
	if e.auditPublisher == nil {
		return
	}
	oldStatus := ""
	if old != r.Status {
		oldStatus = string(old)
	}
	_ = e.auditPublisher.Emit(ctx, audit.Event{
		RequestID: r.ID,
		Peer:      r.Peer,
		Action:    string(action),
		OldStatus: oldStatus,
		NewStatus: string(r.Status),
		Decision:  decision,
		Reason:    r.ErrorReason,
	})
}

// rejectInvalid converts a failed validation tree into an error, counting
// the first failure.
func (e *engine) rejectInvalid(op string, res *validation.Result) error {
	if res.IsSuccess() {
		return nil
	}
	if e.metrics != nil {
		e.metrics.IncrementValidationFailure(op, res.FirstError().Code())
	}
	return res.Err()
}

func (e *engine) startSpan(ctx context.Context, name string, requestID id.RequestID) (context.Context, trace.Span) {
	ctx, span := e.tracer.Start(ctx, name)
	if !requestID.IsNil() {
		span.SetAttributes(attribute.String("request_id", string(requestID)))
	}
	return ctx, span
}

func (e *engine) observe(op string, start time.Time) {
	if e.metrics != nil {
		e.metrics.ObserveOperation(op, start)
	}
}

func translate(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "request id already exists")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "request not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
