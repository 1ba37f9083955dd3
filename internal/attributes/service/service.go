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

	"parley/internal/attributes/models"
	"parley/internal/platform/metrics"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/audit"
	"parley/pkg/platform/sentinel"
	"parley/pkg/requestcontext"
)

// Store persists LocalAttributes. Implementations return sentinel errors.
type Store interface {
	Create(ctx context.Context, attr *models.LocalAttribute) error
	Update(ctx context.Context, attr *models.LocalAttribute) error
	FindByID(ctx context.Context, attributeID id.AttributeID) (*models.LocalAttribute, error)
	List(ctx context.Context, filter models.Filter) ([]*models.LocalAttribute, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns every attribute write: own attributes, successions, shared
// copies and peer attributes.
type Service struct {
	store          Store
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("parley/attributes"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAttribute stores a new attribute of our own.
func (s *Service) CreateAttribute(ctx context.Context, content models.Content) (*models.LocalAttribute, error) {
	ctx, span := s.tracer.Start(ctx, "attributes.CreateAttribute")
	defer span.End()

	if err := content.Validate(); err != nil {
		return nil, spanError(span, err)
	}
	attr := &models.LocalAttribute{
		ID:        id.NewAttributeID(),
		Content:   content.Normalized(),
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, attr); err != nil {
		return nil, spanError(span, translate(err, "failed to create attribute"))
	}
	s.record(ctx, audit.EventAttributeCreated, "own", attr, "")
	return attr, nil
}

// SucceedAttribute creates successor content as a new version of
// predecessorID. The successor is written first, then the predecessor is
// closed with validTo = successor.validFrom - 1ms and succeededBy set. A
// failure between the two writes is completed by RepairSuccessions.
func (s *Service) SucceedAttribute(ctx context.Context, predecessorID id.AttributeID, successor models.Content) (*models.LocalAttribute, *models.LocalAttribute, error) {
	ctx, span := s.tracer.Start(ctx, "attributes.SucceedAttribute",
		trace.WithAttributes(attribute.String("predecessor_id", predecessorID.String())))
	defer span.End()

	predecessor, err := s.GetAttribute(ctx, predecessorID)
	if err != nil {
		return nil, nil, spanError(span, err)
	}
	if predecessor.SucceededBy != nil {
		return nil, nil, spanError(span, dErrors.Newf(dErrors.CodeInvalidState,
			"attribute %s is already succeeded by %s", predecessorID, *predecessor.SucceededBy))
	}
	if predecessor.IsShared() {
		return nil, nil, spanError(span, dErrors.New(dErrors.CodeValidation, "shared copies cannot be succeeded directly"))
	}
	if err := successor.Validate(); err != nil {
		return nil, nil, spanError(span, err)
	}
	if err := checkSameLineage(predecessor.Content, successor); err != nil {
		return nil, nil, spanError(span, err)
	}

	now := requestcontext.Now(ctx)
	next := &models.LocalAttribute{
		ID:        id.NewAttributeID(),
		Content:   successor.Normalized(),
		CreatedAt: now,
		Succeeds:  &predecessor.ID,
	}
	if next.Content.ValidFrom == nil {
		next.Content.ValidFrom = &now
	}
	if from := predecessor.Content.ValidFrom; from != nil && next.Content.ValidFrom.Sub(*from) < time.Millisecond {
		return nil, nil, spanError(span, dErrors.New(dErrors.CodeValidation, "successor must start after the predecessor's validFrom"))
	}
	if err := s.store.Create(ctx, next); err != nil {
		return nil, nil, spanError(span, translate(err, "failed to create successor"))
	}

	closePredecessor(predecessor, next)
	if err := s.store.Update(ctx, predecessor); err != nil {
		s.logger.ErrorContext(ctx, "succession left half-written",
			"predecessor_id", predecessor.ID,
			"successor_id", next.ID,
			"error", err,
		)
		return nil, nil, spanError(span, translate(err, "failed to close predecessor"))
	}

	s.record(ctx, audit.EventAttributeSucceeded, "successor", next, "")
	return next, predecessor, nil
}

// CreateSharedAttributeCopy copies sourceID for peer under requestRef. The
// copy points back at its source.
func (s *Service) CreateSharedAttributeCopy(ctx context.Context, sourceID id.AttributeID, peer id.Address, requestRef id.RequestID) (*models.LocalAttribute, error) {
	ctx, span := s.tracer.Start(ctx, "attributes.CreateSharedAttributeCopy",
		trace.WithAttributes(
			attribute.String("source_id", sourceID.String()),
			attribute.String("peer", peer.String()),
		))
	defer span.End()

	source, err := s.GetAttribute(ctx, sourceID)
	if err != nil {
		return nil, spanError(span, err)
	}
	if peer.IsNil() {
		return nil, spanError(span, dErrors.New(dErrors.CodeInvalidInput, "peer is required"))
	}
	src := source.ID
	attr := &models.LocalAttribute{
		ID:        id.NewAttributeID(),
		Content:   source.Content.Clone(),
		CreatedAt: requestcontext.Now(ctx),
		ShareInfo: &models.ShareInfo{
			Peer:             peer,
			RequestReference: requestRef,
			SourceAttribute:  &src,
		},
	}
	if err := s.store.Create(ctx, attr); err != nil {
		return nil, spanError(span, translate(err, "failed to create shared copy"))
	}
	s.record(ctx, audit.EventAttributeShared, "shared", attr, "")
	return attr, nil
}

// CreatePeerAttribute records an attribute received from peer, keeping the
// id the peer assigned so both sides refer to the same record. Recording the
// same attribute again for the same peer and request returns the stored
// record, so a response can be re-applied after a partial failure.
func (s *Service) CreatePeerAttribute(ctx context.Context, attributeID id.AttributeID, content models.Content, peer id.Address, requestRef id.RequestID) (*models.LocalAttribute, error) {
	ctx, span := s.tracer.Start(ctx, "attributes.CreatePeerAttribute",
		trace.WithAttributes(attribute.String("peer", peer.String())))
	defer span.End()

	if attributeID.IsNil() {
		attributeID = id.NewAttributeID()
	}
	if err := content.Validate(); err != nil {
		return nil, spanError(span, err)
	}
	attr := &models.LocalAttribute{
		ID:        attributeID,
		Content:   content.Normalized(),
		CreatedAt: requestcontext.Now(ctx),
		ShareInfo: &models.ShareInfo{
			Peer:             peer,
			RequestReference: requestRef,
		},
	}
	if err := s.store.Create(ctx, attr); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			if existing, ok := s.alreadyRecorded(ctx, attributeID, peer, requestRef); ok {
				return existing, nil
			}
		}
		return nil, spanError(span, translate(err, "failed to record peer attribute"))
	}
	s.record(ctx, audit.EventPeerAttributeRecorded, "peer", attr, "")
	return attr, nil
}

func (s *Service) alreadyRecorded(ctx context.Context, attributeID id.AttributeID, peer id.Address, requestRef id.RequestID) (*models.LocalAttribute, bool) {
	existing, err := s.store.FindByID(ctx, attributeID)
	if err != nil || existing.ShareInfo == nil || existing.ShareInfo.SourceAttribute != nil {
		return nil, false
	}
	if existing.ShareInfo.Peer != peer || existing.ShareInfo.RequestReference != requestRef {
		return nil, false
	}
	return existing, true
}

func (s *Service) GetAttribute(ctx context.Context, attributeID id.AttributeID) (*models.LocalAttribute, error) {
	attr, err := s.store.FindByID(ctx, attributeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "attribute %s not found", attributeID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attribute")
	}
	return attr, nil
}

func (s *Service) ListAttributes(ctx context.Context, filter models.Filter) ([]*models.LocalAttribute, error) {
	attrs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list attributes")
	}
	return attrs, nil
}

// FindCurrent returns the attribute matching filter that is current now.
func (s *Service) FindCurrent(ctx context.Context, filter models.Filter) (*models.LocalAttribute, error) {
	filter.ValidAt = nil
	attrs, err := s.ListAttributes(ctx, filter)
	if err != nil {
		return nil, err
	}
	current := models.FindCurrent(attrs, requestcontext.Now(ctx))
	if current == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no current attribute matches")
	}
	return current, nil
}

// RepairReport lists what a repair pass changed.
type RepairReport struct {
	Completed []id.AttributeID `json:"completed"`
	Cleared   []id.AttributeID `json:"cleared"`
}

// RepairSuccessions completes successions interrupted between their two
// writes. A successor whose predecessor lacks succeededBy gets the
// predecessor closed; a succeededBy pointing at a missing record is cleared
// and the record is reopened.
func (s *Service) RepairSuccessions(ctx context.Context) (*RepairReport, error) {
	ctx, span := s.tracer.Start(ctx, "attributes.RepairSuccessions")
	defer span.End()

	all, err := s.ListAttributes(ctx, models.Filter{})
	if err != nil {
		return nil, spanError(span, err)
	}
	byID := make(map[id.AttributeID]*models.LocalAttribute, len(all))
	for _, a := range all {
		byID[a.ID] = a
	}

	report := &RepairReport{}
	for _, successor := range all {
		if successor.Succeeds == nil {
			continue
		}
		predecessor, ok := byID[*successor.Succeeds]
		if !ok || predecessor.SucceededBy != nil {
			continue
		}
		closePredecessor(predecessor, successor)
		if err := s.store.Update(ctx, predecessor); err != nil {
			return report, spanError(span, translate(err, "failed to repair succession"))
		}
		report.Completed = append(report.Completed, predecessor.ID)
		s.record(ctx, audit.EventSuccessionRepaired, "", predecessor, "predecessor closed")
		if s.metrics != nil {
			s.metrics.SuccessionsRepaired.Inc()
		}
	}
	for _, a := range all {
		if a.SucceededBy == nil {
			continue
		}
		if _, ok := byID[*a.SucceededBy]; ok {
			continue
		}
		// the closing validTo belonged to the lost successor
		a.SucceededBy = nil
		a.Content.ValidTo = nil
		if err := s.store.Update(ctx, a); err != nil {
			return report, spanError(span, translate(err, "failed to repair succession"))
		}
		report.Cleared = append(report.Cleared, a.ID)
		s.record(ctx, audit.EventSuccessionRepaired, "", a, "dangling successor pointer cleared")
	}

	if len(report.Completed)+len(report.Cleared) > 0 {
		s.logger.InfoContext(ctx, "succession repair finished",
			"completed", len(report.Completed),
			"cleared", len(report.Cleared),
		)
	}
	return report, nil
}

func closePredecessor(predecessor, successor *models.LocalAttribute) {
	from := successor.CreatedAt
	if successor.Content.ValidFrom != nil {
		from = *successor.Content.ValidFrom
	}
	validTo := from.Add(-time.Millisecond)
	predecessor.Content.ValidTo = &validTo
	next := successor.ID
	predecessor.SucceededBy = &next
}

func checkSameLineage(prev, next models.Content) error {
	if prev.Kind != next.Kind || prev.Owner != next.Owner || prev.ValueType != next.ValueType {
		return dErrors.New(dErrors.CodeValidation, "successor must keep the predecessor's type, owner and value type")
	}
	if prev.Kind == models.KindRelationship && prev.Key != next.Key {
		return dErrors.New(dErrors.CodeValidation, "successor must keep the predecessor's key")
	}
	return nil
}

func (s *Service) record(ctx context.Context, event audit.AuditEvent, origin string, attr *models.LocalAttribute, reason string) {
	var peer id.Address
	if attr.ShareInfo != nil {
		peer = attr.ShareInfo.Peer
	}
	s.logger.InfoContext(ctx, string(event),
		"attribute_id", attr.ID,
		"peer", peer,
		"log_type", "audit",
	)
	if origin != "" && s.metrics != nil {
		s.metrics.IncrementAttributeCreated(origin)
	}
	if s.auditPublisher == nil {
		return
	}
	var requestID id.RequestID
	if attr.ShareInfo != nil {
		requestID = attr.ShareInfo.RequestReference
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		RequestID:   requestID,
		AttributeID: attr.ID,
		Peer:        peer,
		Action:      string(event),
		Reason:      reason,
	})
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "attribute id already exists")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "attribute not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
